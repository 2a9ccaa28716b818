package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Backend is the durable key-value engine underneath a Store.
type Backend interface {
	// Begin opens a handle on namespace. Writable handles see their own writes and
	// publish them on Commit.
	Begin(namespace string, writable bool) (Handle, error)
	Close() error
}

// Handle is one open session on a namespace.
type Handle interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	// Commit publishes pending writes and releases the handle.
	Commit() error
	// Rollback discards pending writes and releases the handle.
	Rollback()
}

// DefaultDBFile is the database file name inside the data directory.
const DefaultDBFile = "settings.db"

// BoltBackend stores namespaces as buckets in a bbolt database.
type BoltBackend struct {
	db *bolt.DB
}

// NewBoltBackend opens (or creates) the database at path.
func NewBoltBackend(path string) (*BoltBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	return &BoltBackend{db: db}, nil
}

// Begin starts a bbolt transaction scoped to the namespace bucket.
func (b *BoltBackend) Begin(namespace string, writable bool) (Handle, error) {
	tx, err := b.db.Begin(writable)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	name := []byte(namespace)
	bucket := tx.Bucket(name)
	if bucket == nil && writable {
		bucket, err = tx.CreateBucketIfNotExists(name)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("failed to create bucket %s: %w", namespace, err)
		}
	}

	return &boltHandle{tx: tx, bucket: bucket}, nil
}

// Close closes the database file.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}

type boltHandle struct {
	tx     *bolt.Tx
	bucket *bolt.Bucket
}

func (h *boltHandle) Get(key string) ([]byte, bool) {
	if h.bucket == nil {
		return nil, false
	}
	v := h.bucket.Get([]byte(key))
	if v == nil {
		return nil, false
	}
	// bbolt values are only valid for the life of the transaction
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

func (h *boltHandle) Put(key string, value []byte) error {
	if h.bucket == nil {
		return errors.New("handle is read-only")
	}
	return h.bucket.Put([]byte(key), value)
}

func (h *boltHandle) Commit() error {
	if !h.tx.Writable() {
		return h.tx.Rollback()
	}
	return h.tx.Commit()
}

func (h *boltHandle) Rollback() {
	_ = h.tx.Rollback()
}

// MemoryBackend keeps namespaces in memory. It is safe for concurrent use.
type MemoryBackend struct {
	mu         sync.Mutex
	namespaces map[string]map[string][]byte

	// FailCommit, when set, is returned by every writable Commit and nothing is
	// written.
	FailCommit error
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{namespaces: make(map[string]map[string][]byte)}
}

// Begin opens a handle. Writes are buffered until Commit.
func (m *MemoryBackend) Begin(namespace string, writable bool) (Handle, error) {
	return &memoryHandle{
		backend:   m,
		namespace: namespace,
		writable:  writable,
		pending:   make(map[string][]byte),
	}, nil
}

// Close is a no-op.
func (m *MemoryBackend) Close() error {
	return nil
}

// Keys returns the number of keys stored under namespace.
func (m *MemoryBackend) Keys(namespace string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.namespaces[namespace])
}

// Snapshot returns a deep copy of namespace, for comparing store state in tests.
func (m *MemoryBackend) Snapshot(namespace string) map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]byte, len(m.namespaces[namespace]))
	for k, v := range m.namespaces[namespace] {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

type memoryHandle struct {
	backend   *MemoryBackend
	namespace string
	writable  bool
	pending   map[string][]byte
}

func (h *memoryHandle) Get(key string) ([]byte, bool) {
	if v, ok := h.pending[key]; ok {
		return append([]byte(nil), v...), true
	}

	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	v, ok := h.backend.namespaces[h.namespace][key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (h *memoryHandle) Put(key string, value []byte) error {
	if !h.writable {
		return errors.New("handle is read-only")
	}
	h.pending[key] = append([]byte(nil), value...)
	return nil
}

func (h *memoryHandle) Commit() error {
	if !h.writable || len(h.pending) == 0 {
		return nil
	}

	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()

	if h.backend.FailCommit != nil {
		return h.backend.FailCommit
	}

	ns := h.backend.namespaces[h.namespace]
	if ns == nil {
		ns = make(map[string][]byte)
		h.backend.namespaces[h.namespace] = ns
	}
	for k, v := range h.pending {
		ns[k] = v
	}
	return nil
}

func (h *memoryHandle) Rollback() {
	h.pending = nil
}
