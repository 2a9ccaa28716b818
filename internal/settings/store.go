package settings

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/muurk/wifid/internal/logging"
	"go.uber.org/zap"
)

// ErrPersist marks a write that could not be made durable.
var ErrPersist = errors.New("settings not persisted")

// Value type tags, stored as the first byte of every value.
const (
	tagString byte = 's'
	tagInt8   byte = 'b'
	tagUint16 byte = 'u'
	tagInt32  byte = 'i'
)

// Store is a typed view of one namespace in a Backend.
type Store struct {
	backend   Backend
	namespace string
}

// New creates a Store over backend scoped to namespace.
func New(backend Backend, namespace string) *Store {
	return &Store{backend: backend, namespace: namespace}
}

// Namespace returns the namespace this store is scoped to.
func (s *Store) Namespace() string {
	return s.namespace
}

// View opens a read-only handle, passes it to fn, and closes it.
// If the handle cannot be opened fn still runs and every read returns its default.
func (s *Store) View(fn func(r *Reader)) {
	h, err := s.backend.Begin(s.namespace, false)
	if err != nil {
		logging.Warn("Settings read failed, using defaults",
			zap.String("namespace", s.namespace),
			zap.Error(err),
		)
		fn(&Reader{})
		return
	}
	defer func() { _ = h.Commit() }()

	fn(&Reader{h: h})
}

// Update opens a writable handle, passes it to fn, and commits every write made by fn
// together. If fn returns an error nothing is written.
func (s *Store) Update(fn func(tx *Tx) error) error {
	h, err := s.backend.Begin(s.namespace, true)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	tx := &Tx{Reader: Reader{h: h}}
	if err := fn(tx); err != nil {
		h.Rollback()
		return err
	}
	if tx.err != nil {
		h.Rollback()
		return fmt.Errorf("%w: %v", ErrPersist, tx.err)
	}

	if err := h.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// GetString returns the string stored at key or def.
func (s *Store) GetString(key, def string) string {
	v := def
	s.View(func(r *Reader) { v = r.GetString(key, def) })
	return v
}

// GetInt8 returns the 8-bit integer stored at key or def.
func (s *Store) GetInt8(key string, def int8) int8 {
	v := def
	s.View(func(r *Reader) { v = r.GetInt8(key, def) })
	return v
}

// GetUint16 returns the 16-bit unsigned integer stored at key or def.
func (s *Store) GetUint16(key string, def uint16) uint16 {
	v := def
	s.View(func(r *Reader) { v = r.GetUint16(key, def) })
	return v
}

// GetInt32 returns the 32-bit integer stored at key or def.
func (s *Store) GetInt32(key string, def int32) int32 {
	v := def
	s.View(func(r *Reader) { v = r.GetInt32(key, def) })
	return v
}

// PutString stores a string at key.
func (s *Store) PutString(key, value string) error {
	return s.Update(func(tx *Tx) error {
		tx.PutString(key, value)
		return nil
	})
}

// PutInt8 stores an 8-bit integer at key.
func (s *Store) PutInt8(key string, value int8) error {
	return s.Update(func(tx *Tx) error {
		tx.PutInt8(key, value)
		return nil
	})
}

// PutUint16 stores a 16-bit unsigned integer at key.
func (s *Store) PutUint16(key string, value uint16) error {
	return s.Update(func(tx *Tx) error {
		tx.PutUint16(key, value)
		return nil
	})
}

// PutInt32 stores a 32-bit integer at key.
func (s *Store) PutInt32(key string, value int32) error {
	return s.Update(func(tx *Tx) error {
		tx.PutInt32(key, value)
		return nil
	})
}

// Reader reads typed values from an open handle.
// A zero Reader returns defaults for everything.
type Reader struct {
	h Handle
}

func (r *Reader) raw(key string, tag byte, size int) ([]byte, bool) {
	if r.h == nil {
		return nil, false
	}
	v, ok := r.h.Get(key)
	if !ok || len(v) == 0 || v[0] != tag {
		return nil, false
	}
	if size >= 0 && len(v)-1 != size {
		return nil, false
	}
	return v[1:], true
}

// GetString returns the string at key or def.
func (r *Reader) GetString(key, def string) string {
	v, ok := r.raw(key, tagString, -1)
	if !ok {
		return def
	}
	return string(v)
}

// GetInt8 returns the 8-bit integer at key or def.
func (r *Reader) GetInt8(key string, def int8) int8 {
	v, ok := r.raw(key, tagInt8, 1)
	if !ok {
		return def
	}
	return int8(v[0])
}

// GetUint16 returns the 16-bit unsigned integer at key or def.
func (r *Reader) GetUint16(key string, def uint16) uint16 {
	v, ok := r.raw(key, tagUint16, 2)
	if !ok {
		return def
	}
	return binary.BigEndian.Uint16(v)
}

// GetInt32 returns the 32-bit integer at key or def.
func (r *Reader) GetInt32(key string, def int32) int32 {
	v, ok := r.raw(key, tagInt32, 4)
	if !ok {
		return def
	}
	return int32(binary.BigEndian.Uint32(v))
}

// Tx batches typed writes. The first failing Put is kept and reported by Update.
type Tx struct {
	Reader
	err error
}

func (tx *Tx) put(key string, tag byte, payload []byte) {
	if tx.err != nil {
		return
	}
	value := make([]byte, 0, len(payload)+1)
	value = append(value, tag)
	value = append(value, payload...)
	if err := tx.h.Put(key, value); err != nil {
		tx.err = fmt.Errorf("%s: %w", key, err)
	}
}

// PutString stages a string write.
func (tx *Tx) PutString(key, value string) {
	tx.put(key, tagString, []byte(value))
}

// PutInt8 stages an 8-bit integer write.
func (tx *Tx) PutInt8(key string, value int8) {
	tx.put(key, tagInt8, []byte{byte(value)})
}

// PutUint16 stages a 16-bit unsigned integer write.
func (tx *Tx) PutUint16(key string, value uint16) {
	tx.put(key, tagUint16, binary.BigEndian.AppendUint16(nil, value))
}

// PutInt32 stages a 32-bit integer write.
func (tx *Tx) PutInt32(key string, value int32) {
	tx.put(key, tagInt32, binary.BigEndian.AppendUint32(nil, uint32(value)))
}
