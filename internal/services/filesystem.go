package services

import (
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/muurk/wifid/internal/logging"
	"go.uber.org/zap"
)

// Filesystem mounts a directory on the host as the device's file store.
type Filesystem struct {
	root string

	mu      sync.RWMutex
	mounted bool
}

// NewFilesystem creates a filesystem service rooted at root.
func NewFilesystem(root string) *Filesystem {
	return &Filesystem{root: root}
}

// Name implements Service
func (f *Filesystem) Name() string { return NameFilesystem }

// Begin mounts the file store, creating the root directory if needed.
func (f *Filesystem) Begin(Env) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mounted {
		return nil
	}

	if err := os.MkdirAll(f.root, 0755); err != nil {
		return fmt.Errorf("failed to mount %s: %w", f.root, err)
	}
	info, err := os.Stat(f.root)
	if err != nil {
		return fmt.Errorf("failed to mount %s: %w", f.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("failed to mount %s: not a directory", f.root)
	}

	f.mounted = true
	logging.LogServiceEvent(NameFilesystem, "mounted", zap.String("root", f.root))
	return nil
}

// End unmounts the file store.
func (f *Filesystem) End() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mounted {
		f.mounted = false
		logging.LogServiceEvent(NameFilesystem, "unmounted")
	}
	return nil
}

// Running implements Service
func (f *Filesystem) Running() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.mounted
}

// Handle implements Service; the file store needs no polling.
func (f *Filesystem) Handle() {}

// FS returns the mounted file store, or nil when it is not mounted.
func (f *Filesystem) FS() fs.FS {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.mounted {
		return nil
	}
	return os.DirFS(f.root)
}

// Root returns the host directory backing the file store.
func (f *Filesystem) Root() string {
	return f.root
}
