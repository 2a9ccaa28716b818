package settings

import (
	"errors"
	"path/filepath"
	"testing"
)

func newBoltStore(t *testing.T) *Store {
	t.Helper()
	backend, err := NewBoltBackend(filepath.Join(t.TempDir(), DefaultDBFile))
	if err != nil {
		t.Fatalf("NewBoltBackend() error = %v", err)
	}
	t.Cleanup(func() { _ = backend.Close() })
	return New(backend, DefaultNamespace)
}

func TestStoreDefaults(t *testing.T) {
	backends := map[string]*Store{
		"memory": New(NewMemoryBackend(), DefaultNamespace),
		"bolt":   newBoltStore(t),
	}

	for name, store := range backends {
		t.Run(name, func(t *testing.T) {
			if got := store.GetString(KeyHostname, "factory"); got != "factory" {
				t.Errorf("GetString() = %q, want factory", got)
			}
			if got := store.GetInt8(KeyRadioMode, 2); got != 2 {
				t.Errorf("GetInt8() = %d, want 2", got)
			}
			if got := store.GetUint16(KeyHTTPPort, 80); got != 80 {
				t.Errorf("GetUint16() = %d, want 80", got)
			}
			if got := store.GetInt32(KeySTAIP, -5); got != -5 {
				t.Errorf("GetInt32() = %d, want -5", got)
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	backends := map[string]*Store{
		"memory": New(NewMemoryBackend(), DefaultNamespace),
		"bolt":   newBoltStore(t),
	}

	for name, store := range backends {
		t.Run(name, func(t *testing.T) {
			if err := store.PutString(KeyHostname, "printer"); err != nil {
				t.Fatalf("PutString() error = %v", err)
			}
			if err := store.PutInt8(KeyRadioMode, -3); err != nil {
				t.Fatalf("PutInt8() error = %v", err)
			}
			if err := store.PutUint16(KeyHTTPPort, 65535); err != nil {
				t.Fatalf("PutUint16() error = %v", err)
			}
			if err := store.PutInt32(KeySTAIP, PackIPv4("192.168.1.5")); err != nil {
				t.Fatalf("PutInt32() error = %v", err)
			}

			if got := store.GetString(KeyHostname, ""); got != "printer" {
				t.Errorf("GetString() = %q, want printer", got)
			}
			if got := store.GetInt8(KeyRadioMode, 0); got != -3 {
				t.Errorf("GetInt8() = %d, want -3", got)
			}
			if got := store.GetUint16(KeyHTTPPort, 0); got != 65535 {
				t.Errorf("GetUint16() = %d, want 65535", got)
			}
			if got := UnpackIPv4(store.GetInt32(KeySTAIP, 0)); got != "192.168.1.5" {
				t.Errorf("GetInt32() unpacked = %q, want 192.168.1.5", got)
			}
		})
	}
}

func TestStoreTypeMismatchReturnsDefault(t *testing.T) {
	store := New(NewMemoryBackend(), DefaultNamespace)

	if err := store.PutString(KeyHTTPPort, "eighty"); err != nil {
		t.Fatalf("PutString() error = %v", err)
	}
	if got := store.GetUint16(KeyHTTPPort, 80); got != 80 {
		t.Errorf("GetUint16() on a string value = %d, want default 80", got)
	}
}

func TestStoreNamespacesAreIsolated(t *testing.T) {
	backend := NewMemoryBackend()
	a := New(backend, "a")
	b := New(backend, "b")

	if err := a.PutString(KeyHostname, "alpha"); err != nil {
		t.Fatalf("PutString() error = %v", err)
	}
	if got := b.GetString(KeyHostname, "none"); got != "none" {
		t.Errorf("namespace b sees %q, want none", got)
	}
}

func TestStoreUpdateIsAtomic(t *testing.T) {
	backend := NewMemoryBackend()
	store := New(backend, DefaultNamespace)

	errAbort := errors.New("abort")
	err := store.Update(func(tx *Tx) error {
		tx.PutString(KeySTASSID, "Home")
		tx.PutString(KeySTAPassphrase, "secret123")
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("Update() error = %v, want errAbort", err)
	}
	if backend.Keys(DefaultNamespace) != 0 {
		t.Errorf("aborted Update wrote %d keys, want 0", backend.Keys(DefaultNamespace))
	}
}

func TestStoreUpdateReadsOwnWrites(t *testing.T) {
	store := newBoltStore(t)

	err := store.Update(func(tx *Tx) error {
		tx.PutString(KeySTASSID, "Home")
		if got := tx.GetString(KeySTASSID, ""); got != "Home" {
			t.Errorf("tx.GetString() = %q, want Home", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestStorePersistFailure(t *testing.T) {
	backend := NewMemoryBackend()
	backend.FailCommit = errors.New("flash worn out")
	store := New(backend, DefaultNamespace)

	err := store.PutString(KeyHostname, "x")
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("PutString() error = %v, want ErrPersist", err)
	}
	if got := store.GetString(KeyHostname, "default"); got != "default" {
		t.Errorf("GetString() after failed put = %q, want default", got)
	}
}

func TestBoltBackendSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultDBFile)

	backend, err := NewBoltBackend(path)
	if err != nil {
		t.Fatalf("NewBoltBackend() error = %v", err)
	}
	if err := New(backend, DefaultNamespace).PutString(KeyHostname, "durable"); err != nil {
		t.Fatalf("PutString() error = %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	backend, err = NewBoltBackend(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = backend.Close() }()

	if got := New(backend, DefaultNamespace).GetString(KeyHostname, ""); got != "durable" {
		t.Errorf("GetString() after reopen = %q, want durable", got)
	}
}

func TestPackIPv4(t *testing.T) {
	tests := []string{"0.0.0.0", "192.168.0.1", "255.255.255.255", "10.1.2.3"}
	for _, ip := range tests {
		if got := UnpackIPv4(PackIPv4(ip)); got != ip {
			t.Errorf("UnpackIPv4(PackIPv4(%q)) = %q", ip, got)
		}
	}
	if PackIPv4("not an ip") != 0 {
		t.Error("PackIPv4 of garbage should be 0")
	}
}

func TestLookupProtocol(t *testing.T) {
	keys, ok := LookupProtocol(ProtocolHTTP)
	if !ok || keys.Enabled != KeyHTTPEnabled || keys.Port != KeyHTTPPort {
		t.Errorf("LookupProtocol(HTTP) = %+v, %v", keys, ok)
	}
	for _, p := range []Protocol{ProtocolWebsocket, ProtocolTelnet, 9} {
		if _, ok := LookupProtocol(p); ok {
			t.Errorf("LookupProtocol(%d) should be unknown", p)
		}
	}
}
