// Package settings provides the persisted, namespaced configuration store.
//
// The Store is a typed wrapper (string, int8, uint16, int32) over a Backend, the raw
// durable key-value engine. Every Store call opens a backend handle, performs its
// reads or writes, and closes the handle again; no caller ever holds a handle across
// validation or network work. Reads never fail: a missing key, a value of the wrong
// type, or an unreadable backend yields the caller-supplied default, so defaults
// double as the device's factory configuration.
//
// # Backends
//
//   - BoltBackend: a bbolt database file. Each namespace is one bucket and each Store
//     call runs inside a single bbolt transaction.
//   - MemoryBackend: an in-process map used by tests and by `wifid exec --ephemeral`.
//
// # Batched Writes
//
// Multi-field profiles are written through Update, which applies every Put in one
// handle and commits them together:
//
//	err := store.Update(func(tx *settings.Tx) error {
//	    tx.PutString(settings.KeySTASSID, "Home")
//	    tx.PutInt8(settings.KeySTAIPMode, settings.IPModeDHCP)
//	    return nil
//	})
//
// A failed write is reported wrapped in ErrPersist.
package settings
