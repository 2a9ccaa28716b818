// Package wifi owns the radio mode and the station and access-point profiles.
//
// The persisted mode is the desired mode; the driver reports the live mode. They
// diverge after a save-only mode change or a failed apply, and are reconciled by
// Apply. Profiles are read from the settings store each time they are needed, so the
// Controller itself holds no configuration state.
package wifi
