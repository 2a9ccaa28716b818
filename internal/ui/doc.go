// Package ui styles the wifid console for interactive terminals.
//
// Command replies are plain "echo:<Title>#<Value>" lines on the wire. When stdout is
// a terminal, RenderReply lays them out as aligned key/value rows with rejected
// fields and warnings highlighted; otherwise lines pass through unchanged so the
// output stays machine-readable.
//
// Logging is controlled via the WIFID_LOG_LEVEL environment variable. When unset,
// zap logging is silent and only the console output is shown.
package ui
