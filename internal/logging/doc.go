// Package logging provides structured logging for the wifid daemon.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the daemon.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (parsed parameters, poll activity)
//   - Info: Normal operations (commands, sub-service begin/end, mode changes)
//   - Warn: Non-fatal issues (rejected commands, soft sub-service failures)
//   - Error: Failures that leave the device degraded
//
// # Specialized Logging
//
//	logging.LogCommand("SET-MODE S=1 P=1", "applied", nil)
//	logging.LogServiceEvent("mdns", "started", zap.String("hostname", "wifid"))
//	logging.LogModeChange("station", "station", true)
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Logs go to stderr so command replies on stdout stay machine readable. With no level
// configured the logger is a no-op.
package logging
