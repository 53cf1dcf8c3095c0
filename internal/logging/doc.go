// Package logging provides structured logging for tunerdash.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout the dashboard and the one-shot commands.
//
// # Log Levels
//
//   - Debug: every backend request with status and latency
//   - Info: operator actions (tune, scan, clear locks, export)
//   - Warn: failed background polls, orphaned scans
//   - Error: startup failures
//
// # Output
//
// The dashboard takes over the terminal, so when it runs, log output is
// written to a rotating file (lumberjack) instead of stderr:
//
//	err := logging.InitializeWithOptions(logging.Options{
//	    Level: "debug",
//	    File:  "/home/me/.config/tunerdash/tunerdash.log",
//	})
//	defer logging.Sync()
//
// With no level given and TUNERDASH_LOG_LEVEL unset, logging is silent.
//
// # Specialized Logging
//
//	logging.LogPollFailure("tuner_list", err)
//	logging.LogAction("tune", zap.Int("tuner", 1), zap.Int("channel", 8))
//	logging.LogHTTPExchange("GET", "api/tuners", 200, 12*time.Millisecond)
package logging
