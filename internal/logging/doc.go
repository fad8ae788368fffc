// Package logging provides structured logging for the moatcfg tools.
//
// It wraps a zap logger behind package-level helpers so the CLI stays silent
// by default: when no level is configured (flag or MOATCFG_LOG_LEVEL), a nop
// logger is installed and nothing is printed.
//
// # Log Levels
//
//   - Debug: blob hex dumps, per-record codec tracing
//   - Info: normal operations (files written, clients served)
//   - Warn: non-fatal issues (unknown serials, dropped connections)
//   - Error: failures surfaced to the caller
//
// # Usage
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
//	logging.Info("configuration written",
//	    zap.String("path", path),
//	    zap.Int("records", n),
//	)
//
// LogBlob logs raw container bytes with hex and ASCII views at debug level,
// which is the main tool for diagnosing framing problems.
//
// All functions are safe for concurrent use.
package logging
