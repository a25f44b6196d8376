// Package logging provides structured logging for mtree's storage layers.
//
// # Overview
//
// The logging package provides a structured logging interface with support
// for:
//
//   - Multiple log levels (debug, info, warn, error)
//   - Text and JSON output formats
//   - Field-based contextual logging
//
// # Creating a Logger
//
// Create a logger with configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "/var/log/mtree.log",
//	})
//
// Or use defaults:
//
//	logger := logging.NewDefault() // Info level, text format, stdout
//
// For testing, or when a caller simply doesn't want log output, use a
// no-op logger:
//
//	logger := logging.NewNop()
//
// # Log Levels
//
//	logger.Debug("detailed debugging info", "key", "value")
//	logger.Info("informational message", "key", "value")
//	logger.Warn("warning message", "key", "value")
//	logger.Error("error message", "key", "value")
//
// Parse a level from a string:
//
//	level := logging.ParseLevel("debug") // Returns LevelDebug
//
// # Structured Logging
//
// Add key-value pairs to log entries:
//
//	logger.Info("node split",
//	    "path", "/var/data/index.db",
//	    "degree", 64,
//	    "node_pos", 4096,
//	)
//
// Output (JSON format):
//
//	{
//	    "ts": "2026-02-18T10:30:00Z",
//	    "level": "info",
//	    "msg": "node split",
//	    "path": "/var/data/index.db",
//	    "degree": 64,
//	    "node_pos": 4096
//	}
//
// # Contextual Fields
//
// Create loggers with persistent fields so every message from a given
// volume carries its path without repeating it at every call site:
//
//	volumeLogger := logger.WithFields("path", path, "degree", degree)
//
//	volumeLogger.Info("opened")
//	volumeLogger.Info("closed")
//
// # Output Formats
//
// Text format (human-readable):
//
//	2026-02-18T10:30:00Z [info] node split path=/var/data/index.db degree=64
//
// JSON format (machine-parseable):
//
//	{"ts":"2026-02-18T10:30:00Z","level":"info","msg":"node split",...}
package logging
