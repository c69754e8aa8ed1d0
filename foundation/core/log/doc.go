// Package log provides structured logging for recordpad.
//
// Package: log
// Title: recordpad Structured Logging
// Description: Leveled, structured logger with JSON, text, console and
//              logfmt output. Loggers are immutable: the With* methods return
//              configured copies, so a component can derive its own logger
//              (for example WithField("component", "recdef-parser")) without
//              affecting others. Error values from the error package are
//              logged with their code, severity and details.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-12
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging
// - 2026-10-12 v0.2.0: Logs go to stderr by default, deterministic field order
//
// Usage:
//
//	logger := log.NewWithConfig(log.Config{Level: log.LevelDebug, Format: log.FormatText})
//	logger = logger.WithField("component", "server")
//	logger.Info("listening", log.Fields{"addr": addr})
//
//	timer := logger.StartTimer("analyze")
//	defer timer.Stop()
package log
