// File: timer.go
// Title: Performance Timer
// Description: Measures the duration of an operation and logs it on stop.
// Author: msto63
// Version: v0.2.1
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with performance timing
// - 2026-10-12 v0.2.0: Entries carry the duration instead of string fields
// - 2026-10-17 v0.2.1: Completion level fixed at debug

package log

import (
	"time"
)

// Timer represents a performance timer for measuring operation duration
type Timer struct {
	logger    *Logger
	operation string
	startTime time.Time
	fields    Fields
	level     Level
	stopped   bool
}

// WithField adds a field to be logged when the timer completes
func (t *Timer) WithField(key string, value interface{}) *Timer {
	t.fields[key] = value
	return t
}

// Stop stops the timer and logs the elapsed time. A second call is a no-op
// returning zero.
func (t *Timer) Stop() time.Duration {
	return t.stop(nil)
}

// StopWithError stops the timer and logs err with the elapsed time at
// error level
func (t *Timer) StopWithError(err error) time.Duration {
	return t.stop(err)
}

func (t *Timer) stop(err error) time.Duration {
	if t.stopped {
		return 0
	}
	t.stopped = true
	elapsed := time.Since(t.startTime)
	if t.logger == nil {
		return elapsed
	}

	level := t.level
	message := t.operation + " completed"
	if err != nil {
		level = LevelError
		message = t.operation + " failed"
	}
	if !t.logger.IsLevelEnabled(level) {
		return elapsed
	}

	t.fields["operation"] = t.operation
	t.logger.logEntry(level, message, err, elapsed, t.fields)
	return elapsed
}
