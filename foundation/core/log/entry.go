// File: entry.go
// Title: Log Entry Structure
// Description: Defines the log entry holding a single message with its
//              metadata, fields and optional duration, and flattens it
//              into the ordered key/value list the formatters share.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with comprehensive log entry structure
// - 2026-10-12 v0.2.0: Sorted field keys for stable output
// - 2026-10-14 v0.3.0: Entry.pairs replaces per-formatter field walking

package log

import (
	"sort"
	"time"
)

// Entry represents a single log entry with all its metadata
type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Logger    string
	RequestID string

	Fields Fields
	Error  error

	Duration time.Duration
}

// Fields represents custom key-value pairs for structured logging
type Fields map[string]interface{}

func (f Fields) clone() Fields {
	if f == nil {
		return nil
	}
	result := make(Fields, len(f))
	for k, v := range f {
		result[k] = v
	}
	return result
}

// Keys returns the field names in sorted order
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewEntry creates a new log entry with the given level and message
func NewEntry(level Level, message string) *Entry {
	return &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    make(Fields),
	}
}

type pair struct {
	key   string
	value interface{}
}

// pairs returns the entry's optional metadata followed by its fields in
// key order. Error values in fields are replaced by their message.
func (e *Entry) pairs() []pair {
	out := make([]pair, 0, len(e.Fields)+2)
	if e.Logger != "" {
		out = append(out, pair{"logger", e.Logger})
	}
	if e.RequestID != "" {
		out = append(out, pair{"request_id", e.RequestID})
	}
	for _, k := range e.Fields.Keys() {
		v := e.Fields[k]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		out = append(out, pair{k, v})
	}
	return out
}

func (e *Entry) durationMS() float64 {
	return float64(e.Duration.Nanoseconds()) / 1e6
}
