// File: level.go
// Title: Log Level Definitions
// Description: Defines log levels for filtering log output. Names, short
//              tags and console colors live in one table.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with standard log levels
// - 2026-10-12 v0.2.0: Removed priority helpers
// - 2026-10-14 v0.3.0: Level attributes moved into a lookup table

package log

import (
	"strings"
)

// Level represents the importance level of a log message
type Level int

const (
	// LevelTrace is used for token-by-token tracing of the parser
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	// LevelFatal represents errors that terminate the program
	LevelFatal
	// LevelAudit is always logged regardless of the minimum level
	LevelAudit
)

type levelAttrs struct {
	name    string
	short   string
	color   string
	aliases []string
}

var levelTable = [...]levelAttrs{
	LevelTrace: {"trace", "TRC", "\033[37m", []string{"trc"}},
	LevelDebug: {"debug", "DBG", "\033[36m", []string{"dbg"}},
	LevelInfo:  {"info", "INF", "\033[32m", []string{"inf", "information"}},
	LevelWarn:  {"warn", "WRN", "\033[33m", []string{"wrn", "warning"}},
	LevelError: {"error", "ERR", "\033[31m", []string{"err"}},
	LevelFatal: {"fatal", "FTL", "\033[35m", []string{"ftl"}},
	LevelAudit: {"audit", "AUD", "\033[34m", []string{"aud"}},
}

const colorReset = "\033[0m"

func (l Level) attrs() (levelAttrs, bool) {
	if l < 0 || int(l) >= len(levelTable) {
		return levelAttrs{}, false
	}
	return levelTable[l], true
}

// String returns the lower-case level name
func (l Level) String() string {
	if a, ok := l.attrs(); ok {
		return a.name
	}
	return "unknown"
}

// tag returns the three-letter form used by the text formatter
func (l Level) tag() string {
	if a, ok := l.attrs(); ok {
		return a.short
	}
	return "???"
}

// Color returns the ANSI color sequence for console output
func (l Level) Color() string {
	if a, ok := l.attrs(); ok {
		return a.color
	}
	return colorReset
}

// ShouldLog reports whether l passes the minimum level. Audit always does.
func (l Level) ShouldLog(minLevel Level) bool {
	return l == LevelAudit || l >= minLevel
}

// ParseLevel accepts a level name, its short tag or a common alias,
// case-insensitively
func ParseLevel(level string) (Level, error) {
	key := strings.ToLower(strings.TrimSpace(level))
	for l, a := range levelTable {
		if key == a.name || key == strings.ToLower(a.short) {
			return Level(l), nil
		}
		for _, alias := range a.aliases {
			if key == alias {
				return Level(l), nil
			}
		}
	}
	return LevelInfo, &ParseError{Input: level, Type: "level"}
}

// ParseError reports an unrecognised level or format name
type ParseError struct {
	Input string
	Type  string
}

func (e *ParseError) Error() string {
	return "invalid " + e.Type + ": " + e.Input
}

// DefaultLevel is used when the configuration names no level
func DefaultLevel() Level {
	return LevelWarn
}
