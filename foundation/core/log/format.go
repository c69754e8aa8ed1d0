// File: format.go
// Title: Log Format Definitions
// Description: Output formats for log messages: JSON for machines, text and
//              console for humans, logfmt for line-oriented tooling.
// Author: msto63
// Version: v0.3.0
// Created: 2025-01-24
// Modified: 2026-10-14
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with multiple output formats
// - 2026-10-12 v0.2.0: Field order follows sorted keys
// - 2026-10-14 v0.3.0: Formatters built on Entry.pairs, format names in a table

package log

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format represents the output format for log messages
type Format int

const (
	FormatJSON Format = iota
	FormatText
	// FormatConsole is FormatText with ANSI colors per level
	FormatConsole
	FormatLogfmt
)

var formatNames = [...]string{
	FormatJSON:    "json",
	FormatText:    "text",
	FormatConsole: "console",
	FormatLogfmt:  "logfmt",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// ParseFormat parses a format name case-insensitively
func ParseFormat(format string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(format))
	for f, name := range formatNames {
		if key == name {
			return Format(f), nil
		}
	}
	return FormatJSON, &ParseError{Input: format, Type: "format"}
}

// Formatter turns an entry into one output line including the newline
type Formatter interface {
	Format(entry *Entry) ([]byte, error)
}

func formatterFor(format Format) Formatter {
	switch format {
	case FormatText:
		return NewTextFormatter()
	case FormatConsole:
		return NewConsoleFormatter()
	case FormatLogfmt:
		return NewLogfmtFormatter()
	default:
		return NewJSONFormatter()
	}
}

// JSONFormatter writes one JSON object per entry
type JSONFormatter struct {
	TimestampFormat string
}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{TimestampFormat: time.RFC3339}
}

func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	data := map[string]interface{}{
		"timestamp": entry.Timestamp.Format(f.TimestampFormat),
		"level":     entry.Level.String(),
		"message":   entry.Message,
	}
	for _, p := range entry.pairs() {
		data[p.key] = p.value
	}

	if entry.Error != nil {
		data["error"] = entry.Error.Error()
		// structured errors carry their code and context along
		if m, ok := entry.Error.(json.Marshaler); ok {
			if raw, err := m.MarshalJSON(); err == nil {
				data["error_details"] = json.RawMessage(raw)
			}
		}
	}
	if entry.Duration > 0 {
		data["duration_ms"] = entry.durationMS()
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// TextFormatter writes `15:04:05 [INF] {logger} (req=id) message [k=v ...]`
type TextFormatter struct {
	TimestampFormat  string
	DisableTimestamp bool
}

func NewTextFormatter() *TextFormatter {
	return &TextFormatter{TimestampFormat: "15:04:05"}
}

func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var b strings.Builder

	if !f.DisableTimestamp {
		b.WriteString(entry.Timestamp.Format(f.TimestampFormat))
		b.WriteByte(' ')
	}
	b.WriteString("[" + entry.Level.tag() + "]")
	if entry.Logger != "" {
		b.WriteString(" {" + entry.Logger + "}")
	}
	if entry.RequestID != "" {
		b.WriteString(" (req=" + entry.RequestID + ")")
	}
	b.WriteString(" " + entry.Message)

	if len(entry.Fields) > 0 {
		fields := make([]string, 0, len(entry.Fields))
		for _, k := range entry.Fields.Keys() {
			fields = append(fields, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
		b.WriteString(" [" + strings.Join(fields, " ") + "]")
	}

	if entry.Error != nil {
		b.WriteString(" error=" + strconv.Quote(entry.Error.Error()))
	}
	if entry.Duration > 0 {
		b.WriteString(" duration=" + entry.Duration.String())
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// ConsoleFormatter wraps each text line in the level's color
type ConsoleFormatter struct {
	DisableColors bool
	*TextFormatter
}

func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{TextFormatter: NewTextFormatter()}
}

func (f *ConsoleFormatter) Format(entry *Entry) ([]byte, error) {
	data, err := f.TextFormatter.Format(entry)
	if err != nil || f.DisableColors {
		return data, err
	}
	line := strings.TrimSuffix(string(data), "\n")
	return []byte(entry.Level.Color() + line + colorReset + "\n"), nil
}

// LogfmtFormatter writes space separated key=value pairs; strings are quoted
type LogfmtFormatter struct {
	TimestampFormat string
}

func NewLogfmtFormatter() *LogfmtFormatter {
	return &LogfmtFormatter{TimestampFormat: time.RFC3339}
}

func (f *LogfmtFormatter) Format(entry *Entry) ([]byte, error) {
	parts := []string{
		"timestamp=" + entry.Timestamp.Format(f.TimestampFormat),
		"level=" + entry.Level.String(),
		"message=" + strconv.Quote(entry.Message),
	}
	for _, p := range entry.pairs() {
		if s, ok := p.value.(string); ok && p.key != "logger" && p.key != "request_id" {
			parts = append(parts, p.key+"="+strconv.Quote(s))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", p.key, p.value))
	}
	if entry.Error != nil {
		parts = append(parts, "error="+strconv.Quote(entry.Error.Error()))
	}
	if entry.Duration > 0 {
		parts = append(parts, fmt.Sprintf("duration_ms=%.3f", entry.durationMS()))
	}
	return []byte(strings.Join(parts, " ") + "\n"), nil
}
