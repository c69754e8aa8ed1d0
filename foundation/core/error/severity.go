// File: severity.go
// Title: Error Severity Levels
// Description: Defines severity levels for errors. The logger maps them to
//              log levels when an error is logged with LogError.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-12
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with severity levels
// - 2026-10-12 v0.2.0: Mapping for the recordpad code set

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates a problem in user input, e.g. a malformed program
	SeverityLow Severity = iota

	// SeverityMedium indicates a failed operation the user can retry
	SeverityMedium

	// SeverityHigh indicates a broken environment (database, configuration)
	SeverityHigh

	// SeverityCritical indicates a state in which recordpad cannot continue
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should be surfaced prominently
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// severityForCode is the severity WithCode assigns unless one was set
func severityForCode(code Code) Severity {
	switch code {
	case CodeInternal:
		return SeverityCritical

	case CodeDatabaseError, CodeConfigError, CodeInvalidConfig:
		return SeverityHigh

	case CodeIOError, CodeNetworkError, CodeServiceUnavailable, CodeTimeout, CodeLimitExceeded:
		return SeverityMedium

	case CodeSyntax, CodeLexical, CodeInvalidInput, CodeNotFound,
		CodeValidationFailed, CodeRequiredField, CodeValueOutOfRange:
		return SeverityLow

	default:
		return SeverityMedium
	}
}
