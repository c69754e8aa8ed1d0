// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error codes used by recordpad. Codes classify
//              failures for logging, HTTP status mapping and CLI exit codes.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-12
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-12 v0.2.0: Record grammar, storage and transport codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"

	// Record grammar
	CodeSyntax        Code = "SYNTAX"
	CodeLexical       Code = "LEXICAL"
	CodeLimitExceeded Code = "LIMIT_EXCEEDED"

	// Files and storage
	CodeIOError       Code = "IO_ERROR"
	CodeDatabaseError Code = "DATABASE_ERROR"

	// Transport
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeNetworkError       Code = "NETWORK_ERROR"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Validation
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeRequiredField    Code = "REQUIRED_FIELD"
	CodeValueOutOfRange  Code = "VALUE_OUT_OF_RANGE"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout,
		CodeSyntax, CodeLexical, CodeLimitExceeded,
		CodeIOError, CodeDatabaseError,
		CodeServiceUnavailable, CodeNetworkError,
		CodeConfigError, CodeInvalidConfig,
		CodeValidationFailed, CodeRequiredField, CodeValueOutOfRange:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeSyntax, CodeLexical, CodeLimitExceeded:
		return "grammar"
	case CodeIOError, CodeDatabaseError:
		return "storage"
	case CodeServiceUnavailable, CodeNetworkError:
		return "service"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	case CodeValidationFailed, CodeRequiredField, CodeValueOutOfRange:
		return "validation"
	default:
		return "generic"
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error code
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return 404
	case CodeInvalidInput, CodeValidationFailed, CodeRequiredField, CodeValueOutOfRange:
		return 400
	case CodeSyntax, CodeLexical:
		return 422
	case CodeLimitExceeded:
		return 413
	case CodeTimeout:
		return 408
	case CodeServiceUnavailable, CodeDatabaseError:
		return 503
	default:
		return 500
	}
}

// ExitCode returns the process exit status the CLI uses for this code
func (c Code) ExitCode() int {
	switch c.Category() {
	case "grammar":
		return 1
	case "configuration", "validation":
		return 2
	default:
		return 3
	}
}
