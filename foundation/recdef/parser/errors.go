// File: errors.go
// Title: Record Definition Parse Errors
// Description: Diagnostic codes, their default English messages and the
//              ParseError type reported by the parser.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-13
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-13 v0.1.0: Initial error catalogue
// - 2026-10-14 v0.1.0: Added parse.expected_end for unterminated records

package parser

import (
	"fmt"
	"sort"
	"strings"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
)

// Diagnostic codes. Codes double as message keys for localization.
const (
	CodeExpectedType         = "parse.expected_type"
	CodeNoDefinitions        = "parse.no_definitions"
	CodeExpectedName         = "parse.expected_name"
	CodeExpectedEquals       = "parse.expected_equals"
	CodeExpectedRecord       = "parse.expected_record"
	CodeNoFields             = "parse.no_fields"
	CodeExpectedField        = "parse.expected_field"
	CodeExpectedColon        = "parse.expected_colon"
	CodeInvalidType          = "parse.invalid_type"
	CodeExpectedSemicolon    = "parse.expected_semicolon"
	CodeExpectedEnd          = "parse.expected_end"
	CodeExpectedEndSemicolon = "parse.expected_end_semicolon"
	CodeInvalidCharacter     = "parse.invalid_character"
	CodeLimitExceeded        = "parse.limit_exceeded"
)

// defaultMessages holds the English text for every code. Placeholders use
// the {{.name}} form understood by the i18n package.
var defaultMessages = map[string]string{
	CodeExpectedType:         "unexpected token, expected 'type'",
	CodeNoDefinitions:        "no type definition found",
	CodeExpectedName:         "expected type name",
	CodeExpectedEquals:       "expected '=' after type name",
	CodeExpectedRecord:       "expected keyword 'record'",
	CodeNoFields:             "record must contain at least one field",
	CodeExpectedField:        "expected field name",
	CodeExpectedColon:        "expected ':' after field names",
	CodeInvalidType:          "invalid field type, expected one of: integer, real, string, boolean, char",
	CodeExpectedSemicolon:    "expected ';' after field type",
	CodeExpectedEnd:          "expected keyword 'end'",
	CodeExpectedEndSemicolon: "expected ';' after 'end'",
	CodeInvalidCharacter:     "invalid character, expected {{.expected}}",
	CodeLimitExceeded:        "token limit exceeded",
}

// Codes returns all diagnostic codes in sorted order
func Codes() []string {
	codes := make([]string, 0, len(defaultMessages))
	for code := range defaultMessages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// DefaultMessage returns the English message template for code, or ""
// when the code is unknown
func DefaultMessage(code string) string {
	return defaultMessages[code]
}

// renderMessage substitutes args into the default message for code
func renderMessage(code string, args map[string]string) string {
	msg := defaultMessages[code]
	if len(args) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{{."+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// ParseError describes a single syntax error
type ParseError struct {
	Code     string            // Stable message key, e.g. "parse.expected_colon"
	Message  string            // Default English message
	Fragment string            // Text of the offending token; empty at end of input
	Line     int               // 1-based line of the offending token
	Column   int               // 1-based column of the offending token
	Offset   int               // Byte offset of the offending token
	Args     map[string]string // Template arguments for localized messages
}

// newParseError creates a ParseError located at tok
func newParseError(code string, tok Token, args map[string]string) *ParseError {
	return &ParseError{
		Code:     code,
		Message:  renderMessage(code, args),
		Fragment: tok.Text,
		Line:     tok.Line,
		Column:   tok.Column,
		Offset:   tok.Offset,
		Args:     args,
	}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s (near %q)", e.Line, e.Column, e.Message, e.Fragment)
}

// Position returns the location as "line:column"
func (e *ParseError) Position() string {
	return fmt.Sprintf("%d:%d", e.Line, e.Column)
}

// ToError converts the parse error into a foundation error carrying the
// message key, arguments and location as details
func (e *ParseError) ToError() *mdwerror.Error {
	code := mdwerror.CodeSyntax
	switch e.Code {
	case CodeInvalidCharacter:
		code = mdwerror.CodeLexical
	case CodeLimitExceeded:
		code = mdwerror.CodeLimitExceeded
	}

	args := make(map[string]interface{}, len(e.Args))
	for k, v := range e.Args {
		args[k] = v
	}

	return mdwerror.New(e.Message).
		WithCode(code).
		WithMessage(e.Code, args).
		WithOperation("recdef.parse").
		WithDetails(map[string]interface{}{
			"line":     e.Line,
			"column":   e.Column,
			"offset":   e.Offset,
			"fragment": e.Fragment,
		})
}
