// File: token.go
// Title: Record Definition Tokens
// Description: Token kinds, the Token value type and keyword lookup for the
//              record definition language.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-13
// Modified: 2026-10-13
//
// Change History:
// - 2026-10-13 v0.1.0: Initial token definitions

package parser

import (
	"fmt"
	"strings"

	"github.com/msto63/recordpad/foundation/recdef/ast"
)

// Kind represents the kind of a lexical token
type Kind int

const (
	KindKeywordType   Kind = iota // type
	KindIdentifier                // Point, x1
	KindKeywordRecord             // record
	KindComma                     // ,
	KindColon                     // :
	KindSemicolon                 // ;
	KindKeywordEnd                // end
	KindTypeKeyword               // integer, real, string, boolean, char
	KindEquals                    // =
	KindUnknown                   // any character that cannot start a token
	KindEndOfInput                // synthetic terminator

	// Numeric literals. The grammar has no place for them; they exist so
	// that "1.5" is reported as one token instead of three.
	KindInteger // 42
	KindReal    // 3.14, 3,14
)

// String returns a string representation of the token kind
func (k Kind) String() string {
	switch k {
	case KindKeywordType:
		return "KEYWORD_TYPE"
	case KindIdentifier:
		return "IDENTIFIER"
	case KindKeywordRecord:
		return "KEYWORD_RECORD"
	case KindComma:
		return "COMMA"
	case KindColon:
		return "COLON"
	case KindSemicolon:
		return "SEMICOLON"
	case KindKeywordEnd:
		return "KEYWORD_END"
	case KindTypeKeyword:
		return "TYPE_KEYWORD"
	case KindEquals:
		return "EQUALS"
	case KindUnknown:
		return "UNKNOWN"
	case KindEndOfInput:
		return "END_OF_INPUT"
	case KindInteger:
		return "INTEGER"
	case KindReal:
		return "REAL"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsKeyword reports whether the kind is a reserved word
func (k Kind) IsKeyword() bool {
	switch k {
	case KindKeywordType, KindKeywordRecord, KindKeywordEnd, KindTypeKeyword:
		return true
	default:
		return false
	}
}

// IsPunctuation reports whether the kind is a single-character operator
func (k Kind) IsPunctuation() bool {
	switch k {
	case KindComma, KindColon, KindSemicolon, KindEquals:
		return true
	default:
		return false
	}
}

// IsLiteral reports whether the kind is a numeric literal
func (k Kind) IsLiteral() bool {
	return k == KindInteger || k == KindReal
}

// Token represents a lexical token with position information
type Token struct {
	Kind   Kind   // Token kind
	Text   string // Exact source text; empty for KindEndOfInput
	Offset int    // Byte offset of the first character (0-based)
	Line   int    // Line number (1-based)
	Column int    // Column in characters (1-based)
}

// String returns a string representation of the token
func (t Token) String() string {
	switch t.Kind {
	case KindEndOfInput:
		return "END_OF_INPUT"
	default:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
	}
}

// Is reports whether the token has kind k
func (t Token) Is(k Kind) bool {
	return t.Kind == k
}

// Pos returns the token position as an AST position
func (t Token) Pos() ast.Position {
	return ast.Position{Line: t.Line, Column: t.Column, Offset: t.Offset}
}

// End returns the byte offset just past the token
func (t Token) End() int {
	return t.Offset + len(t.Text)
}

// TokenSequence is an ordered list of tokens terminated by exactly one
// KindEndOfInput token
type TokenSequence []Token

// Last returns the terminating token. An empty sequence yields an
// end-of-input token at 1:1.
func (ts TokenSequence) Last() Token {
	if len(ts) == 0 {
		return Token{Kind: KindEndOfInput, Line: 1, Column: 1}
	}
	return ts[len(ts)-1]
}

// Len returns the number of tokens excluding the terminator
func (ts TokenSequence) Len() int {
	if len(ts) == 0 {
		return 0
	}
	if ts[len(ts)-1].Kind == KindEndOfInput {
		return len(ts) - 1
	}
	return len(ts)
}

// Unknown returns the KindUnknown tokens in source order
func (ts TokenSequence) Unknown() []Token {
	var out []Token
	for _, t := range ts {
		if t.Kind == KindUnknown {
			out = append(out, t)
		}
	}
	return out
}

// Texts returns the token texts, terminator excluded
func (ts TokenSequence) Texts() []string {
	out := make([]string, 0, ts.Len())
	for _, t := range ts[:ts.Len()] {
		out = append(out, t.Text)
	}
	return out
}

// reserved maps lower-case reserved words to their kinds
var reserved = map[string]Kind{
	"type":    KindKeywordType,
	"record":  KindKeywordRecord,
	"end":     KindKeywordEnd,
	"integer": KindTypeKeyword,
	"real":    KindTypeKeyword,
	"string":  KindTypeKeyword,
	"boolean": KindTypeKeyword,
	"char":    KindTypeKeyword,
}

// LookupWord classifies a word case-insensitively as a keyword, a type
// keyword or an identifier
func LookupWord(word string) Kind {
	if k, ok := reserved[strings.ToLower(word)]; ok {
		return k
	}
	return KindIdentifier
}

// IsTypeKeyword reports whether word names a field type, ignoring case
func IsTypeKeyword(word string) bool {
	return LookupWord(word) == KindTypeKeyword
}

// TypeKeywords returns the field type names in canonical order
func TypeKeywords() []string {
	return append([]string(nil), ast.BuiltinTypes...)
}
