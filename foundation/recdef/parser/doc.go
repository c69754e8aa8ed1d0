// File: doc.go
// Title: Record Definition Parser Package Documentation
// Description: Package parser implements the lexer and recursive descent
//              parser for record type definitions of the form
//              `type Name = record <fields> end;`.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-13
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-13 v0.1.0: Initial package documentation

/*
Package parser turns record definition source into tokens and an AST.

# Grammar

	Program   := TypeDef+
	TypeDef   := 'type' Identifier '=' 'record' FieldDecl+ 'end' ';'
	FieldDecl := Identifier (',' Identifier)* ':' TypeKeyword [';']

Keywords (type, record, end) and the type keywords (integer, real, string,
boolean, char) are matched case-insensitively. Identifiers start with an
ASCII letter followed by ASCII letters or digits and are case-sensitive.
The semicolon after a field type may be omitted only before 'end'.

# Lexer

Tokenize never fails. Characters that cannot start a token become
KindUnknown tokens, and every sequence ends with exactly one
KindEndOfInput token. Lines and columns are 1-based; columns count
characters, not bytes.

	tokens := parser.Tokenize("type Point = record x, y: integer; end;")
	for _, tok := range tokens {
		fmt.Println(tok.Line, tok.Column, tok.Kind, tok.Text)
	}

# Parser

The parser makes a single pass with one token of lookahead. The first
structural error is recorded with the offending token's text and position,
and parsing stops. Parse never panics on malformed input; errors are
reported in Result.Errors.

	p := parser.New(parser.Options{Logger: logger})
	result := p.ParseSource(source)
	if !result.Success {
		for _, err := range result.Errors {
			fmt.Printf("%d:%d %s\n", err.Line, err.Column, err.Message)
		}
	}

Every ParseError carries a stable Code such as "parse.invalid_type" which
doubles as the message key for localized output.

# Limits

Options.MaxTokens bounds the number of cursor advances per parse
(DefaultMaxTokens when unset). Exceeding it yields a single
"parse.limit_exceeded" error.

# Thread Safety

A Parser holds configuration only. Parse and Tokenize keep all state per
call and may be used from multiple goroutines.
*/
package parser
