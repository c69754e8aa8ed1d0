// File: lexer.go
// Title: Record Definition Lexical Analyzer (Tokenizer)
// Description: Converts source text into a TokenSequence. The lexer is
//              total: characters that cannot start a token become
//              KindUnknown tokens and validity is left to the parser.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-13
// Modified: 2026-10-13
//
// Change History:
// - 2026-10-13 v0.1.0: Initial lexer implementation

package parser

import (
	"unicode/utf8"
)

// Lexer performs lexical analysis of record definition source
type Lexer struct {
	input    string // Input string
	position int    // Byte offset of the current character
	readPos  int    // Byte offset after the current character
	ch       rune   // Current character, meaningless at end of input
	line     int    // Line of the current character (1-based)
	column   int    // Column of the current character (1-based, in runes)
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// NextToken returns the next token. At end of input it keeps returning
// the KindEndOfInput token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.position
	line := l.line
	column := l.column

	if l.atEnd() {
		return Token{Kind: KindEndOfInput, Offset: pos, Line: line, Column: column}
	}

	var kind Kind
	switch l.ch {
	case ',':
		kind = KindComma
	case ':':
		kind = KindColon
	case ';':
		kind = KindSemicolon
	case '=':
		kind = KindEquals
	default:
		if isLetter(l.ch) {
			word := l.readWord()
			return Token{Kind: LookupWord(word), Text: word, Offset: pos, Line: line, Column: column}
		}
		if isDigit(l.ch) {
			kind, text := l.readNumber()
			return Token{Kind: kind, Text: text, Offset: pos, Line: line, Column: column}
		}
		kind = KindUnknown
	}

	tok := Token{Kind: kind, Text: l.input[pos:l.readPos], Offset: pos, Line: line, Column: column}
	l.readChar()
	return tok
}

// Tokenize returns all remaining tokens, terminated by KindEndOfInput
func (l *Lexer) Tokenize() TokenSequence {
	tokens := make(TokenSequence, 0, len(l.input)/3+1)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == KindEndOfInput {
			return tokens
		}
	}
}

// Tokenize converts source into a TokenSequence
func Tokenize(source string) TokenSequence {
	return NewLexer(source).Tokenize()
}

// readChar advances to the next character, keeping line and column in
// step. A '\n' moves the following character to column 1 of the next line.
// Once at end of input it no longer moves.
func (l *Lexer) readChar() {
	if l.column > 0 && l.atEnd() {
		return
	}
	if l.column > 0 && l.ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	l.position = l.readPos
	if l.readPos >= len(l.input) {
		l.ch = 0
		return
	}

	r, width := rune(l.input[l.readPos]), 1
	if r >= utf8.RuneSelf {
		r, width = utf8.DecodeRuneInString(l.input[l.readPos:])
	}
	l.ch = r
	l.readPos += width
}

// peekChar returns the byte after the current character, or 0
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// readWord reads an ASCII letter followed by ASCII letters and digits
func (l *Lexer) readWord() string {
	start := l.position
	for !l.atEnd() && (isLetter(l.ch) || isDigit(l.ch)) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads digits with at most one '.' or ',' that is directly
// followed by a digit
func (l *Lexer) readNumber() (Kind, string) {
	start := l.position
	kind := KindInteger

	for !l.atEnd() && isDigit(l.ch) {
		l.readChar()
	}
	if !l.atEnd() && (l.ch == '.' || l.ch == ',') && isDigit(rune(l.peekChar())) {
		kind = KindReal
		l.readChar()
		for !l.atEnd() && isDigit(l.ch) {
			l.readChar()
		}
	}

	return kind, l.input[start:l.position]
}

// skipWhitespace skips spaces, tabs, line breaks, vertical tabs and form feeds
func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && isSpace(l.ch) {
		l.readChar()
	}
}

func isSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}

// isLetter accepts ASCII letters only; other scripts become KindUnknown
func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
