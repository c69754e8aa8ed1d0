// File: parser.go
// Title: Record Definition Parser
// Description: Recursive descent parser for record type definitions.
//              Single pass with one token of lookahead. The first
//              structural error is recorded and parsing stops.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-13
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-13 v0.1.0: Initial parser implementation
// - 2026-10-14 v0.1.0: Token limit and unterminated record handling
// - 2026-10-17 v0.1.1: Token trace, top-level errors always expected_type

package parser

import (
	"unicode/utf8"

	"github.com/msto63/recordpad/foundation/recdef/ast"

	mdwlog "github.com/msto63/recordpad/foundation/core/log"
)

// DefaultMaxTokens limits the number of cursor advances per parse
const DefaultMaxTokens = 100000

// Options configures the parser
type Options struct {
	Logger    *mdwlog.Logger // Logger; nil uses the default logger
	MaxTokens int            // Advance limit; <= 0 uses DefaultMaxTokens
}

// Parser parses token sequences. A Parser holds configuration only and
// is safe for concurrent use.
type Parser struct {
	logger    *mdwlog.Logger
	maxTokens int
}

// Result is the outcome of a parse
type Result struct {
	Success bool          // At least one definition and no errors
	Errors  []*ParseError // Errors in the order they were found
	Program *ast.Program  // Declarations completed before success or abort
}

// HasErrors reports whether any error was recorded
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Err returns the first error or nil
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// New creates a new parser
func New(opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Parser{
		logger:    logger.WithField("component", "recdef-parser"),
		maxTokens: maxTokens,
	}
}

// Parse parses tokens with a default parser
func Parse(tokens TokenSequence) *Result {
	return New(Options{}).Parse(tokens)
}

// ParseSource tokenizes and parses source
func (p *Parser) ParseSource(source string) *Result {
	return p.Parse(Tokenize(source))
}

// Parse parses a token sequence. It always returns a result; syntax
// errors are reported in Result.Errors.
func (p *Parser) Parse(tokens TokenSequence) *Result {
	p.logger.Debug("Starting record definition parsing", mdwlog.Fields{
		"tokens": tokens.Len(),
	})

	st := &state{
		tokens:    tokens,
		maxTokens: p.maxTokens,
		program:   &ast.Program{},
	}
	if len(st.tokens) == 0 || st.tokens[len(st.tokens)-1].Kind != KindEndOfInput {
		st.tokens = append(append(TokenSequence(nil), tokens...), terminator(tokens))
	}
	st.current = st.tokens[0]

	if p.logger.IsLevelEnabled(mdwlog.LevelTrace) {
		for _, tok := range st.tokens {
			p.logger.Trace("Token", mdwlog.Fields{
				"kind":     tok.Kind.String(),
				"text":     tok.Text,
				"position": tok.Pos().String(),
			})
		}
	}

	st.parseProgram()

	result := &Result{
		Success: len(st.errors) == 0 && len(st.program.Types) > 0,
		Errors:  st.errors,
		Program: st.program,
	}

	if result.Success {
		p.logger.Debug("Record definition parsing completed", mdwlog.Fields{
			"types":  len(st.program.Types),
			"fields": st.program.FieldCount(),
		})
	} else {
		fields := mdwlog.Fields{"errors": len(st.errors)}
		if len(st.errors) > 0 {
			fields["code"] = st.errors[0].Code
			fields["position"] = st.errors[0].Position()
		}
		p.logger.Debug("Record definition parsing failed", fields)
	}

	return result
}

// terminator builds the end-of-input token for a sequence that lacks one
func terminator(tokens TokenSequence) Token {
	if len(tokens) == 0 {
		return Token{Kind: KindEndOfInput, Line: 1, Column: 1}
	}
	last := tokens[len(tokens)-1]
	return Token{
		Kind:   KindEndOfInput,
		Offset: last.End(),
		Line:   last.Line,
		Column: last.Column + utf8.RuneCountInString(last.Text),
	}
}

// state is the per-call cursor and error list
type state struct {
	tokens    TokenSequence
	pos       int
	current   Token
	steps     int
	maxTokens int
	aborted   bool
	errors    []*ParseError
	program   *ast.Program
}

// advance moves to the next token, staying on the terminator
func (s *state) advance() {
	s.steps++
	if s.steps > s.maxTokens {
		s.fail(CodeLimitExceeded, nil)
		return
	}
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}
	s.current = s.tokens[s.pos]
}

// fail records an error at the current token and aborts the parse
func (s *state) fail(code string, args map[string]string) {
	if s.aborted {
		return
	}
	s.errors = append(s.errors, newParseError(code, s.current, args))
	s.aborted = true
}

// expect checks the current token kind. An unknown character in the
// required position is reported as such, naming what was expected.
func (s *state) expect(kind Kind, code, expected string) bool {
	if s.current.Kind == kind {
		return true
	}
	if s.current.Kind == KindUnknown {
		s.fail(CodeInvalidCharacter, map[string]string{"expected": expected})
		return false
	}
	s.fail(code, nil)
	return false
}

func (s *state) currentPosition() ast.Position {
	return s.current.Pos()
}

// parseProgram handles Program := TypeDef+
func (s *state) parseProgram() {
	for !s.aborted {
		switch s.current.Kind {
		case KindKeywordType:
			if decl := s.parseTypeDef(); decl != nil {
				s.program.Types = append(s.program.Types, decl)
			}
		case KindEndOfInput:
			if len(s.program.Types) == 0 {
				s.fail(CodeNoDefinitions, nil)
			}
			return
		default:
			// any other token here, an unknown character included, is
			// the wrong start of a definition
			s.fail(CodeExpectedType, map[string]string{"expected": "'type'"})
		}
	}
}

// parseTypeDef handles 'type' Identifier '=' 'record' FieldDecl+ 'end' ';'
func (s *state) parseTypeDef() *ast.TypeDecl {
	decl := &ast.TypeDecl{Pos: s.currentPosition()}
	s.advance()

	if !s.expect(KindIdentifier, CodeExpectedName, "type name") {
		return nil
	}
	decl.Name = ast.Ident{Name: s.current.Text, Pos: s.currentPosition()}
	s.advance()

	if !s.expect(KindEquals, CodeExpectedEquals, "'='") {
		return nil
	}
	s.advance()

	if !s.expect(KindKeywordRecord, CodeExpectedRecord, "'record'") {
		return nil
	}
	s.advance()

	if s.current.Kind == KindKeywordEnd {
		s.fail(CodeNoFields, nil)
		return nil
	}

	for !s.aborted && s.current.Kind != KindKeywordEnd {
		if s.current.Kind == KindEndOfInput {
			s.fail(CodeExpectedEnd, nil)
			return nil
		}
		group := s.parseFieldDecl()
		if group == nil {
			return nil
		}
		decl.Fields = append(decl.Fields, group)
	}
	if s.aborted {
		return nil
	}
	s.advance()

	if !s.expect(KindSemicolon, CodeExpectedEndSemicolon, "';'") {
		return nil
	}
	s.advance()
	if s.aborted {
		return nil
	}

	return decl
}

// parseFieldDecl handles Identifier (',' Identifier)* ':' TypeKeyword [';']
func (s *state) parseFieldDecl() *ast.FieldGroup {
	group := &ast.FieldGroup{Pos: s.currentPosition()}

	for {
		if !s.expect(KindIdentifier, CodeExpectedField, "field name") {
			return nil
		}
		group.Names = append(group.Names, ast.Ident{Name: s.current.Text, Pos: s.currentPosition()})
		s.advance()
		if s.current.Kind != KindComma {
			break
		}
		s.advance()
	}

	if !s.expect(KindColon, CodeExpectedColon, "':'") {
		return nil
	}
	s.advance()

	if !s.expect(KindTypeKeyword, CodeInvalidType, "field type") {
		return nil
	}
	group.Type = s.current.Text
	s.advance()

	switch s.current.Kind {
	case KindSemicolon:
		s.advance()
	case KindKeywordEnd:
		// the last field may omit its semicolon
	default:
		s.expect(KindSemicolon, CodeExpectedSemicolon, "';'")
	}
	if s.aborted {
		return nil
	}

	return group
}
