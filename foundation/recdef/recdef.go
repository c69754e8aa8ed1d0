// File: recdef.go
// Title: Record Definition Check
// Description: Check runs tokenize and parse over a source text and
//              collects tokens, result and timing in a Report.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-13
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-13 v0.1.0: Initial implementation

package recdef

import (
	"time"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	mdwlog "github.com/msto63/recordpad/foundation/core/log"
	"github.com/msto63/recordpad/foundation/recdef/parser"
)

// Report is the outcome of checking one source text
type Report struct {
	Source    string
	Tokens    parser.TokenSequence
	Result    *parser.Result
	StartedAt time.Time
	Elapsed   time.Duration
}

// Success reports whether the source is a valid program
func (r *Report) Success() bool {
	return r.Result != nil && r.Result.Success
}

// ErrorCount returns the number of syntax errors
func (r *Report) ErrorCount() int {
	if r.Result == nil {
		return 0
	}
	return len(r.Result.Errors)
}

// Err returns nil for a valid program, otherwise a coded error wrapping
// the first syntax error
func (r *Report) Err() error {
	if r.Success() {
		return nil
	}
	if r.ErrorCount() == 0 {
		return mdwerror.New("no result").
			WithCode(mdwerror.CodeInternal).
			WithOperation("recdef.Check")
	}
	return r.Result.Errors[0].ToError().
		WithDetail("error_count", r.ErrorCount())
}

// Option configures Check
type Option func(*options)

type options struct {
	logger    *mdwlog.Logger
	maxTokens int
}

// WithLogger sets the logger used by the parser
func WithLogger(logger *mdwlog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxTokens sets the parser advance limit
func WithMaxTokens(n int) Option {
	return func(o *options) {
		o.maxTokens = n
	}
}

// Check tokenizes and parses source
func Check(source string, opts ...Option) *Report {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	p := parser.New(parser.Options{Logger: o.logger, MaxTokens: o.maxTokens})

	started := time.Now()
	tokens := parser.Tokenize(source)
	result := p.Parse(tokens)

	return &Report{
		Source:    source,
		Tokens:    tokens,
		Result:    result,
		StartedAt: started,
		Elapsed:   time.Since(started),
	}
}
