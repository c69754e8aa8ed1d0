// ============================================================================
// recordpad - Record Definition Workbench
// ============================================================================
//
// Package:     report
// Description: Result rows, error highlights, token tables and export
//              documents built from a record definition check
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package report

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/msto63/recordpad/foundation/core/i18n"
	"github.com/msto63/recordpad/foundation/recdef"
	"github.com/msto63/recordpad/foundation/recdef/parser"
)

// Row kinds
const (
	KindSuccess = "success"
	KindError   = "error"
)

// Row is one line of the result grid
type Row struct {
	Code     string `json:"code" yaml:"code" toml:"code"`
	Kind     string `json:"kind" yaml:"kind" toml:"kind"`
	Fragment string `json:"fragment" yaml:"fragment" toml:"fragment"`
	Message  string `json:"message" yaml:"message" toml:"message"`
	Line     int    `json:"line" yaml:"line" toml:"line"`
	Column   int    `json:"column" yaml:"column" toml:"column"`
}

// Highlight marks the source range of an error
type Highlight struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// TokenRow is one line of the token table
type TokenRow struct {
	Code  int    `json:"code" yaml:"code" toml:"code"`
	Kind  string `json:"kind" yaml:"kind" toml:"kind"`
	Text  string `json:"text" yaml:"text" toml:"text"`
	Line  int    `json:"line" yaml:"line" toml:"line"`
	Range string `json:"range" yaml:"range" toml:"range"`
}

// Token codes of the token table
const (
	CodeEndOfInput = 0
	CodeIdentifier = 10
	CodeInteger    = 16
	CodeReal       = 17
	CodeInvalid    = -1
)

var keywordCodes = map[string]int{
	"type":    1,
	"record":  2,
	"end":     3,
	"integer": 4,
	"real":    5,
	"char":    6,
	"boolean": 7,
	"string":  8,
}

var operatorCodes = map[parser.Kind]int{
	parser.KindEquals:    12,
	parser.KindColon:     13,
	parser.KindComma:     14,
	parser.KindSemicolon: 15,
}

// TokenCode returns the numeric table code of a token
func TokenCode(tok parser.Token) int {
	switch {
	case tok.Kind.IsKeyword():
		return keywordCodes[strings.ToLower(tok.Text)]
	case tok.Kind == parser.KindIdentifier:
		return CodeIdentifier
	case tok.Kind.IsPunctuation():
		return operatorCodes[tok.Kind]
	case tok.Kind == parser.KindInteger:
		return CodeInteger
	case tok.Kind == parser.KindReal:
		return CodeReal
	case tok.Kind == parser.KindEndOfInput:
		return CodeEndOfInput
	default:
		return CodeInvalid
	}
}

// Rows returns the result grid. A successful result yields the single
// row "0 | success | syntax is correct | 1 | 1". A nil translator
// renders English.
func Rows(result *parser.Result, tr *i18n.Manager) []Row {
	if result == nil {
		return nil
	}
	if result.Success {
		return []Row{{
			Code:    "0",
			Kind:    label(tr, "result.success", KindSuccess),
			Message: label(tr, "result.correct", "syntax is correct"),
			Line:    1,
			Column:  1,
		}}
	}

	kind := label(tr, "result.error", KindError)
	rows := make([]Row, 0, len(result.Errors))
	for _, perr := range result.Errors {
		rows = append(rows, Row{
			Code:     perr.Code,
			Kind:     kind,
			Fragment: perr.Fragment,
			Message:  recdef.Message(perr, tr),
			Line:     perr.Line,
			Column:   perr.Column,
		})
	}
	return rows
}

// Highlights returns one single-character range per error
func Highlights(result *parser.Result) []Highlight {
	if result == nil {
		return nil
	}
	out := make([]Highlight, 0, len(result.Errors))
	for _, perr := range result.Errors {
		out = append(out, Highlight{
			Offset: perr.Offset,
			Length: 1,
			Line:   perr.Line,
			Column: perr.Column,
		})
	}
	return out
}

// Summary returns the localized one-line outcome
func Summary(result *parser.Result, tr *i18n.Manager) string {
	return recdef.Summary(result, tr)
}

// TokenRows returns the token table including the end-of-input row
func TokenRows(tokens parser.TokenSequence, tr *i18n.Manager) []TokenRow {
	rows := make([]TokenRow, 0, len(tokens))
	for _, tok := range tokens {
		from := tok.Column
		to := tok.Column + utf8.RuneCountInString(tok.Text) - 1
		if to < from {
			to = from
		}
		rows = append(rows, TokenRow{
			Code:  TokenCode(tok),
			Kind:  tokenKind(tok, tr),
			Text:  tok.Text,
			Line:  tok.Line,
			Range: rangeLabel(tr, from, to),
		})
	}
	return rows
}

func tokenKind(tok parser.Token, tr *i18n.Manager) string {
	switch {
	case tok.Kind.IsKeyword():
		return label(tr, "token.keyword", "keyword")
	case tok.Kind == parser.KindIdentifier:
		return label(tr, "token.identifier", "identifier")
	case tok.Kind.IsPunctuation():
		return label(tr, "token.operator", "operator")
	case tok.Kind == parser.KindInteger:
		return label(tr, "token.integer", "unsigned integer")
	case tok.Kind == parser.KindReal:
		return label(tr, "token.real", "real number")
	case tok.Kind == parser.KindEndOfInput:
		return label(tr, "token.end", "end of input")
	default:
		return label(tr, "token.invalid", "invalid character")
	}
}

func rangeLabel(tr *i18n.Manager, from, to int) string {
	data := map[string]interface{}{"from": from, "to": to}
	if tr == nil {
		return strconv.Itoa(from) + " to " + strconv.Itoa(to)
	}
	return tr.TWithFallback("token.range", "{{.from}} to {{.to}}", data)
}

func label(tr *i18n.Manager, key, fallback string) string {
	if tr == nil {
		return fallback
	}
	return tr.TWithFallback(key, fallback)
}

// Document is the exported form of one analysis
type Document struct {
	RunID      string     `json:"run_id,omitempty" yaml:"run_id,omitempty" toml:"run_id,omitempty"`
	Source     string     `json:"source" yaml:"source" toml:"source"`
	Locale     string     `json:"locale" yaml:"locale" toml:"locale"`
	Success    bool       `json:"success" yaml:"success" toml:"success"`
	Summary    string     `json:"summary" yaml:"summary" toml:"summary"`
	ErrorCount int        `json:"error_count" yaml:"error_count" toml:"error_count"`
	Types      []string   `json:"types,omitempty" yaml:"types,omitempty" toml:"types,omitempty"`
	Fields     int        `json:"fields" yaml:"fields" toml:"fields"`
	DurationMS float64    `json:"duration_ms" yaml:"duration_ms" toml:"duration_ms"`
	CheckedAt  time.Time  `json:"checked_at" yaml:"checked_at" toml:"checked_at"`
	Rows       []Row      `json:"rows" yaml:"rows" toml:"rows"`
	Tokens     []TokenRow `json:"tokens,omitempty" yaml:"tokens,omitempty" toml:"tokens,omitempty"`
}

// Options controls Build
type Options struct {
	Name       string        // Source name, e.g. a file path
	RunID      string        // Analysis run ID
	Translator *i18n.Manager // nil renders English
	Tokens     bool          // Include the token table
}

// Build assembles the export document for a check
func Build(rep *recdef.Report, opts Options) *Document {
	locale := recdef.DefaultLocale
	if opts.Translator != nil {
		locale = opts.Translator.GetCurrentLocale()
	}

	doc := &Document{
		RunID:      opts.RunID,
		Source:     opts.Name,
		Locale:     locale,
		Success:    rep.Success(),
		Summary:    Summary(rep.Result, opts.Translator),
		ErrorCount: rep.ErrorCount(),
		DurationMS: float64(rep.Elapsed.Microseconds()) / 1000,
		CheckedAt:  rep.StartedAt,
		Rows:       Rows(rep.Result, opts.Translator),
	}
	if prog := rep.Result.Program; prog != nil {
		for _, decl := range prog.Types {
			doc.Types = append(doc.Types, decl.Name.Name)
		}
		doc.Fields = prog.FieldCount()
	}
	if opts.Tokens {
		doc.Tokens = TokenRows(rep.Tokens, opts.Translator)
	}
	return doc
}
