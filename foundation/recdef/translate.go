// File: translate.go
// Title: Localized Diagnostics
// Description: Embedded message catalogues and helpers that render parse
//              errors and summaries in the requested locale.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-13
// Modified: 2026-10-17
//
// Change History:
// - 2026-10-13 v0.1.0: Initial implementation with en and ru catalogues
// - 2026-10-17 v0.2.0: Catalogues parsed once, ResolveLocale, ErrorMessage

package recdef

import (
	"embed"
	"errors"
	"strconv"
	"strings"
	"sync"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	"github.com/msto63/recordpad/foundation/core/i18n"
	"github.com/msto63/recordpad/foundation/recdef/parser"
)

// DefaultLocale is used when no better match is available
const DefaultLocale = "en"

//go:embed locales/*.toml locales/*.yaml
var catalogues embed.FS

// catalogue parses the embedded catalogues on first use. Translators are
// locale views sharing it.
var catalogue = sync.OnceValues(func() (*i18n.Manager, error) {
	return i18n.New(i18n.Options{
		DefaultLocale: DefaultLocale,
		FS:            catalogues,
		Dir:           "locales",
	})
})

// Locales returns the locales with an embedded catalogue
func Locales() []string {
	m, err := catalogue()
	if err != nil {
		return []string{DefaultLocale}
	}
	return m.GetAvailableLocales()
}

// ResolveLocale maps a locale code ("ru", "ru_RU") or an Accept-Language
// value to the available locale it selects. The result is always one of
// Locales().
func ResolveLocale(locale string) string {
	m, err := catalogue()
	if err != nil {
		return DefaultLocale
	}
	return m.DetectLocale(locale)
}

// NewTranslator returns a translator for locale. Locale accepts plain
// codes ("ru", "ru_RU") and Accept-Language values; anything without a
// catalogue resolves to English.
func NewTranslator(locale string) (*i18n.Manager, error) {
	m, err := catalogue()
	if err != nil {
		return nil, err
	}
	return m.WithLocale(m.DetectLocale(locale))
}

// Localize returns a copy of result whose error messages are rendered by
// tr. Keys missing from the catalogue keep the English message. A nil
// translator returns result unchanged.
func Localize(result *parser.Result, tr *i18n.Manager) *parser.Result {
	if result == nil || tr == nil {
		return result
	}

	localized := &parser.Result{
		Success: result.Success,
		Program: result.Program,
		Errors:  make([]*parser.ParseError, len(result.Errors)),
	}
	for i, perr := range result.Errors {
		copied := *perr
		copied.Message = Message(perr, tr)
		localized.Errors[i] = &copied
	}
	return localized
}

// Message renders a single parse error in the translator's locale
func Message(perr *parser.ParseError, tr *i18n.Manager) string {
	if tr == nil {
		return perr.Message
	}

	var data map[string]interface{}
	if len(perr.Args) > 0 {
		data = make(map[string]interface{}, len(perr.Args))
		for k, v := range perr.Args {
			data[k] = construct(v, tr)
		}
	}
	return tr.TWithFallback(perr.Code, perr.Message, data)
}

// ErrorMessage renders err in the translator's locale when it carries a
// catalogue key, as errors from Report.Err do. Other errors keep their
// own message.
func ErrorMessage(err error, tr *i18n.Manager) string {
	var coded *mdwerror.Error
	if !errors.As(err, &coded) {
		return err.Error()
	}
	if tr == nil || coded.MessageKey() == "" {
		return coded.Message()
	}

	var data map[string]interface{}
	if args := coded.MessageArgs(); len(args) > 0 {
		data = make(map[string]interface{}, len(args))
		for k, v := range args {
			if str, ok := v.(string); ok {
				v = construct(str, tr)
			}
			data[k] = v
		}
	}
	return tr.TWithFallback(coded.MessageKey(), coded.Message(), data)
}

// construct translates a named construct such as "field name". Quoted
// symbols like "':'" are language neutral.
func construct(value string, tr *i18n.Manager) string {
	if strings.HasPrefix(value, "'") {
		return value
	}
	key := "construct." + strings.ReplaceAll(value, " ", "_")
	return tr.TWithFallback(key, value)
}

// Summary returns the one-line outcome of an analysis
func Summary(result *parser.Result, tr *i18n.Manager) string {
	if result != nil && result.Success {
		if tr == nil {
			return "Analysis finished successfully. No errors found."
		}
		return tr.TWithFallback("summary.success", "Analysis finished successfully. No errors found.")
	}

	count := 0
	if result != nil {
		count = len(result.Errors)
	}
	if tr == nil {
		if count == 1 {
			return "Found 1 error."
		}
		return "Found " + strconv.Itoa(count) + " errors."
	}
	return tr.Plural("summary.errors", count, map[string]interface{}{"count": count})
}
