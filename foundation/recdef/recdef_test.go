// File: recdef_test.go
// Title: Record Definition Check Tests
// Description: Tests for Check, the embedded catalogues and localized
//              messages and summaries.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-13
// Modified: 2026-10-14

package recdef

import (
	"errors"
	"testing"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	"github.com/msto63/recordpad/foundation/core/i18n"
	mdwlog "github.com/msto63/recordpad/foundation/core/log"
	"github.com/msto63/recordpad/foundation/recdef/parser"
)

func TestCheck(t *testing.T) {
	report := Check("type Point = record x, y: real; end;", WithLogger(mdwlog.Discard()))

	if !report.Success() {
		t.Fatalf("Expected success, got %v", report.Result.Errors)
	}
	if report.ErrorCount() != 0 || report.Err() != nil {
		t.Errorf("Expected no errors, got %d / %v", report.ErrorCount(), report.Err())
	}
	if report.Tokens.Len() != 12 {
		t.Errorf("Expected 12 tokens, got %d", report.Tokens.Len())
	}
	if report.StartedAt.IsZero() || report.Elapsed < 0 {
		t.Errorf("Unexpected timing %v / %v", report.StartedAt, report.Elapsed)
	}
}

func TestCheck_Failure(t *testing.T) {
	report := Check("type T = record a: foo; end;", WithLogger(mdwlog.Discard()))

	if report.Success() || report.ErrorCount() != 1 {
		t.Fatalf("Expected one error, got %d", report.ErrorCount())
	}
	err := report.Err()
	if !mdwerror.HasCode(err, mdwerror.CodeSyntax) {
		t.Errorf("Expected syntax error, got %v", err)
	}
}

func TestCheck_MaxTokens(t *testing.T) {
	report := Check("type T = record a: integer; end;", WithLogger(mdwlog.Discard()), WithMaxTokens(3))
	if report.ErrorCount() != 1 || report.Result.Errors[0].Code != parser.CodeLimitExceeded {
		t.Fatalf("Expected limit error, got %v", report.Result.Errors)
	}
	if !mdwerror.HasCode(report.Err(), mdwerror.CodeLimitExceeded) {
		t.Errorf("Expected limit code, got %v", report.Err())
	}
}

func TestLocales(t *testing.T) {
	locales := Locales()
	if len(locales) != 2 || locales[0] != "en" || locales[1] != "ru" {
		t.Errorf("Expected [en ru], got %v", locales)
	}
}

func TestNewTranslator(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "en"},
		{"en", "en"},
		{"ru", "ru"},
		{"ru_RU", "ru"},
		{"de-DE,ru;q=0.8", "ru"},
		{"fr", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tr, err := NewTranslator(tt.input)
			if err != nil {
				t.Fatalf("NewTranslator() error = %v", err)
			}
			if got := tr.GetCurrentLocale(); got != tt.want {
				t.Errorf("Expected locale %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCatalogueCoversEveryCode(t *testing.T) {
	for _, locale := range []string{"en", "ru"} {
		tr, err := NewTranslator(locale)
		if err != nil {
			t.Fatalf("NewTranslator(%s) error = %v", locale, err)
		}
		for _, code := range parser.Codes() {
			if _, err := tr.TryT(code); err != nil {
				t.Errorf("%s: missing message for %s", locale, code)
			}
		}
	}
}

func TestEnglishCatalogueMatchesDefaults(t *testing.T) {
	tr, err := NewTranslator("en")
	if err != nil {
		t.Fatalf("NewTranslator() error = %v", err)
	}
	for _, code := range parser.Codes() {
		if got := tr.T(code); got != parser.DefaultMessage(code) {
			t.Errorf("%s: catalogue %q differs from default %q", code, got, parser.DefaultMessage(code))
		}
	}
}

func TestLocalize(t *testing.T) {
	ru, err := NewTranslator("ru")
	if err != nil {
		t.Fatalf("NewTranslator() error = %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Invalid type", "type T = record a: foo; end;", "Недопустимый тип данных. Ожидалось: integer, real, string, boolean, char"},
		{"Missing colon", "type T = record a b: integer; end;", "Ожидалось ':' после списка полей"},
		{"Empty input", "", "Не найдено ни одного определения типа"},
		{"Symbol argument", "type T = record a# : integer; end;", "Недопустимый символ, ожидалось: ':'"},
		{"Construct argument", "type T = record a: #; end;", "Недопустимый символ, ожидалось: тип поля"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Check(tt.input, WithLogger(mdwlog.Discard())).Result
			localized := Localize(result, ru)

			if len(localized.Errors) != 1 {
				t.Fatalf("Expected 1 error, got %d", len(localized.Errors))
			}
			if got := localized.Errors[0].Message; got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if result.Errors[0].Message == localized.Errors[0].Message {
				t.Error("Localize must not modify the original result")
			}
			if localized.Errors[0].Code != result.Errors[0].Code {
				t.Error("Localize must keep the code")
			}
		})
	}

	if Localize(nil, ru) != nil {
		t.Error("Localize(nil) should return nil")
	}
}

func TestSummary(t *testing.T) {
	ru, _ := NewTranslator("ru")
	en, _ := NewTranslator("en")

	ok := Check("type T = record a: char end;", WithLogger(mdwlog.Discard())).Result
	bad := Check("type T = record end;", WithLogger(mdwlog.Discard())).Result

	tests := []struct {
		name   string
		result *parser.Result
		tr     *i18n.Manager
		want   string
	}{
		{"en success", ok, en, "Analysis finished successfully. No errors found."},
		{"ru success", ok, ru, "Анализ завершен успешно. Ошибок не найдено."},
		{"en one error", bad, en, "Found 1 error."},
		{"ru one error", bad, ru, "Найдена 1 ошибка."},
		{"no translator", bad, nil, "Found 1 error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summary(tt.result, tt.tr)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	ru, err := NewTranslator("ru")
	if err != nil {
		t.Fatalf("NewTranslator() error = %v", err)
	}
	quiet := WithLogger(mdwlog.Discard())

	tests := []struct {
		name string
		err  error
		tr   *i18n.Manager
		want string
	}{
		{"Catalogue key in ru", Check("type T = record end;", quiet).Err(), ru, "Запись должна содержать хотя бы одно поле"},
		{"Construct argument in ru", Check("type T = record a: #; end;", quiet).Err(), ru, "Недопустимый символ, ожидалось: тип поля"},
		{"No translator", Check("type T = record end;", quiet).Err(), nil, "record must contain at least one field"},
		{"Coded error without key", mdwerror.New("disk full").WithCode(mdwerror.CodeIOError), ru, "disk full"},
		{"Plain error", errors.New("plain"), ru, "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err, tt.tr); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ru", "ru"},
		{"RU_ru", "ru"},
		{"fr-FR,ru;q=0.8,en;q=0.5", "ru"},
		{"en-US,en;q=0.9", "en"},
		{"klingon", DefaultLocale},
		{"", DefaultLocale},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ResolveLocale(tt.input); got != tt.want {
				t.Errorf("ResolveLocale(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
