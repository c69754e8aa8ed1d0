// File: i18n_test.go
// Title: Internationalisation Tests
// Description: Tests for catalogue loading from fs.FS, lookups with
//              fallback, template rendering, plural rules and locale
//              detection.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-13

package i18n

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"locales/en.toml": {Data: []byte(`
[parse]
expected_type = "unexpected token, expected 'type'"
invalid_character = "invalid character, expected {{.expected}}"

[summary]
errors = ["Found {{.count}} error.", "Found {{.count}} errors."]
only_en = "english only"
`)},
		"locales/ru.yaml": {Data: []byte(`
parse:
  expected_type: "Ожидалось ключевое слово 'type'"
  invalid_character: "Недопустимый символ, ожидалось: {{.expected}}"
summary:
  errors:
    - "Найдена {{.count}} ошибка."
    - "Найдено {{.count}} ошибки."
    - "Найдено {{.count}} ошибок."
`)},
		"locales/README.md": {Data: []byte("ignored")},
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(Options{DefaultLocale: "en", FS: testFS(), Dir: "locales"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func TestNewLoadsCatalogues(t *testing.T) {
	m := newTestManager(t)

	locales := m.GetAvailableLocales()
	if len(locales) != 2 || locales[0] != "en" || locales[1] != "ru" {
		t.Errorf("GetAvailableLocales() = %v, want [en ru]", locales)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(Options{}); !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Errorf("New() without default locale error = %v", err)
	}
	if _, err := New(Options{DefaultLocale: "de", FS: testFS(), Dir: "locales"}); !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("New() with missing default locale error = %v", err)
	}
	broken := fstest.MapFS{"en.toml": {Data: []byte("x = [")}}
	if _, err := New(Options{DefaultLocale: "en", FS: broken}); !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
		t.Errorf("New() with broken catalogue error = %v", err)
	}
}

func TestNewFromDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.toml"), []byte(`greeting = "hello"`), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := New(Options{DefaultLocale: "en", LocalesDir: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := m.T("greeting"); got != "hello" {
		t.Errorf("T(greeting) = %q", got)
	}
}

func TestTranslate(t *testing.T) {
	m := newTestManager(t)
	ru, err := m.WithLocale("ru")
	if err != nil {
		t.Fatalf("WithLocale(ru) error = %v", err)
	}

	tests := []struct {
		name string
		m    *Manager
		key  string
		data map[string]interface{}
		want string
	}{
		{"plain en", m, "parse.expected_type", nil, "unexpected token, expected 'type'"},
		{"plain ru", ru, "parse.expected_type", nil, "Ожидалось ключевое слово 'type'"},
		{"template ru", ru, "parse.invalid_character", map[string]interface{}{"expected": "':'"}, "Недопустимый символ, ожидалось: ':'"},
		{"fallback to en", ru, "summary.only_en", nil, "english only"},
		{"missing key", ru, "parse.nope", nil, "[parse.nope]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.data != nil {
				got = tt.m.T(tt.key, tt.data)
			} else {
				got = tt.m.T(tt.key)
			}
			if got != tt.want {
				t.Errorf("T(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}

	if m.GetCurrentLocale() != "en" {
		t.Error("WithLocale() must not change the parent manager")
	}
}

func TestTryTAndFallback(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.TryT("missing.key"); !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("TryT() error = %v, want NOT_FOUND", err)
	}
	got := m.TWithFallback("missing.key", "expected {{.what}}", map[string]interface{}{"what": "end"})
	if got != "expected end" {
		t.Errorf("TWithFallback() = %q", got)
	}
	if m.HasTranslation("missing.key") || !m.HasTranslation("parse.expected_type") {
		t.Error("HasTranslation() mismatch")
	}
}

func TestNoFallback(t *testing.T) {
	m, err := New(Options{DefaultLocale: "en", FS: testFS(), Dir: "locales", NoFallback: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetLocale("ru"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.TryT("summary.only_en"); err == nil {
		t.Error("TryT() should not fall back when fallback is disabled")
	}
}

func TestPlural(t *testing.T) {
	m := newTestManager(t)
	ru, _ := m.WithLocale("ru")

	tests := []struct {
		m     *Manager
		count int
		want  string
	}{
		{m, 1, "Found 1 error."},
		{m, 2, "Found 2 errors."},
		{m, 0, "Found 0 errors."},
		{ru, 1, "Найдена 1 ошибка."},
		{ru, 3, "Найдено 3 ошибки."},
		{ru, 5, "Найдено 5 ошибок."},
		{ru, 11, "Найдено 11 ошибок."},
		{ru, 21, "Найдена 21 ошибка."},
		{ru, 22, "Найдено 22 ошибки."},
		{ru, 112, "Найдено 112 ошибок."},
	}
	for _, tt := range tests {
		got := tt.m.Plural("summary.errors", tt.count, map[string]interface{}{"count": tt.count})
		if got != tt.want {
			t.Errorf("Plural(%s, %d) = %q, want %q", tt.m.GetCurrentLocale(), tt.count, got, tt.want)
		}
	}

	if got := m.Plural("summary.none", 2, nil); got != "[summary.none]" {
		t.Errorf("Plural() missing key = %q", got)
	}
}

func TestSetLocale(t *testing.T) {
	m := newTestManager(t)

	if err := m.SetLocale("RU"); err != nil {
		t.Fatalf("SetLocale(RU) error = %v", err)
	}
	if m.GetCurrentLocale() != "ru" {
		t.Errorf("GetCurrentLocale() = %q", m.GetCurrentLocale())
	}
	if err := m.SetLocale("fr"); !mdwerror.HasCode(err, mdwerror.CodeNotFound) {
		t.Errorf("SetLocale(fr) error = %v", err)
	}
}

func TestGetTranslationKeys(t *testing.T) {
	m := newTestManager(t)
	keys := m.GetTranslationKeys()
	want := []string{"parse.expected_type", "parse.invalid_character", "summary.errors", "summary.only_en"}
	if len(keys) != len(want) {
		t.Fatalf("GetTranslationKeys() = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestDetectLocale(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"ru-RU,ru;q=0.9,en;q=0.8", "ru"},
		{"de-DE,de;q=0.9", "en"},
		{"en;q=0.5, ru;q=0.7", "ru"},
		{"ru;q=0, en", "en"},
	}
	for _, tt := range tests {
		if got := m.DetectLocale(tt.header); got != tt.want {
			t.Errorf("DetectLocale(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := map[string]string{
		"EN":    "en",
		"ru_ru": "ru-RU",
		"de-at": "de-AT",
		"":      "",
		"x":     "",
		"e1":    "",
	}
	for input, want := range tests {
		if got := NormalizeLocale(input); got != want {
			t.Errorf("NormalizeLocale(%q) = %q, want %q", input, got, want)
		}
	}
}
