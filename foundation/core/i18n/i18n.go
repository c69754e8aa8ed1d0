// File: i18n.go
// Title: Core Internationalisation Implementation
// Description: Implements the Manager: catalogue loading, lookup with
//              fallback, template rendering and plural selection.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-13
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation
// - 2026-10-13 v0.2.0: fs.FS sources, per-locale views sharing catalogues

package i18n

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	"github.com/msto63/recordpad/foundation/utils/stringx"
)

// Format represents the catalogue file format
type Format int

const (
	// FormatAuto accepts .toml, .yaml and .yml files
	FormatAuto Format = iota

	// FormatTOML accepts .toml files only
	FormatTOML

	// FormatYAML accepts .yaml and .yml files only
	FormatYAML
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// Options defines configuration options for the i18n manager
type Options struct {
	DefaultLocale string // Default locale (e.g., "en")
	FS            fs.FS  // Source of catalogue files; os.DirFS(LocalesDir) when nil
	Dir           string // Directory inside FS holding the catalogues (default ".")
	LocalesDir    string // Directory on disk, used when FS is nil
	Format        Format // Accepted file formats
	NoFallback    bool   // Disable fallback to the default locale
}

// TranslationData represents the structure of a catalogue file
type TranslationData map[string]interface{}

// templateCache is shared between a Manager and its locale views
type templateCache struct {
	mu        sync.Mutex
	templates map[string]*template.Template
}

// Manager manages message catalogues for an application
type Manager struct {
	mu            sync.RWMutex
	defaultLocale string
	currentLocale string
	fallback      bool
	translations  map[string]TranslationData
	cache         *templateCache
}

// New creates a new i18n manager and loads every catalogue in the source
func New(options Options) (*Manager, error) {
	if stringx.IsBlank(options.DefaultLocale) {
		return nil, mdwerror.New("default locale cannot be empty").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("i18n.New")
	}

	source := options.FS
	if source == nil {
		dir := options.LocalesDir
		if stringx.IsBlank(dir) {
			dir = "./locales"
		}
		if _, err := os.Stat(dir); err != nil {
			return nil, mdwerror.New("locales directory not found").
				WithCode(mdwerror.CodeNotFound).
				WithOperation("i18n.New").
				WithDetail("directory", dir)
		}
		source = os.DirFS(dir)
	}
	dir := options.Dir
	if dir == "" {
		dir = "."
	}

	m := &Manager{
		defaultLocale: options.DefaultLocale,
		currentLocale: options.DefaultLocale,
		fallback:      !options.NoFallback,
		translations:  make(map[string]TranslationData),
		cache:         &templateCache{templates: make(map[string]*template.Template)},
	}

	if err := m.loadAll(source, dir, options.Format); err != nil {
		return nil, err
	}
	return m, nil
}

// loadAll loads every catalogue file in dir
func (m *Manager) loadAll(source fs.FS, dir string, format Format) error {
	entries, err := fs.ReadDir(source, dir)
	if err != nil {
		return mdwerror.Wrap(err, "failed to read locales directory").
			WithCode(mdwerror.CodeIOError).
			WithOperation("i18n.loadAll").
			WithDetail("directory", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(path.Ext(name))
		if !acceptsExtension(format, ext) {
			continue
		}
		locale := NormalizeLocale(strings.TrimSuffix(name, path.Ext(name)))
		if locale == "" {
			continue
		}

		content, err := fs.ReadFile(source, path.Join(dir, name))
		if err != nil {
			return mdwerror.Wrap(err, "failed to read locale file").
				WithCode(mdwerror.CodeIOError).
				WithOperation("i18n.loadAll").
				WithDetail("file", name)
		}
		data, err := parseCatalogue(content, ext)
		if err != nil {
			return mdwerror.Wrap(err, "failed to parse locale file").
				WithCode(mdwerror.CodeInvalidConfig).
				WithOperation("i18n.loadAll").
				WithDetail("file", name)
		}
		m.translations[locale] = data
	}

	if _, ok := m.translations[m.defaultLocale]; !ok {
		return mdwerror.New(fmt.Sprintf("default locale '%s' not found", m.defaultLocale)).
			WithCode(mdwerror.CodeNotFound).
			WithOperation("i18n.loadAll").
			WithDetail("directory", dir)
	}
	return nil
}

func acceptsExtension(format Format, ext string) bool {
	switch format {
	case FormatTOML:
		return ext == ".toml"
	case FormatYAML:
		return ext == ".yaml" || ext == ".yml"
	default:
		return ext == ".toml" || ext == ".yaml" || ext == ".yml"
	}
}

func parseCatalogue(content []byte, ext string) (TranslationData, error) {
	var data TranslationData
	var err error
	if ext == ".toml" {
		err = toml.Unmarshal(content, &data)
	} else {
		err = yaml.Unmarshal(content, &data)
	}
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = TranslationData{}
	}
	return data, nil
}

// WithLocale returns a view of the manager translating into locale. The
// view shares catalogues with m; the current locale of m is not changed.
func (m *Manager) WithLocale(locale string) (*Manager, error) {
	locale = NormalizeLocale(locale)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.translations[locale]; !ok {
		return nil, mdwerror.New("locale not available").
			WithCode(mdwerror.CodeNotFound).
			WithOperation("i18n.WithLocale").
			WithDetail("locale", locale)
	}
	return &Manager{
		defaultLocale: m.defaultLocale,
		currentLocale: locale,
		fallback:      m.fallback,
		translations:  m.translations,
		cache:         m.cache,
	}, nil
}

// T translates a key with optional template data. A missing key
// renders as "[key]".
func (m *Manager) T(key string, data ...map[string]interface{}) string {
	translation, err := m.TryT(key, data...)
	if err != nil && translation == "" {
		return fmt.Sprintf("[%s]", key)
	}
	return translation
}

// TryT translates a key and returns an error if translation fails
func (m *Manager) TryT(key string, data ...map[string]interface{}) (string, error) {
	m.mu.RLock()
	locale := m.currentLocale
	translation := m.lookup(key, locale)
	m.mu.RUnlock()

	if translation == "" {
		return "", mdwerror.New("translation not found").
			WithCode(mdwerror.CodeNotFound).
			WithOperation("i18n.TryT").
			WithDetail("key", key).
			WithDetail("locale", locale)
	}

	if len(data) > 0 && data[0] != nil {
		rendered, err := m.render(locale+":"+key, translation, data[0])
		if err != nil {
			return translation, mdwerror.Wrap(err, "template rendering failed").
				WithCode(mdwerror.CodeInternal).
				WithOperation("i18n.TryT").
				WithDetail("key", key)
		}
		return rendered, nil
	}
	return translation, nil
}

// TWithFallback translates a key, rendering fallbackMsg when the key is
// unknown in every eligible locale
func (m *Manager) TWithFallback(key string, fallbackMsg string, data ...map[string]interface{}) string {
	if translation, err := m.TryT(key, data...); err == nil {
		return translation
	}
	if len(data) > 0 && data[0] != nil {
		if rendered, err := m.render("fallback:"+key, fallbackMsg, data[0]); err == nil {
			return rendered
		}
	}
	return fallbackMsg
}

// Plural selects the plural form of key for count and renders it with
// data. Catalogues store plural forms as arrays ordered by the locale's
// rule (see pluralIndex).
func (m *Manager) Plural(key string, count int, data map[string]interface{}) string {
	m.mu.RLock()
	locale := m.currentLocale
	raw := m.lookupRaw(key, locale)
	if raw == nil && m.fallback && locale != m.defaultLocale {
		locale = m.defaultLocale
		raw = m.lookupRaw(key, locale)
	}
	m.mu.RUnlock()

	forms := pluralForms(raw)
	if len(forms) == 0 {
		return fmt.Sprintf("[%s]", key)
	}

	idx := pluralIndex(count, locale)
	if idx >= len(forms) {
		idx = len(forms) - 1
	}
	selected := forms[idx]

	if data != nil {
		if rendered, err := m.render(fmt.Sprintf("%s:%s#%d", locale, key, idx), selected, data); err == nil {
			return rendered
		}
	}
	return selected
}

// lookup returns the translation for key in locale with fallback. Callers
// hold m.mu.
func (m *Manager) lookup(key, locale string) string {
	if value := flatten(m.lookupRaw(key, locale)); value != "" {
		return value
	}
	if m.fallback && locale != m.defaultLocale {
		return flatten(m.lookupRaw(key, m.defaultLocale))
	}
	return ""
}

func (m *Manager) lookupRaw(key, locale string) interface{} {
	current := map[string]interface{}(m.translations[locale])
	if current == nil {
		return nil
	}
	keys := strings.Split(key, ".")
	for i, k := range keys {
		value, ok := current[k]
		if !ok {
			return nil
		}
		if i == len(keys)-1 {
			return value
		}
		switch next := value.(type) {
		case map[string]interface{}:
			current = next
		case TranslationData:
			current = next
		default:
			return nil
		}
	}
	return nil
}

// flatten turns a raw catalogue value into a message. Arrays (plural
// forms) yield their first element; tables yield "".
func flatten(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []interface{}:
		if len(v) > 0 {
			return fmt.Sprintf("%v", v[0])
		}
		return ""
	case map[string]interface{}, TranslationData:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func pluralForms(value interface{}) []string {
	switch v := value.(type) {
	case []interface{}:
		forms := make([]string, len(v))
		for i, f := range v {
			forms[i] = fmt.Sprintf("%v", f)
		}
		return forms
	case string:
		return []string{v}
	default:
		return nil
	}
}

// pluralIndex returns the plural form index for count in locale.
// Russian uses three forms (one, few, many); other locales two.
func pluralIndex(count int, locale string) int {
	if count < 0 {
		count = -count
	}
	lang, _ := SplitLocale(locale)
	switch lang {
	case "ru", "uk", "be":
		mod10, mod100 := count%10, count%100
		switch {
		case mod10 == 1 && mod100 != 11:
			return 0
		case mod10 >= 2 && mod10 <= 4 && (mod100 < 12 || mod100 > 14):
			return 1
		default:
			return 2
		}
	case "fr":
		if count <= 1 {
			return 0
		}
		return 1
	default:
		if count == 1 {
			return 0
		}
		return 1
	}
}

// render executes a message template, caching the compiled form by name
// and text
func (m *Manager) render(name, text string, data map[string]interface{}) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	cacheKey := name + "\x00" + text

	m.cache.mu.Lock()
	tmpl, ok := m.cache.templates[cacheKey]
	if !ok {
		var err error
		tmpl, err = template.New(name).Option("missingkey=zero").Parse(text)
		if err != nil {
			m.cache.mu.Unlock()
			return text, fmt.Errorf("template compilation failed: %w", err)
		}
		m.cache.templates[cacheKey] = tmpl
	}
	m.cache.mu.Unlock()

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return text, fmt.Errorf("template execution failed: %w", err)
	}
	return result.String(), nil
}

// SetLocale changes the current locale
func (m *Manager) SetLocale(locale string) error {
	locale = NormalizeLocale(locale)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.translations[locale]; !ok {
		return mdwerror.New("locale not available").
			WithCode(mdwerror.CodeNotFound).
			WithOperation("i18n.SetLocale").
			WithDetail("locale", locale)
	}
	m.currentLocale = locale
	return nil
}

// GetCurrentLocale returns the locale messages are translated into
func (m *Manager) GetCurrentLocale() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentLocale
}

// GetDefaultLocale returns the fallback locale
func (m *Manager) GetDefaultLocale() string {
	return m.defaultLocale
}

// GetAvailableLocales returns the loaded locales, sorted
func (m *Manager) GetAvailableLocales() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	locales := make([]string, 0, len(m.translations))
	for locale := range m.translations {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// HasTranslation reports whether key resolves in the current locale,
// fallback included
func (m *Manager) HasTranslation(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookup(key, m.currentLocale) != ""
}

// GetTranslationKeys returns all leaf keys of the current locale, sorted
func (m *Manager) GetTranslationKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	collectKeys(m.translations[m.currentLocale], "", &keys)
	sort.Strings(keys)
	return keys
}

func collectKeys(data map[string]interface{}, prefix string, keys *[]string) {
	for k, v := range data {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		switch sub := v.(type) {
		case map[string]interface{}:
			collectKeys(sub, full, keys)
		case TranslationData:
			collectKeys(sub, full, keys)
		default:
			*keys = append(*keys, full)
		}
	}
}
