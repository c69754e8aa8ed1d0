// File: locale.go
// Title: Locale Detection and Normalisation
// Description: Accept-Language parsing for the HTTP server and locale code
//              normalisation shared by catalogue loading and lookups.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-13
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation
// - 2026-10-13 v0.2.0: Display names and filename helpers removed

package i18n

import (
	"sort"
	"strconv"
	"strings"

	"github.com/msto63/recordpad/foundation/utils/stringx"
)

// localePreference represents a locale preference with quality score
type localePreference struct {
	Locale  string
	Quality float64
}

// DetectLocale returns the available locale best matching an
// Accept-Language header, or the default locale
func (m *Manager) DetectLocale(acceptLanguage string) string {
	if stringx.IsBlank(acceptLanguage) {
		return m.defaultLocale
	}

	available := m.GetAvailableLocales()
	for _, pref := range parseAcceptLanguage(acceptLanguage) {
		if match := bestMatch(NormalizeLocale(pref.Locale), available); match != "" {
			return match
		}
	}
	return m.defaultLocale
}

// parseAcceptLanguage parses an Accept-Language header into preferences
// sorted by quality, highest first. Entries with q=0 are dropped.
func parseAcceptLanguage(acceptLang string) []localePreference {
	var preferences []localePreference

	for _, part := range strings.Split(acceptLang, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		locale := part
		quality := 1.0
		if idx := strings.Index(part, ";"); idx >= 0 {
			locale = strings.TrimSpace(part[:idx])
			for _, param := range strings.Split(part[idx+1:], ";") {
				param = strings.TrimSpace(param)
				if strings.HasPrefix(param, "q=") {
					if q, err := strconv.ParseFloat(strings.TrimPrefix(param, "q="), 64); err == nil {
						quality = q
					}
				}
			}
		}
		if locale == "" || locale == "*" || quality <= 0 {
			continue
		}
		preferences = append(preferences, localePreference{Locale: locale, Quality: quality})
	}

	sort.SliceStable(preferences, func(i, j int) bool {
		return preferences[i].Quality > preferences[j].Quality
	})
	return preferences
}

func bestMatch(locale string, available []string) string {
	if locale == "" {
		return ""
	}
	for _, a := range available {
		if a == locale {
			return a
		}
	}
	lang, _ := SplitLocale(locale)
	for _, a := range available {
		if base, _ := SplitLocale(a); base == lang {
			return a
		}
	}
	return ""
}

// NormalizeLocale normalises a locale code: "RU_ru" becomes "ru-RU",
// "EN" becomes "en". Invalid codes yield "".
func NormalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" {
		return ""
	}

	parts := strings.Split(locale, "-")
	language := parts[0]
	if len(language) != 2 && len(language) != 3 {
		return ""
	}
	for _, r := range language {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	if len(parts) > 1 && len(parts[1]) == 2 {
		return language + "-" + strings.ToUpper(parts[1])
	}
	return language
}

// SplitLocale splits a normalised locale into language and country
func SplitLocale(locale string) (language, country string) {
	parts := strings.SplitN(locale, "-", 2)
	language = strings.ToLower(parts[0])
	if len(parts) == 2 {
		country = strings.ToUpper(parts[1])
	}
	return language, country
}
