// Package i18n provides message catalogues with template rendering and
// plural forms.
//
// Package: i18n
// Title: recordpad Internationalisation
// Description: A Manager holds one catalogue per locale, read from TOML or
//              YAML files in any fs.FS (an embed.FS or os.DirFS). Keys use
//              dot notation ("parse.invalid_type"). Values are text/template
//              strings rendered with caller data. Missing keys fall back to
//              the default locale.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-13
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with TOML/YAML catalogues
// - 2026-10-13 v0.2.0: fs.FS sources, Russian plural rules, WithLocale views,
//                      file watching removed
//
// Usage:
//
//	m, err := i18n.New(i18n.Options{DefaultLocale: "en", FS: locales, Dir: "locales"})
//	ru, _ := m.WithLocale("ru")
//	ru.Plural("summary.errors", 3, map[string]interface{}{"count": 3})
package i18n
