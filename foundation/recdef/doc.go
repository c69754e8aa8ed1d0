// File: doc.go
// Title: Record Definition Package Documentation
// Description: Package recdef ties the record definition lexer and parser
//              to timing, logging and localized diagnostics.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-13
// Modified: 2026-10-14
//
// Change History:
// - 2026-10-13 v0.1.0: Initial package documentation

/*
Package recdef is the entry point for checking record definition source.

	report := recdef.Check(source, recdef.WithLogger(logger))
	if !report.Success() {
		tr, _ := recdef.NewTranslator("ru")
		for _, perr := range recdef.Localize(report.Result, tr).Errors {
			fmt.Println(perr.Line, perr.Column, perr.Message)
		}
	}

The embedded catalogues (locales/en.toml, locales/ru.yaml) hold one message
per diagnostic code plus the labels used by result tables and summaries.
See the parser and ast subpackages for the grammar and syntax tree.
*/
package recdef
