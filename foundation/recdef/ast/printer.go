// File: printer.go
// Title: Canonical Source Printer
// Description: Renders a Program as canonical source: lower-case keywords
//              and types, one field group per line, every field terminated
//              by ';', a blank line between declarations.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-13
// Modified: 2026-10-13
//
// Change History:
// - 2026-10-13 v0.1.0: Initial printer

package ast

import (
	"strings"
)

// Printer renders AST nodes as source text
type Printer struct {
	BaseVisitor
	Indent string // prefix of field lines, two spaces by default

	buf   strings.Builder
	count int
}

// NewPrinter creates a printer with the default indentation
func NewPrinter() *Printer {
	return &Printer{Indent: "  "}
}

// Print renders p with the default printer
func Print(p *Program) string {
	pr := NewPrinter()
	pr.Print(p)
	return pr.String()
}

// Print appends the rendering of p to the printer buffer
func (pr *Printer) Print(p *Program) {
	if p == nil {
		return
	}
	Walk(pr, p)
}

// String returns the rendered text
func (pr *Printer) String() string {
	return pr.buf.String()
}

// Reset clears the buffer
func (pr *Printer) Reset() {
	pr.buf.Reset()
	pr.count = 0
}

func (pr *Printer) VisitTypeDecl(t *TypeDecl) interface{} {
	if pr.count > 0 {
		pr.buf.WriteString("\n")
	}
	pr.count++

	pr.buf.WriteString("type ")
	pr.buf.WriteString(t.Name.Name)
	pr.buf.WriteString(" = record\n")
	for _, f := range t.Fields {
		pr.buf.WriteString(pr.Indent)
		pr.buf.WriteString(f.String())
		pr.buf.WriteString(";\n")
	}
	pr.buf.WriteString("end;\n")
	return nil
}
