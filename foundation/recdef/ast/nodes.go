// File: nodes.go
// Title: Record Definition AST Node Definitions
// Description: Defines the node types of a record definition program with
//              string representations and structural validation.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-13
// Modified: 2026-10-13
//
// Change History:
// - 2026-10-13 v0.1.0: Initial AST node definitions

package ast

import (
	"fmt"
	"strings"
)

// BuiltinTypes lists the field types of the language in canonical spelling
var BuiltinTypes = []string{"integer", "real", "string", "boolean", "char"}

// IsBuiltinType reports whether name is a field type, ignoring case
func IsBuiltinType(name string) bool {
	lower := strings.ToLower(name)
	for _, t := range BuiltinTypes {
		if t == lower {
			return true
		}
	}
	return false
}

// Node represents the base interface for all AST nodes
type Node interface {
	// String returns a string representation of the node
	String() string

	// Accept implements the visitor pattern
	Accept(visitor Visitor) interface{}

	// Position returns the source position of the node
	Position() Position

	// Validate performs structural validation of the node
	Validate() error
}

// Position represents a position in the source code
type Position struct {
	Line   int // Line number (1-based)
	Column int // Column number (1-based, in characters)
	Offset int // Byte offset (0-based)
}

// String returns "line:column"
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position was set
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Program is the root of a parsed source: every type declaration in order
type Program struct {
	Types []*TypeDecl
}

// TypeDecl represents `type Name = record <fields> end;`
type TypeDecl struct {
	Name   Ident
	Fields []*FieldGroup
	Pos    Position // position of the 'type' keyword
}

// FieldGroup represents `a, b, c: integer` sharing one type
type FieldGroup struct {
	Names []Ident
	Type  string   // type keyword as written in the source
	Pos   Position // position of the first name
}

// Ident represents an identifier with its position
type Ident struct {
	Name string
	Pos  Position
}

// String returns the canonical source text of the program
func (p *Program) String() string {
	return Print(p)
}

// Accept implements Node
func (p *Program) Accept(visitor Visitor) interface{} {
	return visitor.VisitProgram(p)
}

// Position returns the position of the first declaration
func (p *Program) Position() Position {
	if len(p.Types) == 0 {
		return Position{}
	}
	return p.Types[0].Pos
}

// Validate validates every declaration
func (p *Program) Validate() error {
	if len(p.Types) == 0 {
		return fmt.Errorf("program has no type declarations")
	}
	for _, t := range p.Types {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FieldCount returns the number of declared fields across all types
func (p *Program) FieldCount() int {
	n := 0
	for _, t := range p.Types {
		n += t.FieldCount()
	}
	return n
}

// Lookup returns the declaration named name (case-sensitive), or nil
func (p *Program) Lookup(name string) *TypeDecl {
	for _, t := range p.Types {
		if t.Name.Name == name {
			return t
		}
	}
	return nil
}

// String returns the canonical source text of the declaration
func (t *TypeDecl) String() string {
	return Print(&Program{Types: []*TypeDecl{t}})
}

// Accept implements Node
func (t *TypeDecl) Accept(visitor Visitor) interface{} {
	return visitor.VisitTypeDecl(t)
}

// Position implements Node
func (t *TypeDecl) Position() Position {
	return t.Pos
}

// Validate checks the name and every field group
func (t *TypeDecl) Validate() error {
	if err := t.Name.Validate(); err != nil {
		return fmt.Errorf("type at %s: %w", t.Pos, err)
	}
	if len(t.Fields) == 0 {
		return fmt.Errorf("type %s at %s: record must contain at least one field", t.Name.Name, t.Pos)
	}
	for _, f := range t.Fields {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("type %s: %w", t.Name.Name, err)
		}
	}
	return nil
}

// FieldCount returns the number of field names declared in the record
func (t *TypeDecl) FieldCount() int {
	n := 0
	for _, f := range t.Fields {
		n += len(f.Names)
	}
	return n
}

// String returns `a, b: type`
func (f *FieldGroup) String() string {
	names := make([]string, len(f.Names))
	for i, n := range f.Names {
		names[i] = n.Name
	}
	return strings.Join(names, ", ") + ": " + strings.ToLower(f.Type)
}

// Accept implements Node
func (f *FieldGroup) Accept(visitor Visitor) interface{} {
	return visitor.VisitFieldGroup(f)
}

// Position implements Node
func (f *FieldGroup) Position() Position {
	return f.Pos
}

// Validate checks the names and the field type
func (f *FieldGroup) Validate() error {
	if len(f.Names) == 0 {
		return fmt.Errorf("field group at %s has no names", f.Pos)
	}
	for i := range f.Names {
		if err := f.Names[i].Validate(); err != nil {
			return err
		}
	}
	if !IsBuiltinType(f.Type) {
		return fmt.Errorf("field group at %s: invalid type %q", f.Pos, f.Type)
	}
	return nil
}

// String returns the identifier name
func (i *Ident) String() string {
	return i.Name
}

// Accept implements Node
func (i *Ident) Accept(visitor Visitor) interface{} {
	return visitor.VisitIdent(i)
}

// Position implements Node
func (i *Ident) Position() Position {
	return i.Pos
}

// Validate checks that the name is an ASCII letter followed by ASCII
// letters or digits
func (i *Ident) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("empty identifier at %s", i.Pos)
	}
	for idx := 0; idx < len(i.Name); idx++ {
		c := i.Name[idx]
		isLetter := 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
		isDigit := '0' <= c && c <= '9'
		if !isLetter && (idx == 0 || !isDigit) {
			return fmt.Errorf("invalid identifier %q at %s", i.Name, i.Pos)
		}
	}
	return nil
}
