// File: visitor.go
// Title: Record Definition AST Visitor Pattern Implementation
// Description: Visitor interface, a no-op BaseVisitor for embedding, Walk
//              for source-order traversal, and FieldCollector.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-13
// Modified: 2026-10-13
//
// Change History:
// - 2026-10-13 v0.1.0: Initial visitor pattern implementation

package ast

import "strings"

// Visitor interface for traversing AST nodes using the visitor pattern
type Visitor interface {
	VisitProgram(p *Program) interface{}
	VisitTypeDecl(t *TypeDecl) interface{}
	VisitFieldGroup(f *FieldGroup) interface{}
	VisitIdent(i *Ident) interface{}
}

// BaseVisitor provides no-op implementations for all visitor methods.
// Embed it in concrete visitors and override what is needed; use Walk to
// reach the children.
type BaseVisitor struct{}

func (BaseVisitor) VisitProgram(p *Program) interface{}      { return nil }
func (BaseVisitor) VisitTypeDecl(t *TypeDecl) interface{}    { return nil }
func (BaseVisitor) VisitFieldGroup(f *FieldGroup) interface{} { return nil }
func (BaseVisitor) VisitIdent(i *Ident) interface{}          { return nil }

// Walk visits node and all of its descendants in source order, parents
// before children. Nil nodes are skipped.
func Walk(v Visitor, node Node) {
	switch n := node.(type) {
	case *Program:
		if n == nil {
			return
		}
		n.Accept(v)
		for _, t := range n.Types {
			Walk(v, t)
		}
	case *TypeDecl:
		if n == nil {
			return
		}
		n.Accept(v)
		Walk(v, &n.Name)
		for _, f := range n.Fields {
			Walk(v, f)
		}
	case *FieldGroup:
		if n == nil {
			return
		}
		n.Accept(v)
		for i := range n.Names {
			Walk(v, &n.Names[i])
		}
	case *Ident:
		if n == nil {
			return
		}
		n.Accept(v)
	}
}

// FieldInfo describes one declared field
type FieldInfo struct {
	Record string   // name of the enclosing record type
	Name   string   // field name
	Type   string   // field type, lower case
	Pos    Position // position of the field name
}

// Qualified returns Record.Name
func (f FieldInfo) Qualified() string {
	return f.Record + "." + f.Name
}

// FieldCollector gathers every field of a program in declaration order
type FieldCollector struct {
	BaseVisitor
	current string
	Fields  []FieldInfo
}

// CollectFields returns the fields of p in declaration order
func CollectFields(p *Program) []FieldInfo {
	c := &FieldCollector{}
	Walk(c, p)
	return c.Fields
}

func (c *FieldCollector) VisitTypeDecl(t *TypeDecl) interface{} {
	c.current = t.Name.Name
	return nil
}

func (c *FieldCollector) VisitFieldGroup(f *FieldGroup) interface{} {
	for _, n := range f.Names {
		c.Fields = append(c.Fields, FieldInfo{
			Record: c.current,
			Name:   n.Name,
			Type:   strings.ToLower(f.Type),
			Pos:    n.Pos,
		})
	}
	return nil
}
