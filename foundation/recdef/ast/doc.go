// File: doc.go
// Title: Record Definition AST Package Documentation
// Description: Declarations produced by the record definition parser.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-13
// Modified: 2026-10-13
//
// Change History:
// - 2026-10-13 v0.1.0: Initial AST for record type declarations

/*
Package ast holds the syntax tree of a record definition program:

	Program
	  TypeDecl   type Point = record ... end;
	    FieldGroup   x, y: real;
	      Ident        x

Nodes are plain values filled by the parser. They implement Node, which
supports the visitor pattern; Walk drives a Visitor over a tree in source
order. Printer renders a tree back to canonical source text, and
FieldCollector lists every declared field as TypeName.fieldName.
*/
package ast
