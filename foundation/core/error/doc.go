// Package error provides the structured error type used across recordpad.
//
// Package: error
// Title: recordpad Error Handling
// Description: Coded errors with severity, operation context, details and
//              cause chains. Grammar violations found by the record parser
//              are data (parser.ParseError); this package covers everything
//              that can fail around it: file I/O, configuration, the history
//              database and the network transport.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-12
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-12 v0.2.0: Code set reduced to the recordpad domain
//
// Usage:
//
//	err := mdwerror.Wrap(ioErr, "failed to read source file").
//		WithCode(mdwerror.CodeIOError).
//		WithOperation("service.AnalyzeFile").
//		WithDetail("path", path)
//
//	if mdwerror.HasCode(err, mdwerror.CodeNotFound) {
//		// ...
//	}
package error
