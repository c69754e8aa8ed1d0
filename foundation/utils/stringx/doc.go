// Package stringx provides small Unicode-aware string helpers shared by the
// recordpad renderers (terminal tables, editor status line, error excerpts).
//
// Package: stringx
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-13
package stringx
