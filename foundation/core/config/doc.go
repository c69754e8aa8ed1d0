// Package config loads hierarchical configuration from TOML or YAML.
//
// Package: config
// Title: recordpad Configuration Management
// Description: Reads a configuration file (format chosen by extension),
//              merges defaults underneath it and exposes typed getters with
//              dot notation. Environment variables override file values:
//              with prefix RECORDPAD the key server.port is read from
//              RECORDPAD_SERVER_PORT.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-13
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with TOML/YAML support
// - 2026-10-13 v0.2.0: Missing files tolerated via LoadOptions.Optional, file
//                      watching and struct binding removed
//
// Usage:
//
//	cfg, err := config.LoadWithOptions("recordpad.toml", config.LoadOptions{
//		EnvPrefix: "RECORDPAD",
//		Defaults:  map[string]interface{}{"server": map[string]interface{}{"port": 8420}},
//	})
//	port := cfg.GetInt("server.port")
package config
