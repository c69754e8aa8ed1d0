// File: validation.go
// Title: Configuration Validation
// Description: Rule-based validation of configuration values: required keys,
//              expected types and numeric or length bounds.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-13
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation
// - 2026-10-13 v0.2.0: Results carry structured errors, pattern and struct
//                      binding removed

package config

import (
	"fmt"
	"sort"
	"time"

	mdwerror "github.com/msto63/recordpad/foundation/core/error"
)

// ValidationRule defines validation criteria for a configuration value
type ValidationRule struct {
	Required bool   // Whether the key must be present
	Type     string // "string", "int", "bool", "duration"
	Min      *int   // Minimum value (int) or length (string)
	Max      *int   // Maximum value (int) or length (string)
}

// ValidationRules maps configuration keys to their validation rules
type ValidationRules map[string]ValidationRule

// ValidationResult contains the results of configuration validation
type ValidationResult struct {
	Valid  bool
	Errors []*mdwerror.Error
}

// Err returns the first validation error, or nil when the result is valid
func (r *ValidationResult) Err() error {
	if r.Valid || len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// Bound is a helper for ValidationRule.Min and ValidationRule.Max
func Bound(n int) *int {
	return &n
}

// Validate checks the configuration against rules. Keys are checked in
// sorted order so the error list is stable.
func (c *Config) Validate(rules ValidationRules) *ValidationResult {
	result := &ValidationResult{Valid: true}

	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := c.validateField(key, rules[key]); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err)
		}
	}
	return result
}

func (c *Config) validateField(key string, rule ValidationRule) *mdwerror.Error {
	_, fromEnv := c.getEnvValue(key)
	if !fromEnv && !c.Has(key) {
		if rule.Required {
			return validationError(key, mdwerror.CodeRequiredField, fmt.Sprintf("required field '%s' is missing", key))
		}
		return nil
	}

	switch rule.Type {
	case "int":
		if !fromEnv && !isInteger(c.getValue(key)) {
			return validationError(key, mdwerror.CodeInvalidConfig, fmt.Sprintf("field '%s' must be an integer", key))
		}
		return checkBounds(key, c.GetInt(key), rule)
	case "bool":
		if _, ok := c.getValue(key).(bool); !ok && !fromEnv {
			return validationError(key, mdwerror.CodeInvalidConfig, fmt.Sprintf("field '%s' must be a boolean", key))
		}
	case "duration":
		if s, ok := c.getValue(key).(string); ok && !fromEnv {
			if _, err := time.ParseDuration(s); err != nil {
				return validationError(key, mdwerror.CodeInvalidConfig, fmt.Sprintf("field '%s' is not a valid duration: %s", key, s))
			}
		}
	case "string", "":
		if rule.Type == "string" && !fromEnv {
			if _, ok := c.getValue(key).(string); !ok {
				return validationError(key, mdwerror.CodeInvalidConfig, fmt.Sprintf("field '%s' must be a string", key))
			}
		}
		if rule.Min != nil || rule.Max != nil {
			return checkBounds(key, len([]rune(c.GetString(key))), rule)
		}
	}
	return nil
}

func isInteger(v interface{}) bool {
	switch n := v.(type) {
	case int, int64:
		return true
	case float64:
		return n == float64(int64(n))
	default:
		return false
	}
}

func checkBounds(key string, n int, rule ValidationRule) *mdwerror.Error {
	if rule.Min != nil && n < *rule.Min {
		return validationError(key, mdwerror.CodeValueOutOfRange, fmt.Sprintf("field '%s' must be at least %d, got %d", key, *rule.Min, n))
	}
	if rule.Max != nil && n > *rule.Max {
		return validationError(key, mdwerror.CodeValueOutOfRange, fmt.Sprintf("field '%s' must be at most %d, got %d", key, *rule.Max, n))
	}
	return nil
}

func validationError(key string, code mdwerror.Code, message string) *mdwerror.Error {
	return mdwerror.New(message).
		WithCode(code).
		WithOperation("config.Validate").
		WithDetail("key", key)
}
