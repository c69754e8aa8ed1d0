// ============================================================================
// recordpad - Record Definition Workbench
// ============================================================================
//
// Package:     config
// Description: Application configuration loaded from TOML or YAML with
//              RECORDPAD_* environment overrides
// Author:      Mike Stoffels
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	fconfig "github.com/msto63/recordpad/foundation/core/config"
	mdwerror "github.com/msto63/recordpad/foundation/core/error"
	mdwlog "github.com/msto63/recordpad/foundation/core/log"
)

// EnvPrefix is the prefix of environment overrides, e.g. RECORDPAD_SERVER_PORT
const EnvPrefix = "RECORDPAD"

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "RECORDPAD_CONFIG"

// AppConfig holds the complete application configuration
type AppConfig struct {
	Locale  string        `toml:"locale" yaml:"locale"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	History HistoryConfig `toml:"history" yaml:"history"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Parser  ParserConfig  `toml:"parser" yaml:"parser"`
	Editor  EditorConfig  `toml:"editor" yaml:"editor"`

	source string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// HistoryConfig holds analysis history settings
type HistoryConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `toml:"host" yaml:"host"`
	Port         int           `toml:"port" yaml:"port"`
	ReadTimeout  time.Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout" yaml:"write_timeout"`
}

// ParserConfig holds parser limits
type ParserConfig struct {
	MaxTokens int `toml:"max_tokens" yaml:"max_tokens"`
}

// EditorConfig holds editor settings
type EditorConfig struct {
	TabWidth int `toml:"tab_width" yaml:"tab_width"`
}

// Defaults returns the values used where neither file nor environment
// set a key
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"locale": "en",
		"log": map[string]interface{}{
			"level":  "warn",
			"format": "text",
		},
		"history": map[string]interface{}{
			"enabled": true,
			"path":    defaultHistoryPath(),
		},
		"server": map[string]interface{}{
			"host":          "127.0.0.1",
			"port":          8420,
			"read_timeout":  "15s",
			"write_timeout": "15s",
		},
		"parser": map[string]interface{}{
			"max_tokens": 100000,
		},
		"editor": map[string]interface{}{
			"tab_width": 4,
		},
	}
}

// Rules returns the validation rules applied after loading
func Rules() fconfig.ValidationRules {
	return fconfig.ValidationRules{
		"locale":               {Required: true, Type: "string", Min: fconfig.Bound(2)},
		"log.level":            {Required: true, Type: "string"},
		"log.format":           {Required: true, Type: "string"},
		"history.enabled":      {Type: "bool"},
		"history.path":         {Type: "string"},
		"server.host":          {Required: true, Type: "string"},
		"server.port":          {Required: true, Type: "int", Min: fconfig.Bound(1), Max: fconfig.Bound(65535)},
		"server.read_timeout":  {Type: "duration"},
		"server.write_timeout": {Type: "duration"},
		"parser.max_tokens":    {Required: true, Type: "int", Min: fconfig.Bound(1)},
		"editor.tab_width":     {Type: "int", Min: fconfig.Bound(1), Max: fconfig.Bound(16)},
	}
}

// Load loads the configuration. An explicit path must exist; without one
// the file is taken from RECORDPAD_CONFIG or the default locations, and
// built-in defaults are used when none is found.
func Load(path string) (*AppConfig, error) {
	explicit := path != ""
	if !explicit {
		path = discover()
	}

	raw, err := fconfig.LoadWithOptions(os.ExpandEnv(path), fconfig.LoadOptions{
		EnvPrefix: EnvPrefix,
		Defaults:  Defaults(),
		Optional:  !explicit,
	})
	if err != nil {
		return nil, err
	}

	return FromConfig(raw)
}

// LoadFromString parses configuration text, e.g. for tests
func LoadFromString(content string, format fconfig.Format) (*AppConfig, error) {
	raw, err := fconfig.LoadFromString(content, format)
	if err != nil {
		return nil, err
	}
	for key, value := range flattenDefaults("", Defaults()) {
		if !raw.Has(key) {
			raw.Set(key, value)
		}
	}
	return FromConfig(raw)
}

// FromConfig validates raw and maps it onto an AppConfig
func FromConfig(raw *fconfig.Config) (*AppConfig, error) {
	if result := raw.Validate(Rules()); !result.Valid {
		return nil, result.Err()
	}

	cfg := &AppConfig{
		Locale: raw.GetString("locale"),
		Log: LogConfig{
			Level:  raw.GetString("log.level"),
			Format: raw.GetString("log.format"),
		},
		History: HistoryConfig{
			Enabled: raw.GetBool("history.enabled"),
			Path:    os.ExpandEnv(raw.GetString("history.path")),
		},
		Server: ServerConfig{
			Host:         raw.GetString("server.host"),
			Port:         raw.GetInt("server.port"),
			ReadTimeout:  raw.GetDuration("server.read_timeout"),
			WriteTimeout: raw.GetDuration("server.write_timeout"),
		},
		Parser: ParserConfig{
			MaxTokens: raw.GetInt("parser.max_tokens"),
		},
		Editor: EditorConfig{
			TabWidth: raw.GetInt("editor.tab_width"),
		},
		source: raw.FilePath(),
	}

	if _, err := mdwlog.ParseLevel(cfg.Log.Level); err != nil {
		return nil, invalid("log.level", cfg.Log.Level, err)
	}
	if _, err := mdwlog.ParseFormat(cfg.Log.Format); err != nil {
		return nil, invalid("log.format", cfg.Log.Format, err)
	}
	return cfg, nil
}

// Source returns the file the configuration was read from, or ""
func (c *AppConfig) Source() string {
	return c.source
}

// Address returns host:port of the HTTP server
func (c *AppConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Logger builds a logger from the log settings
func (c *AppConfig) Logger(name string) *mdwlog.Logger {
	level, err := mdwlog.ParseLevel(c.Log.Level)
	if err != nil {
		level = mdwlog.DefaultLevel()
	}
	format, err := mdwlog.ParseFormat(c.Log.Format)
	if err != nil {
		format = mdwlog.FormatText
	}
	return mdwlog.NewWithConfig(mdwlog.Config{
		Level:  level,
		Format: format,
		Output: os.Stderr,
		Name:   name,
	})
}

// discover returns the first existing config file, or ""
func discover() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}

	candidates := []string{
		"./recordpad.toml",
		"./recordpad.yaml",
		"./recordpad.yml",
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(dir, "recordpad", "config.toml"),
			filepath.Join(dir, "recordpad", "config.yaml"),
		)
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func defaultHistoryPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "recordpad", "history.db")
	}
	return "./data/history.db"
}

func flattenDefaults(prefix string, m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			for nk, nv := range flattenDefaults(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = v
	}
	return out
}

func invalid(key, value string, cause error) error {
	return mdwerror.Wrap(cause, fmt.Sprintf("invalid value for %s", key)).
		WithCode(mdwerror.CodeInvalidConfig).
		WithOperation("config.FromConfig").
		WithDetail("key", key).
		WithDetail("value", value)
}
