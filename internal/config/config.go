// Package config loads the tool configuration from a JSONC file and
// merges it with CLI overrides. Precedence, lowest to highest: built-in
// defaults, project .bumpv.json, explicit --config file, CLI flags
// (applied by the caller).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// FileName is the default project config file name.
const FileName = ".bumpv.json"

// Error variables for config operations.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrNoSerializeFormats = errors.New("serialize cannot be empty")
	ErrParsePatternEmpty  = errors.New("parse cannot be empty")
	ErrFilePathEmpty      = errors.New("file rule without a path")
)

// PartConfig declares the behavior of one version part.
type PartConfig struct {
	// Values makes the part enumerated; order defines the bump sequence.
	Values []string `json:"values,omitempty"`

	FirstValue    string `json:"first_value,omitempty"`    //nolint:tagliatelle // snake_case for config file
	OptionalValue string `json:"optional_value,omitempty"` //nolint:tagliatelle // snake_case for config file
	ResetValue    string `json:"reset_value,omitempty"`    //nolint:tagliatelle // snake_case for config file
	Independent   bool   `json:"independent,omitempty"`
}

// FileRule names a file to patch. Empty Search/Replace inherit the
// top-level defaults.
type FileRule struct {
	Path    string `json:"path"`
	Search  string `json:"search,omitempty"`
	Replace string `json:"replace,omitempty"`
}

// Config holds all configuration options.
type Config struct {
	CurrentVersion string   `json:"current_version,omitempty"` //nolint:tagliatelle // snake_case for config file
	Parse          string   `json:"parse,omitempty"`
	Serialize      []string `json:"serialize,omitempty"`
	Search         string   `json:"search,omitempty"`
	Replace        string   `json:"replace,omitempty"`

	Parts map[string]PartConfig `json:"parts,omitempty"`
	Files []FileRule            `json:"files,omitempty"`

	Commit     bool   `json:"commit,omitempty"`
	Tag        bool   `json:"tag,omitempty"`
	SignTags   bool   `json:"sign_tags,omitempty"`   //nolint:tagliatelle // snake_case for config file
	AllowDirty bool   `json:"allow_dirty,omitempty"` //nolint:tagliatelle // snake_case for config file
	Message    string `json:"message,omitempty"`
	TagName    string `json:"tag_name,omitempty"`    //nolint:tagliatelle // snake_case for config file
	TagMessage string `json:"tag_message,omitempty"` //nolint:tagliatelle // snake_case for config file
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Parse:      `(?P<major>\d+)\.(?P<minor>\d+)\.(?P<patch>\d+)`,
		Serialize:  []string{"{major}.{minor}.{patch}"},
		Search:     "{current_version}",
		Replace:    "{new_version}",
		Message:    "Bump version: {current_version} → {new_version}",
		TagName:    "v{new_version}",
		TagMessage: "Bump version: {current_version} → {new_version}",
	}
}

// Load resolves the effective configuration.
//
// When explicitPath is non-empty that file must exist; otherwise the
// project file workDir/.bumpv.json is loaded if present. The returned
// source is the path of the file actually loaded, empty when running on
// defaults alone.
func Load(workDir, explicitPath string) (Config, string, error) {
	cfg := Default()

	var cfgFile string

	mustExist := false

	if explicitPath != "" {
		cfgFile = explicitPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true
	} else {
		cfgFile = filepath.Join(workDir, FileName)
	}

	data, err := os.ReadFile(cfgFile)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return cfg, "", nil
		}

		if mustExist && os.IsNotExist(err) {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, explicitPath)
		}

		return Config{}, "", fmt.Errorf("%w: %s: %w", ErrConfigFileRead, cfgFile, err)
	}

	parseErr := parseInto(&cfg, data)
	if parseErr != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, parseErr)
	}

	validateErr := Validate(cfg)
	if validateErr != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, validateErr)
	}

	return cfg, cfgFile, nil
}

// parseInto standardizes JSONC to JSON and unmarshals over the defaults,
// so absent keys keep their default values.
func parseInto(cfg *Config, data []byte) error {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}

	unmarshalErr := json.Unmarshal(standardized, cfg)
	if unmarshalErr != nil {
		return fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	return nil
}

// Validate checks invariants the rest of the tool relies on. Part-level
// value constraints are enforced when the schema is compiled.
func Validate(cfg Config) error {
	if cfg.Parse == "" {
		return ErrParsePatternEmpty
	}

	if len(cfg.Serialize) == 0 {
		return ErrNoSerializeFormats
	}

	for _, rule := range cfg.Files {
		if rule.Path == "" {
			return ErrFilePathEmpty
		}
	}

	return nil
}

// Format returns the config as formatted JSON.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
