package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/mcncl/mpexplorer/internal/decoder"
	"github.com/mcncl/mpexplorer/internal/errors"
	"github.com/mcncl/mpexplorer/internal/reader"
	"gopkg.in/yaml.v3"
)

// Default values
const (
	DefaultDisplayLimit = 1000
	DefaultEndian       = "auto"
	DefaultColor        = "auto"
)

// ColorMode selects when output is colorized
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// Config represents the complete configuration for mpexplorer
type Config struct {
	Decode  DecodeConfig  `yaml:"decode"`
	Display DisplayConfig `yaml:"display"`
	Stream  StreamConfig  `yaml:"stream"`
	Dev     DevConfig     `yaml:"dev"`
}

// DecodeConfig controls the decoder
type DecodeConfig struct {
	Endian   string `yaml:"endian"`
	MaxDepth int    `yaml:"max_depth"`
}

// DisplayConfig controls how decoded trees are rendered
type DisplayConfig struct {
	Limit   int    `yaml:"limit"`
	Color   string `yaml:"color"`
	Offsets bool   `yaml:"offsets"`
	Hex     bool   `yaml:"hex"`
	Summary bool   `yaml:"summary"`
}

// StreamConfig controls decoding of concatenated messages
type StreamConfig struct {
	Enabled         bool `yaml:"enabled"`
	ContinueOnError bool `yaml:"continue_on_error"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Decode: DecodeConfig{
			Endian:   DefaultEndian,
			MaxDepth: decoder.DefaultMaxDepth,
		},
		Display: DisplayConfig{
			Limit: DefaultDisplayLimit,
			Color: DefaultColor,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".mpexplorer.yml", ".mpexplorer.yaml", "mpexplorer.yml", "mpexplorer.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks enumerated and numeric settings
func (c *Config) Validate() error {
	if _, err := ParseEndianMode(c.Decode.Endian); err != nil {
		return err
	}
	if _, err := ParseColorMode(c.Display.Color); err != nil {
		return err
	}
	if c.Decode.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d: %w", c.Decode.MaxDepth, errors.ErrInvalidOption)
	}
	if c.Display.Limit < 0 {
		return fmt.Errorf("display limit must not be negative, got %d: %w", c.Display.Limit, errors.ErrInvalidOption)
	}
	return nil
}

// ParseEndianMode accepts "auto", "never" and "always" in any casing or
// separator style, plus the long names SwapIfCurrentSystemIsLittleEndian,
// NeverSwap and AlwaysSwap.
func ParseEndianMode(s string) (reader.EndianMode, error) {
	switch strcase.ToKebab(strings.TrimSpace(s)) {
	case "", "auto", "swap-if-little-endian", "swap-if-current-system-is-little-endian":
		return reader.EndianAuto, nil
	case "never", "never-swap", "none":
		return reader.EndianNever, nil
	case "always", "always-swap":
		return reader.EndianAlways, nil
	default:
		return reader.EndianAuto, fmt.Errorf("unknown endian mode %q (want auto, never or always): %w", s, errors.ErrInvalidOption)
	}
}

// ParseColorMode accepts "auto", "always" and "never"
func ParseColorMode(s string) (ColorMode, error) {
	switch strcase.ToKebab(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always", "on", "true":
		return ColorAlways, nil
	case "never", "off", "false":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("unknown color mode %q (want auto, always or never): %w", s, errors.ErrInvalidOption)
	}
}

// EndianMode returns the decoded endian setting, falling back to auto
func (c *Config) EndianMode() reader.EndianMode {
	mode, err := ParseEndianMode(c.Decode.Endian)
	if err != nil {
		return reader.EndianAuto
	}
	return mode
}

// ColorMode returns the decoded color setting, falling back to auto
func (c *Config) ColorMode() ColorMode {
	mode, err := ParseColorMode(c.Display.Color)
	if err != nil {
		return ColorAuto
	}
	return mode
}

// DecoderOptions translates the config into decoder options
func (c *Config) DecoderOptions() []decoder.Option {
	return []decoder.Option{
		decoder.WithEndian(c.EndianMode()),
		decoder.WithMaxDepth(c.Decode.MaxDepth),
		decoder.WithContinueOnError(c.Stream.ContinueOnError),
	}
}

// CLIOverrides carries command-line values. Zero values mean "not set".
type CLIOverrides struct {
	Endian          string
	MaxDepth        int
	Limit           int
	Color           string
	Offsets         bool
	Hex             bool
	Summary         bool
	Stream          bool
	ContinueOnError bool
	Debug           bool
}

// LoadConfigWithCLI loads config with CLI argument precedence.
// Boolean flags can only switch a feature on; the config file decides
// otherwise.
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Endian != "" {
		cfg.Decode.Endian = cli.Endian
	}
	if cli.MaxDepth > 0 {
		cfg.Decode.MaxDepth = cli.MaxDepth
	}
	if cli.Limit > 0 {
		cfg.Display.Limit = cli.Limit
	}
	if cli.Color != "" {
		cfg.Display.Color = cli.Color
	}
	cfg.Display.Offsets = cfg.Display.Offsets || cli.Offsets
	cfg.Display.Hex = cfg.Display.Hex || cli.Hex
	cfg.Display.Summary = cfg.Display.Summary || cli.Summary
	cfg.Stream.Enabled = cfg.Stream.Enabled || cli.Stream
	cfg.Stream.ContinueOnError = cfg.Stream.ContinueOnError || cli.ContinueOnError
	cfg.Dev.Debug = cfg.Dev.Debug || cli.Debug

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
