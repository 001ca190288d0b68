// Package config loads optional salient defaults from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/chriscorrea/salient/internal/salience"
	"github.com/chriscorrea/salient/internal/tfidf"
	"github.com/chriscorrea/salient/internal/tokenize"
)

// Config holds the file-level defaults. Command-line flags that are set
// explicitly take precedence over every field.
type Config struct {
	Threshold      float64 `toml:"threshold"`
	Count          int     `toml:"count"`
	Similarity     float64 `toml:"similarity"`
	Tokenizer      string  `toml:"tokenizer"`
	MinTokenLength int     `toml:"min_token_length"`
	KeepStopwords  bool    `toml:"keep_stopwords"`
	MaxPostChars   int     `toml:"max_post_chars"`
	IncludeAll     bool    `toml:"include_all"`
	Format         string  `toml:"format"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Threshold:      tfidf.DefaultThreshold,
		Count:          salience.DefaultK,
		Similarity:     salience.DefaultSimilarityThreshold,
		Tokenizer:      tokenize.Simple.String(),
		MinTokenLength: tokenize.DefaultMinLength,
		Format:         "markdown",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/salient/config.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "salient", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "salient", "config.toml"), nil
}

// Load reads the config file at path over the defaults.
//
// An empty path means the default location, which may be absent. An explicit
// path must exist. Load returns the resolved path and whether a file was read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolvePath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %q: %w", resolved, err)
		}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, "", false, fmt.Errorf("invalid config %q: %w", resolved, err)
	}

	return &cfg, resolved, exists, nil
}

func resolvePath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, fmt.Errorf("config file %q does not exist", expanded)
		}
		if err != nil {
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %q is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}

func (c *Config) normalize() {
	c.Tokenizer = strings.ToLower(strings.TrimSpace(c.Tokenizer))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if math.IsNaN(c.Threshold) || math.IsInf(c.Threshold, 0) || c.Threshold <= 0 {
		return fmt.Errorf("threshold must be a positive number, got %v", c.Threshold)
	}
	if c.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", c.Count)
	}
	if math.IsNaN(c.Similarity) || c.Similarity < 0 || c.Similarity > 1 {
		return fmt.Errorf("similarity must be between 0 and 1, got %v", c.Similarity)
	}
	switch c.Tokenizer {
	case "simple", "prose":
	default:
		return fmt.Errorf("tokenizer must be \"simple\" or \"prose\", got %q", c.Tokenizer)
	}
	if c.MinTokenLength < 0 {
		return fmt.Errorf("min_token_length must not be negative, got %d", c.MinTokenLength)
	}
	if c.MaxPostChars < 0 {
		return fmt.Errorf("max_post_chars must not be negative, got %d", c.MaxPostChars)
	}
	switch c.Format {
	case "markdown", "md", "text", "txt", "json", "table":
	default:
		return fmt.Errorf("format must be one of markdown (md), text (txt), json, table; got %q", c.Format)
	}
	return nil
}
