package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/chriscorrea/salient/internal/config"
)

func TestLoadDefaultPathAbsent(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected no config file in empty XDG_CONFIG_HOME")
	}
	if !strings.HasSuffix(resolved, filepath.Join("salient", "config.toml")) {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if *cfg != config.Default() {
		t.Fatalf("expected defaults, got %+v", *cfg)
	}
}

func TestLoadDefaultPathPresent(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	writeConfig(t, filepath.Join(base, "salient", "config.toml"), "count = 3\nsimilarity = 0.9\n")

	cfg, _, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Count != 3 || cfg.Similarity != 0.9 {
		t.Fatalf("file values not applied: %+v", *cfg)
	}
	if cfg.Threshold != config.Default().Threshold {
		t.Fatalf("unset field lost its default: threshold=%v", cfg.Threshold)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salient.toml")
	writeConfig(t, path, `
threshold = 8.0
count = 4
similarity = 0.25
tokenizer = "Prose"
min_token_length = 3
keep_stopwords = true
max_post_chars = 280
include_all = true
format = "JSON"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}

	want := config.Config{
		Threshold:      8,
		Count:          4,
		Similarity:     0.25,
		Tokenizer:      "prose",
		MinTokenLength: 3,
		KeepStopwords:  true,
		MaxPostChars:   280,
		IncludeAll:     true,
		Format:         "json",
	}
	if *cfg != want {
		t.Fatalf("Load() = %+v, want %+v", *cfg, want)
	}
}

func TestLoadExplicitPathMissing(t *testing.T) {
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing-file error, got %v", err)
	}
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed toml", "count = ", "parse config"},
		{"unknown key", "colour = \"red\"\n", "parse config"},
		{"zero count", "count = 0\n", "count must be positive"},
		{"negative threshold", "threshold = -1.0\n", "threshold must be a positive number"},
		{"similarity above one", "similarity = 1.5\n", "similarity must be between 0 and 1"},
		{"unknown tokenizer", "tokenizer = \"bpe\"\n", "tokenizer must be"},
		{"negative max post chars", "max_post_chars = -10\n", "max_post_chars must not be negative"},
		{"unknown format", "format = \"yaml\"\n", "format must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			writeConfig(t, path, tt.content)

			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultRoundTripsThroughTOML(t *testing.T) {
	data, err := toml.Marshal(config.Default())
	if err != nil {
		t.Fatalf("marshal defaults: %v", err)
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, string(data))

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if *cfg != config.Default() {
		t.Fatalf("defaults did not survive a TOML round trip: %+v", *cfg)
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadAcceptsEveryOutputFormatName(t *testing.T) {
	for _, name := range []string{"markdown", "md", "text", "txt", "json", "table", "MD"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			writeConfig(t, path, "format = \""+name+"\"\n")

			cfg, _, _, err := config.Load(path)
			if err != nil {
				t.Fatalf("Load() rejected format %q: %v", name, err)
			}
			if cfg.Format != strings.ToLower(name) {
				t.Errorf("Format = %q, want %q", cfg.Format, strings.ToLower(name))
			}
		})
	}
}
