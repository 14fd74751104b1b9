package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config fails validation: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, "maxRetries"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency"},
		{"negative trigger", func(c *Config) { c.ChunkTriggerFiles = -1 }, "chunkTriggerFiles"},
		{"backoff inverted", func(c *Config) { c.MaxBackoff = c.BaseBackoff / 2 }, "maxBackoff"},
		{"chunk above ceiling", func(c *Config) { c.MaxChunkChars = c.MaxCallChars + 1 }, "maxChunkChars"},
		{"bad policy", func(c *Config) { c.OversizePolicy = "shrug" }, "oversizePolicy"},
		{"empty chain", func(c *Config) { c.Fallback = nil }, "fallback"},
		{"half candidate", func(c *Config) { c.Fallback = []ModelCandidate{{Provider: "gemini"}} }, "missing provider or model"},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.mutate(&cfg)
		err := cfg.Validate()
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("%s: got %v, want *ConfigError", tt.name, err)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.want)
		}
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.MaxRetries = 0
	cfg.Concurrency = 0
	cfg.Fallback = nil

	err := cfg.Validate()
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want *ConfigError", err)
	}
	if len(ce.Problems) != 3 {
		t.Errorf("reported %d problems, want 3: %v", len(ce.Problems), ce.Problems)
	}
}

func TestParseFallback(t *testing.T) {
	chain, err := ParseFallback("gemini:gemini-2.5-flash, anthropic:claude-sonnet-4-20250514")
	if err != nil {
		t.Fatalf("ParseFallback: %v", err)
	}
	want := []ModelCandidate{
		{Provider: "gemini", Model: "gemini-2.5-flash"},
		{Provider: "anthropic", Model: "claude-sonnet-4-20250514"},
	}
	if !reflect.DeepEqual(chain, want) {
		t.Errorf("chain = %v, want %v", chain, want)
	}

	for _, bad := range []string{"", "nomodel", "provider:", ":model"} {
		if _, err := ParseFallback(bad); err == nil {
			t.Errorf("ParseFallback(%q) should fail", bad)
		}
	}

	// Trailing separators are tolerated.
	chain, err = ParseFallback("a:b,")
	if err != nil || len(chain) != 1 {
		t.Errorf("ParseFallback(\"a:b,\") = %v, %v", chain, err)
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()

	if err := SetField(&cfg, "maxRetries", "7"); err != nil {
		t.Fatalf("SetField maxRetries: %v", err)
	}
	if cfg.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}

	if err := SetField(&cfg, "baseBackoff", "250ms"); err != nil {
		t.Fatalf("SetField baseBackoff: %v", err)
	}
	if cfg.BaseBackoff != 250*time.Millisecond {
		t.Errorf("BaseBackoff = %v", cfg.BaseBackoff)
	}

	if err := SetField(&cfg, "models", "openai:gpt-4o"); err != nil {
		t.Fatalf("SetField models: %v", err)
	}
	if len(cfg.Fallback) != 1 || cfg.Fallback[0].Provider != "openai" {
		t.Errorf("Fallback = %v", cfg.Fallback)
	}

	if err := SetField(&cfg, "maxRetries", "many"); err == nil {
		t.Error("non-integer value should fail")
	}
	if err := SetField(&cfg, "noSuchKey", "1"); err == nil {
		t.Error("unknown key should fail")
	}
}

func TestMergeRepoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, RepoConfigName)
	yaml := "max_retries: 4\nchunk_trigger_files: 9\nfallback:\n  - provider: openai\n    model: gpt-4o\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := mergeRepoFile(&cfg, path); err != nil {
		t.Fatalf("mergeRepoFile: %v", err)
	}
	if cfg.MaxRetries != 4 {
		t.Errorf("MaxRetries = %d, want 4", cfg.MaxRetries)
	}
	if cfg.ChunkTriggerFiles != 9 {
		t.Errorf("ChunkTriggerFiles = %d, want 9", cfg.ChunkTriggerFiles)
	}
	if len(cfg.Fallback) != 1 || cfg.Fallback[0].Model != "gpt-4o" {
		t.Errorf("Fallback = %v", cfg.Fallback)
	}
	// Untouched keys keep their defaults.
	if cfg.MaxChunkChars != Default().MaxChunkChars {
		t.Errorf("MaxChunkChars changed to %d", cfg.MaxChunkChars)
	}
}

func TestMergeRepoFile_Missing(t *testing.T) {
	cfg := Default()
	if err := mergeRepoFile(&cfg, filepath.Join(t.TempDir(), "absent.yml")); err != nil {
		t.Fatalf("a missing repo file is not an error: %v", err)
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("LOUPE_MAX_RETRIES", "6")
	t.Setenv("LOUPE_CONCURRENCY", "3")
	t.Setenv("LOUPE_MODELS", "ollama:qwen2.5-coder")
	t.Setenv("LOUPE_OVERSIZE_POLICY", OversizeReject)

	cfg := Default()
	mergeEnv(&cfg)

	if cfg.MaxRetries != 6 || cfg.Concurrency != 3 {
		t.Errorf("env ints not applied: retries=%d concurrency=%d", cfg.MaxRetries, cfg.Concurrency)
	}
	if len(cfg.Fallback) != 1 || cfg.Fallback[0].Provider != "ollama" {
		t.Errorf("Fallback = %v", cfg.Fallback)
	}
	if cfg.OversizePolicy != OversizeReject {
		t.Errorf("OversizePolicy = %q", cfg.OversizePolicy)
	}
}

func TestLoad_OverridesWinOverEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir()) // keep the real global file out
	t.Setenv("LOUPE_MAX_RETRIES", "6")

	cfg, err := Load(map[string]string{"maxRetries": "9", "logLevel": ""})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxRetries != 9 {
		t.Errorf("MaxRetries = %d, want flag value 9 over env value 6", cfg.MaxRetries)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("empty override should be skipped, LogLevel = %q", cfg.LogLevel)
	}
}
