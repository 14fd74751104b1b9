package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Oversize policies for single files whose diff exceeds the per-call ceiling.
const (
	OversizeTruncate = "truncate"
	OversizeReject   = "reject"
)

// ModelCandidate is one entry in the ordered fallback chain.
type ModelCandidate struct {
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model" yaml:"model"`
}

func (m ModelCandidate) String() string {
	return m.Provider + ":" + m.Model
}

// Config holds every threshold the review pipeline reads. One value is
// built per run and threaded through all components; there is no package
// level mutable state.
type Config struct {
	// Chunking is engaged only when both trigger thresholds are exceeded.
	ChunkTriggerFiles int `json:"chunkTriggerFiles" yaml:"chunk_trigger_files"`
	ChunkTriggerChars int `json:"chunkTriggerChars" yaml:"chunk_trigger_chars"`

	// Packing caps for a single chunk.
	MaxChunkChars int `json:"maxChunkChars" yaml:"max_chunk_chars"`
	MaxChunkFiles int `json:"maxChunkFiles" yaml:"max_chunk_files"`

	// MaxCallChars is the hard ceiling for one provider call. A lone file
	// above it is truncated at a hunk boundary or rejected, per
	// OversizePolicy.
	MaxCallChars   int    `json:"maxCallChars" yaml:"max_call_chars"`
	OversizePolicy string `json:"oversizePolicy" yaml:"oversize_policy"`

	// Retry behavior per fallback candidate.
	MaxRetries  int           `json:"maxRetries" yaml:"max_retries"`
	BaseBackoff time.Duration `json:"baseBackoff" yaml:"base_backoff"`
	MaxBackoff  time.Duration `json:"maxBackoff" yaml:"max_backoff"`

	// Concurrency bounds parallel chunk calls. 1 means sequential, which
	// is kindest to shared provider rate limits.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Fallback is the ordered provider:model chain tried per chunk.
	Fallback []ModelCandidate `json:"fallback" yaml:"fallback"`

	RedactSecrets bool   `json:"redactSecrets" yaml:"redact_secrets"`
	LogLevel      string `json:"logLevel" yaml:"log_level"`
	LogFormat     string `json:"logFormat" yaml:"log_format"`
}

// Default returns a Config with all defaults applied. The chunking and
// retry numbers match the GitHub Action this tool grew out of: small PRs
// (<=5 files and <=30k chars) are reviewed in one pass, chunks stay under
// 40k chars, and transient failures get a 5s base delay doubled per retry.
func Default() Config {
	return Config{
		ChunkTriggerFiles: 5,
		ChunkTriggerChars: 30000,
		MaxChunkChars:     40000,
		MaxChunkFiles:     20,
		MaxCallChars:      120000,
		OversizePolicy:    OversizeTruncate,
		MaxRetries:        2,
		BaseBackoff:       5 * time.Second,
		MaxBackoff:        60 * time.Second,
		Concurrency:       1,
		Fallback: []ModelCandidate{
			{Provider: "gemini", Model: "gemini-2.5-flash"},
			{Provider: "gemini", Model: "gemini-2.0-flash"},
			{Provider: "gemini", Model: "gemini-2.5-pro"},
		},
		RedactSecrets: true,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// ConfigError reports invalid configuration. It always aborts a run before
// any network call is made.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Validate checks every threshold. Any value <= 0, an empty fallback chain,
// or an unknown oversize policy is rejected.
func (c Config) Validate() error {
	var problems []string

	check := func(name string, v int) {
		if v <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be > 0 (got %d)", name, v))
		}
	}
	check("chunkTriggerFiles", c.ChunkTriggerFiles)
	check("chunkTriggerChars", c.ChunkTriggerChars)
	check("maxChunkChars", c.MaxChunkChars)
	check("maxChunkFiles", c.MaxChunkFiles)
	check("maxCallChars", c.MaxCallChars)
	check("maxRetries", c.MaxRetries)
	check("concurrency", c.Concurrency)

	if c.BaseBackoff <= 0 {
		problems = append(problems, "baseBackoff must be > 0")
	}
	if c.MaxBackoff < c.BaseBackoff {
		problems = append(problems, "maxBackoff must be >= baseBackoff")
	}
	if c.MaxChunkChars > c.MaxCallChars {
		problems = append(problems, "maxChunkChars must not exceed maxCallChars")
	}
	if c.OversizePolicy != OversizeTruncate && c.OversizePolicy != OversizeReject {
		problems = append(problems, fmt.Sprintf("oversizePolicy must be %q or %q (got %q)",
			OversizeTruncate, OversizeReject, c.OversizePolicy))
	}
	if len(c.Fallback) == 0 {
		problems = append(problems, "fallback chain must list at least one provider:model candidate")
	}
	for _, cand := range c.Fallback {
		if cand.Provider == "" || cand.Model == "" {
			problems = append(problems, fmt.Sprintf("fallback candidate %q is missing provider or model", cand))
		}
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory for loupe.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "loupe"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "loupe"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "loupe"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "loupe"), nil
	default:
		return filepath.Join(home, ".config", "loupe"), nil
	}
}

// ConfigPath returns the full path to the global config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// RepoConfigName is the repo-local config file looked up in the working
// directory. It overrides the global file and is itself overridden by
// environment variables and flags.
const RepoConfigName = ".loupe.yml"

// Load builds the effective config by merging:
// defaults <- global file <- repo file <- env <- overrides.
// The overrides map comes from CLI flags; only set keys are applied.
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	if err := mergeGlobalFile(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeRepoFile(&cfg, RepoConfigName); err != nil {
		return Config{}, err
	}
	mergeEnv(&cfg)
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save writes cfg to the global config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func mergeGlobalFile(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func mergeRepoFile(cfg *Config, name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func mergeEnv(cfg *Config) {
	intVar := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	intVar("LOUPE_CHUNK_TRIGGER_FILES", &cfg.ChunkTriggerFiles)
	intVar("LOUPE_CHUNK_TRIGGER_CHARS", &cfg.ChunkTriggerChars)
	intVar("LOUPE_MAX_CHUNK_CHARS", &cfg.MaxChunkChars)
	intVar("LOUPE_MAX_CHUNK_FILES", &cfg.MaxChunkFiles)
	intVar("LOUPE_MAX_CALL_CHARS", &cfg.MaxCallChars)
	intVar("LOUPE_MAX_RETRIES", &cfg.MaxRetries)
	intVar("LOUPE_CONCURRENCY", &cfg.Concurrency)

	if v := os.Getenv("LOUPE_MODELS"); v != "" {
		if chain, err := ParseFallback(v); err == nil {
			cfg.Fallback = chain
		}
	}
	if v := os.Getenv("LOUPE_OVERSIZE_POLICY"); v != "" {
		cfg.OversizePolicy = v
	}
	if v := os.Getenv("LOUPE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns an error for
// unknown keys or unparseable values.
func SetField(cfg *Config, key, value string) error {
	setInt := func(dst *int) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		*dst = n
		return nil
	}
	setDuration := func(dst *time.Duration) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s must be a duration (e.g. 5s): %w", key, err)
		}
		*dst = d
		return nil
	}

	switch key {
	case "chunkTriggerFiles":
		return setInt(&cfg.ChunkTriggerFiles)
	case "chunkTriggerChars":
		return setInt(&cfg.ChunkTriggerChars)
	case "maxChunkChars":
		return setInt(&cfg.MaxChunkChars)
	case "maxChunkFiles":
		return setInt(&cfg.MaxChunkFiles)
	case "maxCallChars":
		return setInt(&cfg.MaxCallChars)
	case "maxRetries":
		return setInt(&cfg.MaxRetries)
	case "concurrency":
		return setInt(&cfg.Concurrency)
	case "baseBackoff":
		return setDuration(&cfg.BaseBackoff)
	case "maxBackoff":
		return setDuration(&cfg.MaxBackoff)
	case "oversizePolicy":
		cfg.OversizePolicy = value
	case "models":
		chain, err := ParseFallback(value)
		if err != nil {
			return err
		}
		cfg.Fallback = chain
	case "logLevel":
		cfg.LogLevel = value
	case "logFormat":
		cfg.LogFormat = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// ParseFallback parses a comma-separated "provider:model" chain, e.g.
// "gemini:gemini-2.5-flash,anthropic:claude-sonnet-4-20250514".
func ParseFallback(s string) ([]ModelCandidate, error) {
	var chain []ModelCandidate
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		provider, model, ok := strings.Cut(part, ":")
		if !ok || provider == "" || model == "" {
			return nil, fmt.Errorf("invalid model candidate %q: want provider:model", part)
		}
		chain = append(chain, ModelCandidate{Provider: provider, Model: model})
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("empty model chain")
	}
	return chain, nil
}
