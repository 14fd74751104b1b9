// Package config loads and merges loupe configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (LOUPE_MODELS, LOUPE_MAX_RETRIES, etc.)
//  3. Repo-local file (.loupe.yml in the working directory)
//  4. Global file ($XDG_CONFIG_HOME/loupe/config.json)
//  5. Built-in defaults
//
// Use [Load] to obtain a merged [Config] and [Config.Validate] to reject
// nonsense thresholds before any network call is made.
package config
