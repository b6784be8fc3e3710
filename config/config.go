// Package config loads stringsmith settings from .stringsmith.yaml, a .env
// file and STRINGSMITH_* environment variables, in increasing order of
// precedence. Command-line flags override all of them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/stringsmith/jsonflat"
	"github.com/minios-linux/stringsmith/keymerge"
	"github.com/minios-linux/stringsmith/tsvfile"
)

// FileName is the config file looked up in the working directory.
const FileName = ".stringsmith.yaml"

// EnvFileName is the dotenv file looked up next to FileName.
const EnvFileName = ".env"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STRINGSMITH_"

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// Config holds the settings shared by all commands.
type Config struct {
	// Project is the default project file.
	Project string `yaml:"project,omitempty"`
	// Output is the default export directory.
	Output string `yaml:"output,omitempty"`
	// SourceLang is the language shown first (default "en").
	SourceLang string `yaml:"source_lang,omitempty"`
	// Languages is the column order of TSV imports.
	Languages []string `yaml:"languages,omitempty"`
	// MergeKeys merges keys with identical values on import.
	MergeKeys bool `yaml:"merge_keys,omitempty"`
	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"log_level,omitempty"`
	// UILang is the language of the CLI's own messages. Empty means the
	// gettext locale variables decide.
	UILang string `yaml:"ui_lang,omitempty"`
	// JSONPreset names the jsonflat preset used by flatten.
	JSONPreset string `yaml:"json_preset,omitempty"`
	// MaxDepth overrides the preset's flattening depth when non-zero.
	MaxDepth int `yaml:"max_depth,omitempty"`

	Merge MergeConfig `yaml:"merge,omitempty"`

	path string
}

// MergeConfig tunes the primary-key heuristics of key merging.
type MergeConfig struct {
	PreferredMarkers []string `yaml:"preferred_markers,omitempty"`
	AndroidMarkers   []string `yaml:"android_markers,omitempty"`
	AndroidPrefixes  []string `yaml:"android_prefixes,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	opts := keymerge.DefaultOptions()
	return &Config{
		Project:    "project.yaml",
		Output:     "export",
		SourceLang: "en",
		Languages:  append([]string(nil), tsvfile.DefaultLanguages...),
		LogLevel:   "info",
		JSONPreset: "config",
		Merge: MergeConfig{
			PreferredMarkers: opts.PreferredMarkers,
			AndroidMarkers:   opts.AndroidMarkers,
			AndroidPrefixes:  opts.AndroidPrefixes,
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the settings for rootDir. Missing files are not an error.
func Load(rootDir string) (*Config, error) {
	c := Default()

	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		c.path = path
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	dotenv := map[string]string{}
	envPath := filepath.Join(rootDir, EnvFileName)
	if _, err := os.Stat(envPath); err == nil {
		dotenv, err = godotenv.Read(envPath)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", envPath, err)
		}
	}
	if err := c.applyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}); err != nil {
		return nil, err
	}

	if c.SourceLang == "" {
		c.SourceLang = "en"
	}
	return c, nil
}

// applyEnv overrides fields from STRINGSMITH_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("PROJECT", &c.Project)
	str("OUTPUT", &c.Output)
	str("SOURCE_LANG", &c.SourceLang)
	str("LOG_LEVEL", &c.LogLevel)
	str("LANG", &c.UILang)
	str("JSON_PRESET", &c.JSONPreset)

	if v, ok := lookup(EnvPrefix + "LANGUAGES"); ok && v != "" {
		c.Languages = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "MERGE_KEYS"); ok && v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("%sMERGE_KEYS: %w", EnvPrefix, err)
		}
		c.MergeKeys = b
	}
	if v, ok := lookup(EnvPrefix + "MAX_DEPTH"); ok && v != "" {
		n, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("%sMAX_DEPTH: %w", EnvPrefix, err)
		}
		c.MaxDepth = n
	}
	return nil
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Path returns the config file that was read, or "".
func (c *Config) Path() string {
	return c.path
}

// ---------------------------------------------------------------------------
// Derived options
// ---------------------------------------------------------------------------

// KeyMergeOptions returns the key-merge heuristics.
func (c *Config) KeyMergeOptions() keymerge.Options {
	opts := keymerge.DefaultOptions()
	if len(c.Merge.PreferredMarkers) > 0 {
		opts.PreferredMarkers = c.Merge.PreferredMarkers
	}
	if len(c.Merge.AndroidMarkers) > 0 {
		opts.AndroidMarkers = c.Merge.AndroidMarkers
	}
	if len(c.Merge.AndroidPrefixes) > 0 {
		opts.AndroidPrefixes = c.Merge.AndroidPrefixes
	}
	return opts
}

// FlattenOptions returns the jsonflat options for preset, or for the
// configured preset when preset is "".
func (c *Config) FlattenOptions(preset string) (jsonflat.Options, error) {
	if preset == "" {
		preset = c.JSONPreset
	}
	opts := jsonflat.DefaultOptions()
	if preset != "" {
		p, ok := jsonflat.Preset(preset)
		if !ok {
			return opts, fmt.Errorf("unknown JSON preset %q", preset)
		}
		opts = p
	}
	if c.MaxDepth > 0 {
		opts.MaxDepth = c.MaxDepth
	}
	return opts, nil
}
