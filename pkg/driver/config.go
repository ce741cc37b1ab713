package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigEnvVar names the environment variable that points at a lazr.yml.
const ConfigEnvVar = "LAZR_CONFIG"

// WarningSink selects where runtime warnings are echoed.
type WarningSink string

const (
	WarningsStderr  WarningSink = "stderr"
	WarningsDiscard WarningSink = "discard"
)

// IsValid reports whether the sink is recognised.
func (s WarningSink) IsValid() bool {
	switch s {
	case WarningsStderr, WarningsDiscard:
		return true
	default:
		return false
	}
}

// Config holds interpreter settings loaded from lazr.yml.
type Config struct {
	Path string
	// MaxDepth bounds nested calls and promise forcing.
	MaxDepth int
	// MatchCache enables the per-call-site argument matching cache.
	MatchCache bool
	// GCInterval is the number of top-level evaluations between heap
	// collections. Zero disables periodic collection.
	GCInterval int
	Warnings   WarningSink
}

const (
	DefaultMaxDepth   = 5000
	DefaultGCInterval = 64
)

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() Config {
	return Config{
		MaxDepth:   DefaultMaxDepth,
		MatchCache: true,
		GCInterval: DefaultGCInterval,
		Warnings:   WarningsStderr,
	}
}

// configFile mirrors the on-disk layout. Pointer fields distinguish absent
// keys from explicit zero values.
type configFile struct {
	MaxDepth   *int   `yaml:"max_depth"`
	MatchCache *bool  `yaml:"match_cache"`
	GCInterval *int   `yaml:"gc_interval"`
	Warnings   string `yaml:"warnings"`
}

func (f *configFile) applyTo(cfg *Config) {
	if f == nil {
		return
	}
	if f.MaxDepth != nil {
		cfg.MaxDepth = *f.MaxDepth
	}
	if f.MatchCache != nil {
		cfg.MatchCache = *f.MatchCache
	}
	if f.GCInterval != nil {
		cfg.GCInterval = *f.GCInterval
	}
	if f.Warnings != "" {
		cfg.Warnings = WarningSink(strings.ToLower(strings.TrimSpace(f.Warnings)))
	}
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Validate checks the settings and reports every problem at once.
func (c Config) Validate() error {
	var errs ValidationError
	if c.MaxDepth <= 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_depth must be positive, got %d", c.MaxDepth))
	}
	if c.GCInterval < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("gc_interval must not be negative, got %d", c.GCInterval))
	}
	if !c.Warnings.IsValid() {
		errs.Issues = append(errs.Issues, fmt.Sprintf("warnings must be %q or %q, got %q", WarningsStderr, WarningsDiscard, c.Warnings))
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// WarningWriter returns the writer warnings should be echoed to.
func (c Config) WarningWriter(stderr io.Writer) io.Writer {
	if c.Warnings == WarningsDiscard || stderr == nil {
		return io.Discard
	}
	return stderr
}

// LoadConfig parses and validates the config file at path.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	cfg, err := decodeConfig(file, absPath)
	if err != nil {
		return Config{}, err
	}
	cfg.Path = absPath
	return cfg, nil
}

// ParseConfig decodes config YAML held in memory.
func ParseConfig(data []byte) (Config, error) {
	return decodeConfig(bytes.NewReader(data), "<memory>")
}

func decodeConfig(r io.Reader, label string) (Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	cfg := DefaultConfig()
	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: parse %s: %w", label, err)
	}
	raw.applyTo(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolveConfig loads the file named by LAZR_CONFIG, or returns defaults when
// the variable is unset.
func ResolveConfig() (Config, error) {
	path := strings.TrimSpace(os.Getenv(ConfigEnvVar))
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}
