package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up next to the index.
const FileName = "tinyseg.yaml"

// Config holds all configuration for the tinyseg tool.
type Config struct {
	Index    IndexConfig    `yaml:"index"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// IndexConfig holds on-disk index settings.
type IndexConfig struct {
	Dir            string `yaml:"dir"`
	FlushThreshold int    `yaml:"flush_threshold"`
	Scoring        string `yaml:"scoring"` // "bm25" or "tfidf"
}

// AnalysisConfig selects the tokenizer documents and queries go through.
type AnalysisConfig struct {
	Tokenizer string `yaml:"tokenizer"` // "tinyseg" or "chartype"
	Strict    bool   `yaml:"strict"`
}

// SearchConfig holds query-time settings.
type SearchConfig struct {
	Limit         int    `yaml:"limit"`
	HighlightPre  string `yaml:"highlight_pre"`
	HighlightPost string `yaml:"highlight_post"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Dir:            "tinyseg_index",
			FlushThreshold: 1000,
			Scoring:        "bm25",
		},
		Analysis: AnalysisConfig{
			Tokenizer: "tinyseg",
			Strict:    true,
		},
		Search: SearchConfig{
			Limit:         10,
			HighlightPre:  "[",
			HighlightPost: "]",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return cfg, nil
}

// Validate rejects values the index cannot run with.
func (c *Config) Validate() error {
	if c.Index.Dir == "" {
		return errors.New("index.dir must not be empty")
	}
	if c.Index.FlushThreshold <= 0 {
		return errors.Errorf("index.flush_threshold must be positive, got %d", c.Index.FlushThreshold)
	}
	switch c.Index.Scoring {
	case "bm25", "tfidf":
	default:
		return errors.Errorf("index.scoring: unknown mode %q", c.Index.Scoring)
	}
	if c.Analysis.Tokenizer == "" {
		return errors.New("analysis.tokenizer must not be empty")
	}
	if c.Search.Limit < 0 {
		return errors.Errorf("search.limit must not be negative, got %d", c.Search.Limit)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "write config %s", path)
}

// ParseLevel maps logging.level to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.Errorf("logging.level: unknown level %q", level)
}

// NewLogger returns a text logger on stderr at the configured level.
func (c *Config) NewLogger() *slog.Logger {
	level, err := ParseLevel(c.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
