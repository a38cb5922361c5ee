package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"harshagw/tinyseg/internal/analysis"
	"harshagw/tinyseg/internal/config"
	"harshagw/tinyseg/internal/index"
)

var (
	cfgFile  string
	indexDir string
	cfg      *config.Config
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tinyseg",
	Short: "Japanese full-text index with token offsets and positions",
	Long: `tinyseg segments Japanese text into a positioned token stream and keeps
a segment-based inverted index with phrase search and highlighting.

Example usage:
  tinyseg analyze 日本語の本文          # Show the token stream
  tinyseg index 'docs/**/*.jsonl'       # Index files
  tinyseg search --field body 東京 タワー  # Phrase search`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.FileName
		}

		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if indexDir != "" {
			cfg.Index.Dir = indexDir
		}
		logger = cfg.NewLogger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&indexDir, "index", "", "index directory (overrides index.dir)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadTokenizer resolves the configured tokenizer name. The dictionary
// tokenizer is only loaded when it is asked for.
func loadTokenizer(name string) (*analysis.Tokenizer, error) {
	registry := analysis.NewRegistry()
	if name == analysis.TinySeg {
		if err := registry.RegisterKagome(); err != nil {
			return nil, fmt.Errorf("failed to load dictionary for %q (try %q): %w", name, analysis.CharType, err)
		}
	}
	return registry.Get(name)
}

func openIndex() (*index.Index, error) {
	tokenizer, err := loadTokenizer(cfg.Analysis.Tokenizer)
	if err != nil {
		return nil, err
	}
	scoring, err := index.ParseScoringMode(cfg.Index.Scoring)
	if err != nil {
		return nil, err
	}

	return index.New(index.Config{
		Dir:            cfg.Index.Dir,
		FlushThreshold: cfg.Index.FlushThreshold,
		Tokenizer:      tokenizer,
		TokenizerName:  cfg.Analysis.Tokenizer,
		Strict:         cfg.Analysis.Strict,
		ScoringMode:    scoring,
		Logger:         logger,
	})
}
