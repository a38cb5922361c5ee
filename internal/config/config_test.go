package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Analysis.Tokenizer != "tinyseg" || cfg.Index.Scoring != "bm25" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Search.HighlightPre != "[" || cfg.Search.HighlightPost != "]" {
		t.Errorf("unexpected highlight markers: %q %q", cfg.Search.HighlightPre, cfg.Search.HighlightPost)
	}
}

func TestLoad_OverridesKeepUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := "index:\n  dir: /tmp/idx\n  scoring: tfidf\nanalysis:\n  tokenizer: chartype\n  strict: false\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Index.Dir != "/tmp/idx" || cfg.Index.Scoring != "tfidf" {
		t.Errorf("index not overridden: %+v", cfg.Index)
	}
	if cfg.Analysis.Tokenizer != "chartype" || cfg.Analysis.Strict {
		t.Errorf("analysis not overridden: %+v", cfg.Analysis)
	}
	if cfg.Index.FlushThreshold != 1000 {
		t.Errorf("flush threshold default lost: %d", cfg.Index.FlushThreshold)
	}
	if cfg.Search.Limit != 10 {
		t.Errorf("search limit default lost: %d", cfg.Search.Limit)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "index: [\n"},
		{"bad scoring", "index:\n  scoring: cosine\n"},
		{"bad threshold", "index:\n  flush_threshold: 0\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"empty tokenizer", "analysis:\n  tokenizer: \"\"\n"},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), FileName)
		if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Search.Limit = 3
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Search.Limit != 3 {
		t.Errorf("got limit %d", loaded.Search.Limit)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
