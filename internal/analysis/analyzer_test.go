package analysis

import (
	"errors"
	"strings"
	"testing"
)

func TestStreamAnalyzer_DropsWhitespace(t *testing.T) {
	a := NewAnalyzer(NewTokenizer(NewCharClass()), false)
	text := "猫 です"

	tokens, err := a.Analyze(text)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if got := strings.Join(Terms(tokens), "|"); got != "猫|です" {
		t.Fatalf("terms: got %q", got)
	}

	// The skipped space still consumes a position and its bytes.
	if tokens[1].Position != 2 {
		t.Errorf("second term position: got %d, want 2", tokens[1].Position)
	}
	if text[tokens[1].OffsetFrom:tokens[1].OffsetTo] != "です" {
		t.Errorf("second term span: got %q", text[tokens[1].OffsetFrom:tokens[1].OffsetTo])
	}
}

func TestStreamAnalyzer_Strict(t *testing.T) {
	a := NewAnalyzer(NewTokenizer(SegmenterFunc(strings.Fields)), true)
	if _, err := a.Analyze("a b"); !errors.Is(err, ErrNotContiguous) {
		t.Errorf("expected ErrNotContiguous, got %v", err)
	}

	lenient := NewAnalyzer(NewTokenizer(SegmenterFunc(strings.Fields)), false)
	tokens, err := lenient.Analyze("a b")
	if err != nil {
		t.Fatalf("lenient Analyze error: %v", err)
	}
	if len(tokens) != 2 {
		t.Errorf("expected 2 tokens, got %d", len(tokens))
	}
}

func TestStreamAnalyzer_Empty(t *testing.T) {
	a := NewAnalyzer(NewTokenizer(NewCharClass()), true)
	tokens, err := a.Analyze("")
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("expected no tokens, got %d", len(tokens))
	}
}
