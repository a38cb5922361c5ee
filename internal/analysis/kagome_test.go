package analysis

import (
	"strings"
	"testing"
)

func newTestKagome(t *testing.T) *Kagome {
	t.Helper()
	k, err := NewKagome()
	if err != nil {
		t.Skipf("kagome dictionary unavailable: %v", err)
	}
	return k
}

func TestKagome_Contiguous(t *testing.T) {
	k := newTestKagome(t)

	texts := []string{
		"日本語の本文",
		"吾輩は猫である。名前はまだ無い。",
		"  先頭と末尾に空白  ",
		"改行を\n含む\tテキスト",
		"English and 日本語 mixed",
	}
	for _, text := range texts {
		words := k.Segment(text)
		if got := strings.Join(words, ""); got != text {
			t.Errorf("Segment(%q) joined to %q", text, got)
		}
		for _, w := range words {
			if w == "" {
				t.Errorf("Segment(%q) produced an empty word", text)
			}
		}
	}
}

func TestKagome_Empty(t *testing.T) {
	k := newTestKagome(t)
	if words := k.Segment(""); len(words) != 0 {
		t.Errorf("expected no words, got %q", words)
	}
}

func TestKagome_SplitsWords(t *testing.T) {
	k := newTestKagome(t)
	words := k.Segment("日本語の本文")
	if len(words) < 2 {
		t.Errorf("expected multiple words, got %q", words)
	}
}
