package search

import (
	"testing"

	"harshagw/tinyseg/internal/segment"
)

func TestMergeSpans(t *testing.T) {
	got := mergeSpans([]segment.Span{{Start: 6, End: 9}, {Start: 0, End: 3}, {Start: 2, End: 5}, {Start: 9, End: 12}})
	want := []segment.Span{{Start: 0, End: 5}, {Start: 6, End: 12}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("span %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMarkSpans(t *testing.T) {
	text := "日本語の本文"
	got, err := markSpans(text, []segment.Span{{Start: 0, End: 9}, {Start: 12, End: 18}}, "<em>", "</em>")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if want := "<em>日本語</em>の<em>本文</em>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if _, err := markSpans(text, []segment.Span{{Start: 12, End: 30}}, "[", "]"); err == nil {
		t.Error("expected error for span past end of text")
	}
}
