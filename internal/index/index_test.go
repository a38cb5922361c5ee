package index

import (
	"errors"
	"strings"
	"testing"

	"harshagw/tinyseg/internal/analysis"
)

func openTestIndex(t *testing.T, dir string) *Index {
	t.Helper()
	config := DefaultConfig(dir)
	config.FlushThreshold = 10000
	idx, err := New(config)
	if err != nil {
		t.Fatalf("New index error: %v", err)
	}
	return idx
}

func mustIndex(t *testing.T, idx *Index, id, body string) {
	t.Helper()
	if err := idx.Index(id, map[string]any{"body": body}); err != nil {
		t.Fatalf("Index(%s) error: %v", id, err)
	}
}

func TestIndex_FlushAndReopen(t *testing.T) {
	dir := t.TempDir()
	idx := openTestIndex(t, dir)
	mustIndex(t, idx, "doc1", "東京の夜")
	mustIndex(t, idx, "doc2", "大阪の朝")

	if err := idx.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	if idx.NumSegments() != 1 {
		t.Fatalf("expected 1 segment, got %d", idx.NumSegments())
	}
	idx.Close()

	idx = openTestIndex(t, dir)
	defer idx.Close()

	if idx.NumSegments() != 1 {
		t.Fatalf("expected 1 segment after reopen, got %d", idx.NumSegments())
	}
	postings, err := idx.DumpPostings("body", "東京")
	if err != nil {
		t.Fatalf("DumpPostings error: %v", err)
	}
	if len(postings) != 1 || postings[0].Offsets[0].End != 6 {
		t.Errorf("unexpected postings %+v", postings)
	}
}

func TestIndex_FlushThreshold(t *testing.T) {
	config := DefaultConfig(t.TempDir())
	config.FlushThreshold = 2
	idx, err := New(config)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer idx.Close()

	mustIndex(t, idx, "a", "猫")
	mustIndex(t, idx, "b", "犬")
	if idx.NumSegments() != 1 {
		t.Errorf("expected automatic flush, got %d segments", idx.NumSegments())
	}
}

func TestIndex_DeleteAcrossSegments(t *testing.T) {
	idx := openTestIndex(t, t.TempDir())
	defer idx.Close()

	mustIndex(t, idx, "doc1", "猫")
	mustIndex(t, idx, "doc2", "猫")
	idx.Flush()

	if err := idx.Delete("doc1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	snap, err := idx.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if snap.TotalDocs() != 1 {
		t.Errorf("expected 1 live doc, got %d", snap.TotalDocs())
	}

	idx.Flush()
	segID := idx.Segments()[0].ID
	deleted, err := idx.DumpDeletions(segID)
	if err != nil {
		t.Fatalf("DumpDeletions error: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != 0 {
		t.Errorf("expected docNum 0 deleted, got %v", deleted)
	}
}

func TestIndex_ReplaceAndGet(t *testing.T) {
	idx := openTestIndex(t, t.TempDir())
	defer idx.Close()

	mustIndex(t, idx, "doc1", "古い本文")
	idx.Flush()
	mustIndex(t, idx, "doc1", "新しい本文")

	doc, found, err := idx.Get("doc1")
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if doc["body"] != "新しい本文" {
		t.Errorf("buffered version: got %v", doc["body"])
	}

	idx.Flush()
	doc, found, err = idx.Get("doc1")
	if err != nil || !found || doc["body"] != "新しい本文" {
		t.Errorf("flushed version: doc=%v found=%v err=%v", doc, found, err)
	}

	idx.Delete("doc1")
	if _, found, _ := idx.Get("doc1"); found {
		t.Error("deleted document should not be found")
	}
}

func TestIndex_Merge(t *testing.T) {
	dir := t.TempDir()
	idx := openTestIndex(t, dir)
	defer idx.Close()

	mustIndex(t, idx, "doc1", "猫")
	idx.Flush()
	mustIndex(t, idx, "doc2", "犬")
	idx.Flush()
	idx.Delete("doc1")

	if err := idx.ForceMerge(); err != nil {
		t.Fatalf("ForceMerge error: %v", err)
	}
	segs := idx.Segments()
	if len(segs) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segs))
	}
	if segs[0].NumDocs != 1 {
		t.Errorf("expected deleted doc dropped, got %d docs", segs[0].NumDocs)
	}

	doc, found, err := idx.Get("doc2")
	if err != nil || !found || doc["body"] != "犬" {
		t.Errorf("Get after merge: doc=%v found=%v err=%v", doc, found, err)
	}
}

func TestIndex_TokenizerMismatch(t *testing.T) {
	dir := t.TempDir()
	idx := openTestIndex(t, dir)
	idx.Close()

	config := DefaultConfig(dir)
	config.TokenizerName = analysis.TinySeg
	if _, err := New(config); err == nil {
		t.Fatal("expected tokenizer mismatch error")
	}
}

func TestIndex_StrictRejectsNonContiguous(t *testing.T) {
	config := DefaultConfig(t.TempDir())
	config.Tokenizer = analysis.NewTokenizer(analysis.SegmenterFunc(strings.Fields))
	config.TokenizerName = "fields"
	idx, err := New(config)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer idx.Close()

	mustIndex(t, idx, "doc1", "keep")
	err = idx.Index("doc1", map[string]any{"body": "two words"})
	if !errors.Is(err, analysis.ErrNotContiguous) {
		t.Fatalf("expected ErrNotContiguous, got %v", err)
	}

	doc, found, _ := idx.Get("doc1")
	if !found || doc["body"] != "keep" {
		t.Errorf("rejected update must keep old version, got %v", doc)
	}
}

func TestIndex_ClosedOperations(t *testing.T) {
	idx := openTestIndex(t, t.TempDir())
	idx.Close()

	if err := idx.Index("doc1", map[string]any{"body": "猫"}); err == nil {
		t.Error("Index on closed index should fail")
	}
	if _, err := idx.Snapshot(); err == nil {
		t.Error("Snapshot on closed index should fail")
	}
	if err := idx.Close(); err != nil {
		t.Errorf("second Close should be a no-op: %v", err)
	}
}

func TestParseScoringMode(t *testing.T) {
	if m, err := ParseScoringMode("tfidf"); err != nil || m != ScoringTFIDF {
		t.Errorf("tfidf: %v %v", m, err)
	}
	if m, err := ParseScoringMode(""); err != nil || m != ScoringBM25 {
		t.Errorf("default: %v %v", m, err)
	}
	if _, err := ParseScoringMode("vector"); err == nil {
		t.Error("expected error")
	}
}
