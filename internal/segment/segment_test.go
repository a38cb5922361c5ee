package segment

import (
	"slices"
	"testing"

	"github.com/RoaringBitmap/roaring"

	"harshagw/tinyseg/internal/analysis"
)

// makeSegment builds and opens a segment from docs added in id order.
func makeSegment(t *testing.T, ids []string, docs map[string]map[string]any) *Segment {
	t.Helper()
	dir := t.TempDir()
	b := NewBuilder(testAnalyzer(), analysis.CharType)
	for _, id := range ids {
		mustAdd(t, b, id, docs[id])
	}
	segPath, err := b.Build(dir, "test")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	seg, err := Open(segPath, "test")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { seg.Close() })
	return seg
}

func TestSegment_Search_FindsTerm(t *testing.T) {
	seg := makeSegment(t, []string{"doc1", "doc2"}, map[string]map[string]any{
		"doc1": {"title": "東京の夜"},
		"doc2": {"title": "東京タワー"},
	})

	postings, err := seg.Search("東京", "title", nil)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
	if postings[1].Offsets[0] != (Span{0, 6}) {
		t.Errorf("offsets: got %+v", postings[1].Offsets)
	}
}

func TestSegment_Search_Missing(t *testing.T) {
	seg := makeSegment(t, []string{"doc1"}, map[string]map[string]any{
		"doc1": {"title": "猫"},
	})

	postings, err := seg.Search("犬", "title", nil)
	if err != nil || len(postings) != 0 {
		t.Errorf("missing term: postings=%v err=%v", postings, err)
	}
	postings, err = seg.Search("猫", "nofield", nil)
	if err != nil || len(postings) != 0 {
		t.Errorf("missing field: postings=%v err=%v", postings, err)
	}
}

func TestSegment_Search_ExcludesDeleted(t *testing.T) {
	seg := makeSegment(t, []string{"doc1", "doc2"}, map[string]map[string]any{
		"doc1": {"title": "猫"},
		"doc2": {"title": "猫"},
	})

	deleted := roaring.New()
	deleted.Add(0)
	postings, err := seg.Search("猫", "title", deleted)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if len(postings) != 1 || postings[0].DocNum != 1 {
		t.Errorf("expected only docNum 1, got %+v", postings)
	}
}

func TestSegment_DocNumbers(t *testing.T) {
	seg := makeSegment(t, []string{"a", "b", "c"}, map[string]map[string]any{
		"a": {"title": "猫"},
		"b": {"title": "犬"},
		"c": {"title": "鳥"},
	})

	bm := seg.DocNumbers([]string{"c", "a", "missing"})
	if got := bm.ToArray(); !slices.Equal(got, []uint32{0, 2}) {
		t.Errorf("got %v, want [0 2]", got)
	}
}

func TestSegment_LoadDocAndMetadata(t *testing.T) {
	seg := makeSegment(t, []string{"doc1"}, map[string]map[string]any{
		"doc1": {"title": "日本語の本文"},
	})

	doc, err := seg.LoadDoc(0)
	if err != nil {
		t.Fatalf("LoadDoc error: %v", err)
	}
	if doc["title"] != "日本語の本文" {
		t.Errorf("stored title: got %v", doc["title"])
	}
	if _, err := seg.LoadDoc(1); err == nil {
		t.Error("expected out of range error")
	}
	if id, ok := seg.ExternalID(0); !ok || id != "doc1" {
		t.Errorf("ExternalID: got %q %v", id, ok)
	}
	if seg.Tokenizer() != analysis.CharType {
		t.Errorf("tokenizer: got %q", seg.Tokenizer())
	}
	if fields := seg.Fields(); !slices.Equal(fields, []string{"title"}) {
		t.Errorf("fields: got %v", fields)
	}
	if seg.AvgFieldLength("title") != 3 {
		t.Errorf("avg field length: got %v, want 3", seg.AvgFieldLength("title"))
	}
}

func TestSegment_PrefixTerms(t *testing.T) {
	seg := makeSegment(t, []string{"doc1"}, map[string]map[string]any{
		"doc1": {"title": "東京 東北 大阪"},
	})

	terms, err := seg.PrefixTerms("東", "title")
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if !slices.Equal(terms, []string{"東京", "東北"}) {
		t.Errorf("got %v", terms)
	}
}

func TestOpen_RejectsGarbage(t *testing.T) {
	path := t.TempDir() + "/bad.seg"
	if err := writeFile(path, make([]byte, 128)); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, "bad"); err == nil {
		t.Error("expected error for invalid segment")
	}
}
