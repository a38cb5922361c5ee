package ingest

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "東京")
	writeFile(t, filepath.Join(dir, "sub", "b.jsonl"), "{}")
	writeFile(t, filepath.Join(dir, "sub", "deep", "c.json"), "{}")
	writeFile(t, filepath.Join(dir, "sub", "skip.md"), "# no")

	files, err := Expand([]string{filepath.Join(dir, "**", "*"), filepath.Join(dir, "*.txt")})
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "sub", "b.jsonl"),
		filepath.Join(dir, "sub", "deep", "c.json"),
	}
	if !slices.Equal(files, want) {
		t.Errorf("got %v, want %v", files, want)
	}

	if _, err := Expand([]string{filepath.Join(dir, "*.csv")}); err == nil {
		t.Error("expected error for pattern without matches")
	}
}

func TestReadDocuments_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	writeFile(t, path, "日本語の本文")

	docs, err := ReadDocuments(path)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 doc, got %d", len(docs))
	}
	if docs[0].ID != filepath.ToSlash(path) || docs[0].Fields["body"] != "日本語の本文" {
		t.Errorf("unexpected doc: %+v", docs[0])
	}
}

func TestReadDocuments_JSON(t *testing.T) {
	dir := t.TempDir()

	single := filepath.Join(dir, "one.json")
	writeFile(t, single, `{"title": "東京タワー"}`)
	docs, err := ReadDocuments(single)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != filepath.ToSlash(single) {
		t.Errorf("single: got %+v", docs)
	}

	array := filepath.Join(dir, "many.json")
	writeFile(t, array, `[{"id": "a", "title": "東京"}, {"title": "大阪"}, {"id": 7, "title": "京都"}]`)
	docs, err = ReadDocuments(array)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	ids := []string{docs[0].ID, docs[1].ID, docs[2].ID}
	want := []string{"a", filepath.ToSlash(array) + "#1", "7"}
	if !slices.Equal(ids, want) {
		t.Errorf("got ids %v, want %v", ids, want)
	}
	if _, ok := docs[0].Fields[IDField]; ok {
		t.Error("id should not remain a field")
	}
}

func TestReadDocuments_JSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.jsonl")
	writeFile(t, path, "{\"id\": \"x\", \"body\": \"東京\"}\n\n{\"body\": \"大阪\"}\n")

	docs, err := ReadDocuments(path)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].ID != "x" || docs[1].ID != filepath.ToSlash(path)+"#3" {
		t.Errorf("got ids %q %q", docs[0].ID, docs[1].ID)
	}

	bad := filepath.Join(t.TempDir(), "bad.jsonl")
	writeFile(t, bad, "{\"body\": \n")
	if _, err := ReadDocuments(bad); err == nil {
		t.Error("expected error for malformed line")
	}
}
