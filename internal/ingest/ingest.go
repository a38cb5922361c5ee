package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IDField names the JSON key that carries a document's external ID.
const IDField = "id"

// Document is one input record ready for indexing.
type Document struct {
	ID     string
	Fields map[string]any
}

// Supported reports whether path has an extension ReadDocuments understands.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".json", ".jsonl":
		return true
	}
	return false
}

// Expand resolves doublestar patterns to a sorted, de-duplicated list of
// supported regular files. A pattern that matches nothing is an error.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		for _, path := range matches {
			if seen[path] || !Supported(path) {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				return nil, err
			}
			if !info.Mode().IsRegular() {
				continue
			}
			seen[path] = true
			files = append(files, path)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ReadDocuments parses a file into documents.
//
// A .txt file becomes one document with "path" and "body" fields, keyed by
// its path. A .json file holds one object or an array of objects and a
// .jsonl file one object per line; objects use their "id" value as the
// document ID, falling back to path#n.
func ReadDocuments(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key := filepath.ToSlash(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return []Document{{
			ID:     key,
			Fields: map[string]any{"path": key, "body": string(data)},
		}}, nil
	case ".json":
		return readJSON(key, data)
	case ".jsonl":
		return readJSONLines(key, data)
	}
	return nil, fmt.Errorf("unsupported file type: %s", path)
}

func readJSON(key string, data []byte) ([]Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var objs []map[string]any
		if err := json.Unmarshal(trimmed, &objs); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		docs := make([]Document, len(objs))
		for i, obj := range objs {
			docs[i] = newDocument(key, i, obj)
		}
		return docs, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	doc := newDocument(key, 0, obj)
	if _, ok := obj[IDField]; !ok {
		doc.ID = key
	}
	return []Document{doc}, nil
}

func readJSONLines(key string, data []byte) ([]Document, error) {
	var docs []Document
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(text, &obj); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", key, line, err)
		}
		docs = append(docs, newDocument(key, line, obj))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return docs, nil
}

// newDocument takes the ID out of obj; the remaining keys become fields.
func newDocument(key string, n int, obj map[string]any) Document {
	id := fmt.Sprintf("%s#%d", key, n)
	if v, ok := obj[IDField]; ok {
		switch v := v.(type) {
		case string:
			if v != "" {
				id = v
			}
		case float64:
			id = fmt.Sprintf("%v", v)
		}
		delete(obj, IDField)
	}
	return Document{ID: id, Fields: obj}
}
