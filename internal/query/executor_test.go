package query

import (
	"slices"
	"sort"
	"testing"

	"harshagw/tinyseg/internal/index"
	"harshagw/tinyseg/internal/search"
)

func createTestSearcher(t *testing.T) (*index.Index, *search.Searcher) {
	t.Helper()
	idx, err := index.New(index.DefaultConfig(t.TempDir()))
	if err != nil {
		t.Fatalf("New index error: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	docs := map[string]map[string]any{
		"doc1": {"title": "東京タワー", "body": "東京の夜は明るい"},
		"doc2": {"title": "大阪城", "body": "大阪の夜と東京の朝"},
		"doc3": {"title": "京都駅", "body": "京都の朝"},
	}
	for id, doc := range docs {
		if err := idx.Index(id, doc); err != nil {
			t.Fatalf("Index error: %v", err)
		}
	}
	if err := idx.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}

	snap, err := idx.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	return idx, search.New(snap)
}

func ids(results []search.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.DocID
	}
	sort.Strings(out)
	return out
}

func TestRun(t *testing.T) {
	idx, s := createTestSearcher(t)

	tests := []struct {
		input string
		want  []string
	}{
		{"東京", []string{"doc1", "doc2"}},
		{"body:東京の朝", []string{"doc2"}},
		{"の夜", []string{"doc1", "doc2"}},
		{"夜 朝", []string{"doc2"}},
		{"大阪 OR 京都", []string{"doc2", "doc3"}},
		{"朝 -大阪", []string{"doc3"}},
		{"title:東*", []string{"doc1"}},
		{"（東京 OR 京都）AND 朝", []string{"doc2", "doc3"}},
		{"名古屋", []string{}},
	}

	for _, tt := range tests {
		_, results, err := Run(tt.input, idx.Analyzer(), s)
		if err != nil {
			t.Fatalf("Run(%q): %v", tt.input, err)
		}
		if got := ids(results); !slices.Equal(got, tt.want) {
			t.Errorf("Run(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestRun_OnlyNegation(t *testing.T) {
	idx, s := createTestSearcher(t)
	if _, _, err := Run("-東京", idx.Analyzer(), s); err == nil {
		t.Error("expected error for query without a positive clause")
	}
}

func TestRun_MatchedTermsCombine(t *testing.T) {
	idx, s := createTestSearcher(t)
	_, results, err := Run("夜 朝", idx.Analyzer(), s)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !slices.Equal(results[0].MatchedTerms, []string{"夜", "朝"}) {
		t.Errorf("got matched terms %v", results[0].MatchedTerms)
	}
}

type fakeBackend struct {
	hits map[string][]search.Result
}

func (f fakeBackend) Search(term, field string) ([]search.Result, error) {
	return f.hits[term], nil
}

func (f fakeBackend) PhraseSearch(phrase, field string) ([]search.Result, error) {
	return f.hits[phrase], nil
}

func (f fakeBackend) PrefixSearch(prefix, field string) ([]search.Result, error) {
	return f.hits[prefix+"*"], nil
}

func TestExecute_ScoresSumAndSort(t *testing.T) {
	backend := fakeBackend{hits: map[string][]search.Result{
		"a": {{DocID: "x", Score: 1}, {DocID: "y", Score: 3}},
		"b": {{DocID: "x", Score: 5}, {DocID: "z", Score: 1}},
	}}
	q := &BoolQuery{Should: []Query{&TermQuery{Term: "a"}, &TermQuery{Term: "b"}}}

	results, err := NewExecutor(backend).Execute(q)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	want := []search.Result{{DocID: "x", Score: 6}, {DocID: "y", Score: 3}, {DocID: "z", Score: 1}}
	if len(results) != len(want) {
		t.Fatalf("got %v", results)
	}
	for i := range want {
		if results[i].DocID != want[i].DocID || results[i].Score != want[i].Score {
			t.Errorf("result %d: got %+v, want %+v", i, results[i], want[i])
		}
	}
}

func TestExecute_UnrewrittenWord(t *testing.T) {
	if _, err := NewExecutor(fakeBackend{}).Execute(&WordQuery{Word: "東京"}); err == nil {
		t.Error("expected error for WordQuery")
	}
}
