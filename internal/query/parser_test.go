package query

import (
	"testing"

	"harshagw/tinyseg/internal/analysis"
)

func mustParse(t *testing.T, input string) Query {
	t.Helper()
	q, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", input, err)
	}
	return q
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"東京", "word(東京)"},
		{"title:東京", "word(title:東京)"},
		{"「東京 タワー」", `phrase("東京 タワー")`},
		{`body:"の夜"`, `phrase(body:"の夜")`},
		{"東*", "prefix(東*)"},
		{"東京 大阪", "bool(AND(word(東京), word(大阪)))"},
		{"東京 AND 大阪", "bool(AND(word(東京), word(大阪)))"},
		{"東京 OR 大阪", "bool(OR(word(東京), word(大阪)))"},
		{"東京 大阪 OR 京都", "bool(OR(bool(AND(word(東京), word(大阪))), word(京都)))"},
		{"東京 (大阪 OR 京都)", "bool(AND(word(東京), bool(OR(word(大阪), word(京都)))))"},
		{"東京 -大阪", "bool(AND(word(東京), bool(NOT(word(大阪)))))"},
	}

	for _, tt := range tests {
		if got := mustParse(t, tt.input).String(); got != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"", "東京 AND", "(東京", "東京)", "title:", "title:(東京)", "OR 東京"} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q): expected error", input)
		}
	}
}

func TestRewrite(t *testing.T) {
	a := analysis.NewAnalyzer(analysis.NewTokenizer(analysis.NewCharClass()), true)

	tests := []struct {
		input string
		want  string
	}{
		{"東京", "term(東京)"},
		{"title:東京の夜", `phrase(title:"東京の夜")`},
		{"東京 -大阪の", `bool(AND(term(東京), bool(NOT(phrase("大阪の")))))`},
		{"「東京」", `phrase("東京")`},
		{"東*", "prefix(東*)"},
	}
	for _, tt := range tests {
		q, err := Rewrite(mustParse(t, tt.input), a)
		if err != nil {
			t.Fatalf("Rewrite(%q): %v", tt.input, err)
		}
		if got := q.String(); got != tt.want {
			t.Errorf("Rewrite(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestRewrite_NoTerms(t *testing.T) {
	a := analysis.NewAnalyzer(analysis.NewTokenizer(analysis.SegmenterFunc(func(string) []string { return nil })), false)
	if _, err := Rewrite(&WordQuery{Word: "東京"}, a); err == nil {
		t.Error("expected error for word without tokens")
	}
}
