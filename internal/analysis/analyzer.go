package analysis

import (
	"strings"
	"unicode"
)

// Analyzer turns field text into index-ready tokens.
type Analyzer interface {
	Analyze(text string) ([]Token, error)
}

// StreamAnalyzer drains a fresh token stream per call. Whitespace-only tokens
// are not returned but still consume positions and offsets, so adjacency and
// spans match the source text.
type StreamAnalyzer struct {
	tokenizer *Tokenizer
	strict    bool
}

// NewAnalyzer returns an analyzer over t. In strict mode every text is checked
// for contiguous segmentation before streaming.
func NewAnalyzer(t *Tokenizer, strict bool) *StreamAnalyzer {
	return &StreamAnalyzer{tokenizer: t, strict: strict}
}

// Analyze implements Analyzer.
func (a *StreamAnalyzer) Analyze(text string) ([]Token, error) {
	var ts *TokenStream
	if a.strict {
		var err error
		ts, err = a.tokenizer.CheckedTokenStream(text)
		if err != nil {
			return nil, err
		}
	} else {
		ts = a.tokenizer.TokenStream(text)
	}

	var tokens []Token
	ts.Process(func(tok Token) {
		if isBlank(tok.Text) {
			return
		}
		tokens = append(tokens, tok)
	})
	return tokens, nil
}

// Terms returns only the token texts.
func Terms(tokens []Token) []string {
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Text
	}
	return terms
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
