package analysis

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrNotContiguous is returned when a segmenter's words do not concatenate
// back to the input text.
var ErrNotContiguous = errors.New("segmentation is not contiguous")

// Segmenter splits text into an ordered sequence of words.
//
// Implementations must be offset preserving: joining the returned words
// reproduces the input byte for byte.
type Segmenter interface {
	Segment(text string) []string
}

// SegmenterFunc adapts a plain function to the Segmenter interface.
type SegmenterFunc func(text string) []string

// Segment calls f(text).
func (f SegmenterFunc) Segment(text string) []string {
	return f(text)
}

// Tokenizer builds token streams over a Segmenter. It keeps no per-text state
// and can be shared between goroutines when its Segmenter can.
type Tokenizer struct {
	seg Segmenter
}

// NewTokenizer returns a Tokenizer backed by seg.
func NewTokenizer(seg Segmenter) *Tokenizer {
	return &Tokenizer{seg: seg}
}

// TokenStream segments text once and returns a fresh stream over the result.
func (t *Tokenizer) TokenStream(text string) *TokenStream {
	return NewTokenStream(t.seg.Segment(text))
}

// CheckedTokenStream is TokenStream with the contiguity precondition
// verified up front.
func (t *Tokenizer) CheckedTokenStream(text string) (*TokenStream, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("invalid UTF-8 input")
	}
	words := t.seg.Segment(text)
	if err := checkContiguous(text, words); err != nil {
		return nil, err
	}
	return NewTokenStream(words), nil
}

func checkContiguous(text string, words []string) error {
	offset := 0
	for i, w := range words {
		if !strings.HasPrefix(text[offset:], w) {
			return fmt.Errorf("word %d %q at byte %d: %w", i, w, offset, ErrNotContiguous)
		}
		offset += len(w)
	}
	if offset != len(text) {
		return fmt.Errorf("words cover %d of %d bytes: %w", offset, len(text), ErrNotContiguous)
	}
	return nil
}
