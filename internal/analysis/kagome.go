package analysis

import (
	"fmt"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Kagome segments Japanese text with the kagome morphological analyzer and
// the IPA dictionary.
type Kagome struct {
	t *tokenizer.Tokenizer
}

// NewKagome loads the IPA dictionary and returns a dictionary segmenter.
func NewKagome() (*Kagome, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("failed to load kagome dictionary: %w", err)
	}
	return &Kagome{t: t}, nil
}

// Segment returns the surface forms of text in order. Byte ranges the
// analyzer skips are emitted as their own words so the result always joins
// back to text.
func (k *Kagome) Segment(text string) []string {
	if text == "" {
		return nil
	}

	tokens := k.t.Tokenize(text)
	words := make([]string, 0, len(tokens))
	cursor := 0
	for _, tok := range tokens {
		if tok.Surface == "" {
			continue
		}
		start := tok.Position
		if start < cursor || start+len(tok.Surface) > len(text) || text[start:start+len(tok.Surface)] != tok.Surface {
			// Position is unusable; fall back to the running cursor.
			start = cursor
		}
		if start > cursor {
			words = append(words, text[cursor:start])
			cursor = start
		}
		end := start + len(tok.Surface)
		if end > len(text) {
			end = len(text)
		}
		if end <= start {
			continue
		}
		words = append(words, text[start:end])
		cursor = end
	}
	if cursor < len(text) {
		words = append(words, text[cursor:])
	}
	return words
}
