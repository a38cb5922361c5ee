package search

import (
	"fmt"
	"sort"
	"strings"

	"harshagw/tinyseg/internal/segment"
)

// Fragment is a highlighted view of one stored field.
type Fragment struct {
	Field string
	Text  string
	Spans []segment.Span
}

// Highlight marks every occurrence of terms in the stored field of docID,
// using the byte offsets recorded in the postings. found is false when the
// document is not live in the snapshot.
func (s *Searcher) Highlight(docID, field string, terms []string, pre, post string) (frag Fragment, found bool, err error) {
	for _, src := range s.sources {
		docNum, ok := src.docNum(docID)
		if !ok {
			continue
		}
		doc, err := src.loadDoc(docNum)
		if err != nil {
			return Fragment{}, false, err
		}
		text, _ := doc[field].(string)

		var spans []segment.Span
		for _, term := range terms {
			postings, err := src.postings(term, field)
			if err != nil {
				return Fragment{}, false, err
			}
			for _, p := range postings {
				if p.DocNum == docNum {
					spans = append(spans, p.Offsets...)
				}
			}
		}
		spans = mergeSpans(spans)

		marked, err := markSpans(text, spans, pre, post)
		if err != nil {
			return Fragment{}, false, fmt.Errorf("highlight %s.%s: %w", docID, field, err)
		}
		return Fragment{Field: field, Text: marked, Spans: spans}, true, nil
	}
	return Fragment{}, false, nil
}

// mergeSpans sorts spans and joins overlapping or touching ones.
func mergeSpans(spans []segment.Span) []segment.Span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	merged := []segment.Span{spans[0]}
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.Start <= last.End {
			last.End = max(last.End, sp.End)
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}

func markSpans(text string, spans []segment.Span, pre, post string) (string, error) {
	var sb strings.Builder
	var cursor uint64
	for _, sp := range spans {
		if sp.End > uint64(len(text)) || sp.Start < cursor {
			return "", fmt.Errorf("span [%d,%d) outside text of %d bytes", sp.Start, sp.End, len(text))
		}
		sb.WriteString(text[cursor:sp.Start])
		sb.WriteString(pre)
		sb.WriteString(text[sp.Start:sp.End])
		sb.WriteString(post)
		cursor = sp.End
	}
	sb.WriteString(text[cursor:])
	return sb.String(), nil
}
