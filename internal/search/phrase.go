package search

import (
	"slices"

	"harshagw/tinyseg/internal/analysis"
)

// PhraseSearch analyzes phrase with the index tokenizer and finds documents
// where its terms occur at the same relative positions. If field is empty,
// searches all fields.
func (s *Searcher) PhraseSearch(phrase, field string) ([]Result, error) {
	tokens, err := s.snapshot.Analyzer().Analyze(phrase)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	terms := analysis.Terms(tokens)
	if len(terms) == 1 {
		return s.Search(terms[0], field)
	}

	// Skipped whitespace leaves gaps the documents must reproduce.
	rel := make([]uint64, len(tokens))
	for i, tok := range tokens {
		rel[i] = uint64(tok.Position - tokens[0].Position)
	}

	seen := make(map[string]bool)
	var matches []searchMatch

	for _, src := range s.sources {
		for _, f := range s.fieldsOf(src, field) {
			m, err := s.phraseMatchInSource(src, terms, rel, f, seen)
			if err != nil {
				return nil, err
			}
			matches = append(matches, m...)
		}
	}

	results := s.scoreAndSort(matches, field)
	for i := range results {
		results[i].MatchedTerms = terms
	}
	return results, nil
}

func (s *Searcher) phraseMatchInSource(src source, terms []string, rel []uint64, field string, seen map[string]bool) ([]searchMatch, error) {
	docPositions := make(map[uint64][][]uint64)

	for termIdx, term := range terms {
		postings, err := src.postings(term, field)
		if err != nil {
			return nil, err
		}
		if len(postings) == 0 {
			return nil, nil
		}
		for _, p := range postings {
			if termIdx == 0 {
				docPositions[p.DocNum] = make([][]uint64, len(terms))
			}
			if positions, ok := docPositions[p.DocNum]; ok {
				positions[termIdx] = p.Positions
			}
		}
	}

	var matches []searchMatch
	for docNum, positions := range docPositions {
		count := phraseMatch(positions, rel)
		if count == 0 {
			continue
		}
		extID, ok := src.externalID(docNum)
		if !ok || seen[extID] {
			continue
		}
		seen[extID] = true
		matches = append(matches, searchMatch{
			docID:       extID,
			tf:          float64(count),
			fieldLength: src.fieldLength(field, docNum),
			field:       field,
		})
	}
	return matches, nil
}

// phraseMatch counts start positions p such that every term i occurs at
// p + rel[i].
func phraseMatch(positions [][]uint64, rel []uint64) int {
	if len(positions) == 0 {
		return 0
	}
	for _, pos := range positions {
		if len(pos) == 0 {
			return 0
		}
	}

	count := 0
	for _, start := range positions[0] {
		ok := true
		for i := 1; i < len(positions); i++ {
			if _, found := slices.BinarySearch(positions[i], start+rel[i]); !found {
				ok = false
				break
			}
		}
		if ok {
			count++
		}
	}
	return count
}
