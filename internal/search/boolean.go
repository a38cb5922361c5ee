package search

// AndSearch returns documents that contain ALL of the given terms.
// If field is empty, searches all fields.
func (s *Searcher) AndSearch(terms []string, field string) ([]Result, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	firstResults, err := s.Search(terms[0], field)
	if err != nil {
		return nil, err
	}
	if len(firstResults) == 0 || len(terms) == 1 {
		return firstResults, nil
	}

	candidates := make(map[string]Result, len(firstResults))
	for _, r := range firstResults {
		candidates[r.DocID] = r
	}

	for _, term := range terms[1:] {
		termResults, err := s.Search(term, field)
		if err != nil {
			return nil, err
		}

		termDocIDs := make(map[string]Result, len(termResults))
		for _, r := range termResults {
			termDocIDs[r.DocID] = r
		}

		for docID, r := range candidates {
			termResult, ok := termDocIDs[docID]
			if !ok {
				delete(candidates, docID)
				continue
			}
			r.Score += termResult.Score
			r.MatchedTerms = append(r.MatchedTerms, term)
			candidates[docID] = r
		}

		if len(candidates) == 0 {
			return nil, nil
		}
	}

	return collectResults(candidates), nil
}

// OrSearch returns documents that contain ANY of the given terms.
// If field is empty, searches all fields.
func (s *Searcher) OrSearch(terms []string, field string) ([]Result, error) {
	docScores := make(map[string]Result)

	for _, term := range terms {
		termResults, err := s.Search(term, field)
		if err != nil {
			return nil, err
		}
		mergeInto(docScores, termResults)
	}

	return collectResults(docScores), nil
}

// mergeInto sums scores and matched terms per document.
func mergeInto(acc map[string]Result, results []Result) {
	for _, r := range results {
		if existing, ok := acc[r.DocID]; ok {
			existing.Score += r.Score
			existing.MatchedTerms = append(existing.MatchedTerms, r.MatchedTerms...)
			acc[r.DocID] = existing
		} else {
			acc[r.DocID] = r
		}
	}
}

func collectResults(m map[string]Result) []Result {
	if len(m) == 0 {
		return nil
	}
	results := make([]Result, 0, len(m))
	for _, r := range m {
		results = append(results, r)
	}
	sortByScore(results)
	return results
}
