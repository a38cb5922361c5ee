package search

import "sort"

// PrefixSearch finds documents containing any term that starts with prefix.
// Scores of all expanded terms are summed per document.
func (s *Searcher) PrefixSearch(prefix, field string) ([]Result, error) {
	termSet := make(map[string]bool)
	for _, src := range s.sources {
		for _, f := range s.fieldsOf(src, field) {
			terms, err := src.prefixTerms(prefix, f)
			if err != nil {
				return nil, err
			}
			for _, t := range terms {
				termSet[t] = true
			}
		}
	}

	terms := make([]string, 0, len(termSet))
	for t := range termSet {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	docScores := make(map[string]Result)
	for _, term := range terms {
		results, err := s.Search(term, field)
		if err != nil {
			return nil, err
		}
		mergeInto(docScores, results)
	}

	return collectResults(docScores), nil
}
