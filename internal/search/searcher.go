package search

import (
	"sort"

	"harshagw/tinyseg/internal/index"
)

// Result represents a search hit with score.
type Result struct {
	DocID        string
	Score        float64
	MatchedTerms []string
}

// Searcher performs searches on an index snapshot.
type Searcher struct {
	snapshot *index.IndexSnapshot
	sources  []source
}

// New creates a new searcher for a snapshot.
func New(snapshot *index.IndexSnapshot) *Searcher {
	return &Searcher{snapshot: snapshot, sources: sources(snapshot)}
}

// Close releases searcher resources.
func (s *Searcher) Close() error {
	return nil
}

type searchMatch struct {
	docID       string
	tf          float64
	fieldLength uint64
	field       string
}

// Search finds documents containing term exactly, in field or in every
// field when field is empty.
func (s *Searcher) Search(term, field string) ([]Result, error) {
	matches, err := s.termMatches(term, field)
	if err != nil {
		return nil, err
	}
	results := s.scoreAndSort(matches, field)
	for i := range results {
		results[i].MatchedTerms = []string{term}
	}
	return results, nil
}

func (s *Searcher) termMatches(term, field string) ([]searchMatch, error) {
	seen := make(map[string]bool)
	var matches []searchMatch

	for _, src := range s.sources {
		for _, f := range s.fieldsOf(src, field) {
			postings, err := src.postings(term, f)
			if err != nil {
				return nil, err
			}
			for _, p := range postings {
				extID, ok := src.externalID(p.DocNum)
				if !ok || seen[extID] {
					continue
				}
				seen[extID] = true
				matches = append(matches, searchMatch{
					docID:       extID,
					tf:          float64(p.Frequency),
					fieldLength: src.fieldLength(f, p.DocNum),
					field:       f,
				})
			}
		}
	}
	return matches, nil
}

func (s *Searcher) fieldsOf(src source, field string) []string {
	if field != "" {
		return []string{field}
	}
	return src.fields()
}

// Fields returns every indexed field name in the snapshot, sorted.
func (s *Searcher) Fields() []string {
	fieldSet := make(map[string]bool)
	for _, src := range s.sources {
		for _, f := range src.fields() {
			fieldSet[f] = true
		}
	}
	fields := make([]string, 0, len(fieldSet))
	for f := range fieldSet {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Document returns the live stored version of docID.
func (s *Searcher) Document(docID string) (map[string]any, bool, error) {
	for _, src := range s.sources {
		if docNum, ok := src.docNum(docID); ok {
			doc, err := src.loadDoc(docNum)
			if err != nil {
				return nil, false, err
			}
			return doc, true, nil
		}
	}
	return nil, false, nil
}
