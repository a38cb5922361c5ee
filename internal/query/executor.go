package query

import (
	"fmt"
	"slices"

	"harshagw/tinyseg/internal/analysis"
	"harshagw/tinyseg/internal/search"
)

// Backend is the set of primitive searches a query compiles to.
// *search.Searcher implements it.
type Backend interface {
	Search(term, field string) ([]search.Result, error)
	PhraseSearch(phrase, field string) ([]search.Result, error)
	PrefixSearch(prefix, field string) ([]search.Result, error)
}

// Executor executes a rewritten Query AST against a Backend.
type Executor struct {
	backend Backend
}

// NewExecutor creates a new executor.
func NewExecutor(backend Backend) *Executor {
	return &Executor{backend: backend}
}

// Execute runs q and returns hits sorted by descending score. Scores of
// matched clauses are summed per document.
func (e *Executor) Execute(q Query) ([]search.Result, error) {
	switch v := q.(type) {
	case *TermQuery:
		return e.backend.Search(v.Term, v.Field)
	case *PhraseQuery:
		return e.backend.PhraseSearch(v.Phrase, v.Field)
	case *PrefixQuery:
		return e.backend.PrefixSearch(v.Prefix, v.Field)
	case *BoolQuery:
		return e.executeBool(v)
	case *WordQuery:
		return nil, fmt.Errorf("word %q was not rewritten", v.Word)
	default:
		return nil, fmt.Errorf("unknown query type: %T", q)
	}
}

func (e *Executor) executeBool(q *BoolQuery) ([]search.Result, error) {
	must := make([]Query, 0, len(q.Must))
	should := make([]Query, 0, len(q.Should))
	mustNot := append([]Query{}, q.MustNot...)

	// A bare NOT clause parses as its own BoolQuery; hoist it into this one.
	for _, m := range q.Must {
		if neg, ok := pureNegation(m); ok {
			mustNot = append(mustNot, neg...)
		} else {
			must = append(must, m)
		}
	}
	for _, s := range q.Should {
		if neg, ok := pureNegation(s); ok {
			mustNot = append(mustNot, neg...)
		} else {
			should = append(should, s)
		}
	}

	if len(must) == 0 && len(should) == 0 {
		return nil, fmt.Errorf("NOT queries require a positive clause")
	}

	var candidates map[string]search.Result
	if len(must) > 0 {
		acc, err := e.intersect(must)
		if err != nil {
			return nil, err
		}
		candidates = acc
	}

	if len(should) > 0 {
		union, err := e.union(should)
		if err != nil {
			return nil, err
		}
		if candidates == nil {
			candidates = union
		} else {
			for docID, r := range candidates {
				other, ok := union[docID]
				if !ok {
					delete(candidates, docID)
					continue
				}
				candidates[docID] = combine(r, other)
			}
		}
	}

	for _, nq := range mustNot {
		results, err := e.Execute(nq)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			delete(candidates, r.DocID)
		}
	}

	return sorted(candidates), nil
}

func pureNegation(q Query) ([]Query, bool) {
	bq, ok := q.(*BoolQuery)
	if !ok || len(bq.Must) > 0 || len(bq.Should) > 0 || len(bq.MustNot) == 0 {
		return nil, false
	}
	return bq.MustNot, true
}

func (e *Executor) intersect(queries []Query) (map[string]search.Result, error) {
	var acc map[string]search.Result
	for _, q := range queries {
		results, err := e.Execute(q)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = make(map[string]search.Result, len(results))
			for _, r := range results {
				acc[r.DocID] = r
			}
			continue
		}

		next := make(map[string]search.Result, len(acc))
		for _, r := range results {
			if prev, ok := acc[r.DocID]; ok {
				next[r.DocID] = combine(prev, r)
			}
		}
		acc = next
		if len(acc) == 0 {
			break
		}
	}
	return acc, nil
}

func (e *Executor) union(queries []Query) (map[string]search.Result, error) {
	acc := make(map[string]search.Result)
	for _, q := range queries {
		results, err := e.Execute(q)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if prev, ok := acc[r.DocID]; ok {
				acc[r.DocID] = combine(prev, r)
			} else {
				acc[r.DocID] = r
			}
		}
	}
	return acc, nil
}

func combine(a, b search.Result) search.Result {
	terms := make([]string, 0, len(a.MatchedTerms)+len(b.MatchedTerms))
	terms = append(terms, a.MatchedTerms...)
	for _, t := range b.MatchedTerms {
		if !slices.Contains(terms, t) {
			terms = append(terms, t)
		}
	}
	return search.Result{DocID: a.DocID, Score: a.Score + b.Score, MatchedTerms: terms}
}

func sorted(m map[string]search.Result) []search.Result {
	results := make([]search.Result, 0, len(m))
	for _, r := range m {
		results = append(results, r)
	}
	slices.SortFunc(results, func(a, b search.Result) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		case a.DocID < b.DocID:
			return -1
		case a.DocID > b.DocID:
			return 1
		}
		return 0
	})
	return results
}

// Run parses, rewrites and executes input in one step.
func Run(input string, a analysis.Analyzer, backend Backend) (Query, []search.Result, error) {
	q, err := Parse(input)
	if err != nil {
		return nil, nil, err
	}
	if q, err = Rewrite(q, a); err != nil {
		return nil, nil, err
	}
	results, err := NewExecutor(backend).Execute(q)
	return q, results, err
}
