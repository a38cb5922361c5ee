package query

import (
	"fmt"
	"strings"
)

// Query is the interface for all query types.
type Query interface {
	queryNode()
	String() string
}

// WordQuery is a bare word as typed. Rewrite turns it into a TermQuery or,
// when the analyzer splits it, a PhraseQuery.
type WordQuery struct {
	Field string
	Word  string
}

func (q *WordQuery) queryNode() {}

func (q *WordQuery) String() string {
	return fmt.Sprintf("word(%s)", withField(q.Field, q.Word))
}

// TermQuery searches for a single indexed term.
type TermQuery struct {
	Field string
	Term  string
}

func (q *TermQuery) queryNode() {}

func (q *TermQuery) String() string {
	return fmt.Sprintf("term(%s)", withField(q.Field, q.Term))
}

// PhraseQuery searches for terms at their relative positions.
type PhraseQuery struct {
	Field  string
	Phrase string
}

func (q *PhraseQuery) queryNode() {}

func (q *PhraseQuery) String() string {
	return fmt.Sprintf("phrase(%s)", withField(q.Field, `"`+q.Phrase+`"`))
}

// PrefixQuery searches for terms starting with a prefix.
type PrefixQuery struct {
	Field  string
	Prefix string
}

func (q *PrefixQuery) queryNode() {}

func (q *PrefixQuery) String() string {
	return fmt.Sprintf("prefix(%s*)", withField(q.Field, q.Prefix))
}

// BoolQuery combines multiple queries with boolean logic.
type BoolQuery struct {
	Must    []Query
	Should  []Query
	MustNot []Query
}

func (q *BoolQuery) queryNode() {}

func (q *BoolQuery) String() string {
	var parts []string
	if len(q.Must) > 0 {
		parts = append(parts, "AND("+joinQueries(q.Must)+")")
	}
	if len(q.Should) > 0 {
		parts = append(parts, "OR("+joinQueries(q.Should)+")")
	}
	if len(q.MustNot) > 0 {
		parts = append(parts, "NOT("+joinQueries(q.MustNot)+")")
	}
	if len(parts) == 0 {
		return "bool(empty)"
	}
	return fmt.Sprintf("bool(%s)", strings.Join(parts, " "))
}

func withField(field, s string) string {
	if field != "" {
		return field + ":" + s
	}
	return s
}

func joinQueries(qs []Query) string {
	strs := make([]string, len(qs))
	for i, q := range qs {
		strs[i] = q.String()
	}
	return strings.Join(strs, ", ")
}
