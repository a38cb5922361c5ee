package query

import (
	"fmt"

	"harshagw/tinyseg/internal/analysis"
)

// Parser parses lexemes into a Query AST.
type Parser struct {
	lexemes []Lexeme
	pos     int
}

// Parse lexes and parses a query string. Juxtaposed clauses are ANDed; OR
// binds looser than AND.
func Parse(input string) (Query, error) {
	lexemes, err := Lex(input)
	if err != nil {
		return nil, err
	}
	p := &Parser{lexemes: lexemes}
	return p.Parse()
}

// Parse parses the lexemes into a Query AST.
func (p *Parser) Parse() (Query, error) {
	if p.peek().Kind == KindEOF {
		return nil, fmt.Errorf("empty query")
	}

	q, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != KindEOF {
		return nil, fmt.Errorf("unexpected %s at offset %d", p.peek(), p.peek().Pos)
	}
	return q, nil
}

func (p *Parser) peek() Lexeme {
	if p.pos >= len(p.lexemes) {
		return Lexeme{Kind: KindEOF}
	}
	return p.lexemes[p.pos]
}

func (p *Parser) advance() Lexeme {
	l := p.peek()
	p.pos++
	return l
}

func (p *Parser) parseOrExpr() (Query, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}

	clauses := []Query{left}
	for p.peek().Kind == KindOr {
		p.advance()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, right)
	}

	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return &BoolQuery{Should: clauses}, nil
}

func (p *Parser) parseAndExpr() (Query, error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}

	clauses := []Query{left}
	for {
		switch p.peek().Kind {
		case KindAnd:
			p.advance()
		case KindWord, KindPhrase, KindField, KindPrefix, KindLParen, KindNot:
		default:
			if len(clauses) == 1 {
				return clauses[0], nil
			}
			return &BoolQuery{Must: clauses}, nil
		}

		right, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, right)
	}
}

func (p *Parser) parseUnaryExpr() (Query, error) {
	if p.peek().Kind == KindNot {
		p.advance()
		expr, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &BoolQuery{MustNot: []Query{expr}}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Query, error) {
	l := p.peek()

	switch l.Kind {
	case KindLParen:
		p.advance()
		expr, err := p.parseOrExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().Kind != KindRParen {
			return nil, fmt.Errorf("expected ')' at offset %d, got %s", p.peek().Pos, p.peek())
		}
		p.advance()
		return expr, nil
	case KindField:
		p.advance()
		return p.parseValue(l.Value)
	case KindWord, KindPhrase, KindPrefix:
		return p.parseValue("")
	case KindEOF:
		return nil, fmt.Errorf("unexpected end of query")
	default:
		return nil, fmt.Errorf("unexpected %s at offset %d", l, l.Pos)
	}
}

func (p *Parser) parseValue(field string) (Query, error) {
	l := p.peek()
	switch l.Kind {
	case KindWord:
		p.advance()
		return &WordQuery{Field: field, Word: l.Value}, nil
	case KindPhrase:
		p.advance()
		return &PhraseQuery{Field: field, Phrase: l.Value}, nil
	case KindPrefix:
		p.advance()
		return &PrefixQuery{Field: field, Prefix: l.Value}, nil
	}
	return nil, fmt.Errorf("expected term after field '%s:', got %s", field, l)
}

// Rewrite resolves every WordQuery with the index analyzer: a word that
// segments into one token becomes a TermQuery, a longer one a PhraseQuery.
// A word with no indexable tokens is an error.
func Rewrite(q Query, a analysis.Analyzer) (Query, error) {
	switch v := q.(type) {
	case *WordQuery:
		tokens, err := a.Analyze(v.Word)
		if err != nil {
			return nil, err
		}
		switch len(tokens) {
		case 0:
			return nil, fmt.Errorf("no searchable terms in %q", v.Word)
		case 1:
			return &TermQuery{Field: v.Field, Term: tokens[0].Text}, nil
		}
		return &PhraseQuery{Field: v.Field, Phrase: v.Word}, nil
	case *BoolQuery:
		out := &BoolQuery{}
		var err error
		if out.Must, err = rewriteAll(v.Must, a); err != nil {
			return nil, err
		}
		if out.Should, err = rewriteAll(v.Should, a); err != nil {
			return nil, err
		}
		if out.MustNot, err = rewriteAll(v.MustNot, a); err != nil {
			return nil, err
		}
		return out, nil
	}
	return q, nil
}

func rewriteAll(qs []Query, a analysis.Analyzer) ([]Query, error) {
	if qs == nil {
		return nil, nil
	}
	out := make([]Query, len(qs))
	for i, q := range qs {
		r, err := Rewrite(q, a)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
