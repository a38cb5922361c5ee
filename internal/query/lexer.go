package query

import (
	"fmt"
	"strings"
	"unicode"
)

type Kind int

const (
	KindWord Kind = iota
	KindPhrase
	KindField
	KindAnd
	KindOr
	KindNot
	KindLParen
	KindRParen
	KindPrefix
	KindEOF
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "WORD"
	case KindPhrase:
		return "PHRASE"
	case KindField:
		return "FIELD"
	case KindAnd:
		return "AND"
	case KindOr:
		return "OR"
	case KindNot:
		return "NOT"
	case KindLParen:
		return "LPAREN"
	case KindRParen:
		return "RPAREN"
	case KindPrefix:
		return "PREFIX"
	case KindEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Lexeme is one lexical unit of a query string. Pos is its byte offset.
type Lexeme struct {
	Kind  Kind
	Value string
	Pos   int
}

func (l Lexeme) String() string {
	if l.Value != "" {
		return fmt.Sprintf("%s(%s)", l.Kind, l.Value)
	}
	return l.Kind.String()
}

// closers maps phrase openers to their closing quote.
var closers = map[rune]rune{
	'"': '"',
	'「': '」',
	'『': '』',
}

func isLParen(r rune) bool { return r == '(' || r == '（' }
func isRParen(r rune) bool { return r == ')' || r == '）' }

// isBreak ends a bare word. unicode.IsSpace covers the ideographic space.
func isBreak(r rune) bool {
	if unicode.IsSpace(r) || isLParen(r) || isRParen(r) {
		return true
	}
	_, quote := closers[r]
	return quote
}

// Lex splits a query string into lexemes, ending with KindEOF.
//
// Japanese queries are rarely spaced, so a bare word is kept whole here and
// segmented later by the index analyzer. Full-width parentheses, colons,
// asterisks and 「」 quotes are accepted alongside their ASCII forms.
func Lex(input string) ([]Lexeme, error) {
	var out []Lexeme
	runes := []rune(input)
	offsets := make([]int, len(runes)+1)
	for i, b := 0, 0; i < len(runes); i++ {
		offsets[i] = b
		b += len(string(runes[i]))
	}
	offsets[len(runes)] = len(input)

	i := 0
	for {
		for i < len(runes) && unicode.IsSpace(runes[i]) {
			i++
		}
		if i >= len(runes) {
			out = append(out, Lexeme{Kind: KindEOF, Pos: len(input)})
			return out, nil
		}

		start := i
		r := runes[i]
		switch {
		case isLParen(r):
			out = append(out, Lexeme{Kind: KindLParen, Value: "(", Pos: offsets[i]})
			i++
			continue
		case isRParen(r):
			out = append(out, Lexeme{Kind: KindRParen, Value: ")", Pos: offsets[i]})
			i++
			continue
		case r == '-' && i+1 < len(runes) && !isBreak(runes[i+1]):
			out = append(out, Lexeme{Kind: KindNot, Value: "-", Pos: offsets[i]})
			i++
			continue
		}

		if closer, ok := closers[r]; ok {
			j := i + 1
			var sb strings.Builder
			for j < len(runes) && runes[j] != closer {
				if runes[j] == '\\' && j+1 < len(runes) && runes[j+1] == closer {
					j++
				}
				sb.WriteRune(runes[j])
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated phrase at offset %d", offsets[start])
			}
			out = append(out, Lexeme{Kind: KindPhrase, Value: sb.String(), Pos: offsets[start]})
			i = j + 1
			continue
		}

		for i < len(runes) && !isBreak(runes[i]) {
			if runes[i] == ':' || runes[i] == '：' {
				break
			}
			i++
		}
		word := string(runes[start:i])

		if i < len(runes) && (runes[i] == ':' || runes[i] == '：') {
			if word == "" {
				return nil, fmt.Errorf("missing field name at offset %d", offsets[start])
			}
			out = append(out, Lexeme{Kind: KindField, Value: word, Pos: offsets[start]})
			i++
			continue
		}

		switch word {
		case "AND":
			out = append(out, Lexeme{Kind: KindAnd, Value: word, Pos: offsets[start]})
		case "OR":
			out = append(out, Lexeme{Kind: KindOr, Value: word, Pos: offsets[start]})
		case "NOT":
			out = append(out, Lexeme{Kind: KindNot, Value: word, Pos: offsets[start]})
		default:
			if prefix, ok := cutStar(word); ok {
				if prefix == "" {
					return nil, fmt.Errorf("empty prefix at offset %d", offsets[start])
				}
				out = append(out, Lexeme{Kind: KindPrefix, Value: prefix, Pos: offsets[start]})
			} else {
				out = append(out, Lexeme{Kind: KindWord, Value: word, Pos: offsets[start]})
			}
		}
	}
}

func cutStar(word string) (string, bool) {
	if p, ok := strings.CutSuffix(word, "*"); ok {
		return p, true
	}
	return strings.CutSuffix(word, "＊")
}
