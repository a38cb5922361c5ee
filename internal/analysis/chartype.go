package analysis

import (
	"strings"
	"unicode"
)

// CharClass is a Japanese character class.
type CharClass byte

// Character classes, named after the TinySegmenter feature alphabet.
const (
	ClassOther    CharClass = 'O'
	ClassNumeral  CharClass = 'M' // kanji numerals
	ClassKanji    CharClass = 'H'
	ClassHiragana CharClass = 'I'
	ClassKatakana CharClass = 'K'
	ClassLatin    CharClass = 'A'
	ClassDigit    CharClass = 'N'
	ClassSpace    CharClass = 'S'
)

const kanjiNumerals = "一二三四五六七八九十百千万億兆"

// ClassOf returns the character class of r.
func ClassOf(r rune) CharClass {
	switch {
	case strings.ContainsRune(kanjiNumerals, r):
		return ClassNumeral
	case r >= '一' && r <= '龠', r == '々', r == '〆', r == 'ヵ', r == 'ヶ':
		return ClassKanji
	case r >= 'ぁ' && r <= 'ん':
		return ClassHiragana
	case r >= 'ァ' && r <= 'ヴ', r == 'ー', r >= 'ｱ' && r <= 'ﾝ', r == 'ﾞ', r == 'ｰ':
		return ClassKatakana
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= 'ａ' && r <= 'ｚ', r >= 'Ａ' && r <= 'Ｚ':
		return ClassLatin
	case r >= '0' && r <= '9', r >= '０' && r <= '９':
		return ClassDigit
	case unicode.IsSpace(r):
		return ClassSpace
	}
	return ClassOther
}

// CharClassSegmenter splits text into maximal runs of one character class.
// It needs no dictionary and is always contiguous.
type CharClassSegmenter struct{}

// NewCharClass returns a character-class segmenter.
func NewCharClass() *CharClassSegmenter {
	return &CharClassSegmenter{}
}

// Segment implements Segmenter.
func (CharClassSegmenter) Segment(text string) []string {
	var words []string
	start := 0
	var prev CharClass
	for i, r := range text {
		class := ClassOf(r)
		// Kanji numerals bind to surrounding kanji.
		if class == ClassNumeral && prev == ClassKanji || class == ClassKanji && prev == ClassNumeral {
			prev = ClassKanji
			continue
		}
		if i > start && (class != prev || class == ClassOther) {
			words = append(words, text[start:i])
			start = i
		}
		prev = class
	}
	if start < len(text) {
		words = append(words, text[start:])
	}
	return words
}
