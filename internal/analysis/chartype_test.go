package analysis

import (
	"strings"
	"testing"
)

func TestClassOf(t *testing.T) {
	tests := []struct {
		r    rune
		want CharClass
	}{
		{'三', ClassNumeral},
		{'日', ClassKanji},
		{'々', ClassKanji},
		{'ヶ', ClassKanji},
		{'の', ClassHiragana},
		{'カ', ClassKatakana},
		{'ー', ClassKatakana},
		{'ｶ', ClassKatakana},
		{'a', ClassLatin},
		{'Ｚ', ClassLatin},
		{'7', ClassDigit},
		{'７', ClassDigit},
		{' ', ClassSpace},
		{'\n', ClassSpace},
		{'。', ClassOther},
	}

	for _, tt := range tests {
		if got := ClassOf(tt.r); got != tt.want {
			t.Errorf("ClassOf(%q) = %c, want %c", tt.r, got, tt.want)
		}
	}
}

func TestCharClassSegmenter(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"日本語の本文", []string{"日本語", "の", "本文"}},
		{"三十日に東京タワーへ", []string{"三十日", "に", "東京", "タワー", "へ"}},
		{"Go言語 1.22", []string{"Go", "言語", " ", "1", ".", "22"}},
		{"「猫」", []string{"「", "猫", "」"}},
		{"", nil},
	}

	seg := NewCharClass()
	for _, tt := range tests {
		got := seg.Segment(tt.text)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("Segment(%q) = %q, want %q", tt.text, got, tt.want)
		}
		if strings.Join(got, "") != tt.text {
			t.Errorf("Segment(%q) is not contiguous: %q", tt.text, got)
		}
	}
}
