package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// arabicMarks covers the Arabic combining vowel signs and the superscript alef.
var arabicMarks = runes.In(&unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x064B, Hi: 0x065F, Stride: 1},
		{Lo: 0x0670, Hi: 0x0670, Stride: 1},
	},
})

func foldArabicLetter(r rune) rune {
	switch r {
	case 'أ', 'إ', 'آ':
		return 'ا'
	case 'ة':
		return 'ه'
	case 'ى':
		return 'ي'
	}
	return r
}

func isArabic(r rune) bool {
	return r >= 0x0600 && r <= 0x06FF
}

// NormalizeArabic strips Arabic diacritics and folds alef, taa marbuta and alef maqsura
// variants to their base letters. Text without Arabic script is returned unchanged.
func NormalizeArabic(s string) string {
	if strings.IndexFunc(s, isArabic) < 0 {
		return s
	}
	t := transform.Chain(runes.Remove(arabicMarks), runes.Map(foldArabicLetter))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeQuery trims and lower-cases raw query text and applies Arabic normalization.
// An empty result means no text filter.
func NormalizeQuery(s string) string {
	return NormalizeArabic(strings.ToLower(strings.TrimSpace(s)))
}

// normalizeArabicField is the candidate-side counterpart of NormalizeQuery for Arabic fields.
func normalizeArabicField(s string) string {
	return strings.ToLower(NormalizeArabic(s))
}
