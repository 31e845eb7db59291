package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hyperjump/ordbok/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// rank orders matches in place with a single stable comparator, so entries with
// equal keys keep corpus order. q is the normalized query.
func rank(matches []*entry, sort models.Sort, q string) {
	slices.SortStableFunc(matches, comparator(sort, q))
}

func comparator(sort models.Sort, q string) func(a, b *entry) int {
	switch sort {
	case models.SortAlphaAsc:
		col := collate.New(language.Swedish)
		return func(a, b *entry) int {
			return col.CompareString(a.swedish, b.swedish)
		}
	case models.SortAlphaDesc:
		col := collate.New(language.Swedish)
		return func(a, b *entry) int {
			return col.CompareString(b.swedish, a.swedish)
		}
	case models.SortLastChar:
		col := collate.New(language.Swedish)
		return func(a, b *entry) int {
			return col.CompareString(a.lastRune, b.lastRune)
		}
	case models.SortRichness:
		return func(a, b *entry) int {
			return cmp.Compare(b.richness, a.richness)
		}
	default:
		return relevance(q)
	}
}

// relevance puts exact matches first, then prefix matches, then shorter headwords.
// Without a query only the length rule applies.
func relevance(q string) func(a, b *entry) int {
	if q == "" {
		return func(a, b *entry) int {
			return cmp.Compare(a.length, b.length)
		}
	}
	return func(a, b *entry) int {
		if c := preferTrue(a.exact(q), b.exact(q)); c != 0 {
			return c
		}
		if c := preferTrue(a.prefix(q), b.prefix(q)); c != 0 {
			return c
		}
		return cmp.Compare(a.length, b.length)
	}
}

func preferTrue(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

func (e *entry) exact(q string) bool {
	return e.swedish == q || e.arabic == q
}

func (e *entry) prefix(q string) bool {
	return strings.HasPrefix(e.swedish, q) || strings.HasPrefix(e.arabic, q)
}

func (e *entry) suffix(q string) bool {
	return strings.HasSuffix(e.swedish, q) || strings.HasSuffix(e.arabic, q)
}

func (e *entry) contains(q string) bool {
	return strings.Contains(e.swedish, q) || strings.Contains(e.arabic, q)
}

// matches applies the text match mode. Favorites scope uses contains semantics.
func (e *entry) matches(mode models.Mode, q string) bool {
	switch mode {
	case models.ModeStart:
		return e.prefix(q)
	case models.ModeEnd:
		return e.suffix(q)
	case models.ModeExact:
		return e.exact(q)
	default:
		return e.contains(q)
	}
}
