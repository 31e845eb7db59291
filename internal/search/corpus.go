package search

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/ordbok/internal/models"
)

// entry carries the match and rank keys of one word, computed once per corpus.
type entry struct {
	word     *models.Word
	swedish  string // lower-cased
	arabic   string // normalized
	label    string // lower-cased type
	length   int    // runes in swedish
	richness int    // runes in definition, Swedish example and Swedish idiom
	lastRune string
}

// Corpus is an immutable, search-ready view of a word list. It is safe for concurrent use.
type Corpus struct {
	words   []models.Word
	entries []entry
	byID    map[string]int
}

// NewCorpus copies words and precomputes their normalized keys.
// Words keep their order; for duplicate IDs the first occurrence wins in Lookup.
func NewCorpus(words []models.Word) *Corpus {
	c := &Corpus{
		words:   append([]models.Word(nil), words...),
		entries: make([]entry, len(words)),
		byID:    make(map[string]int, len(words)),
	}
	for i := range c.words {
		w := &c.words[i]
		swe := strings.ToLower(w.Swedish)
		e := entry{
			word:     w,
			swedish:  swe,
			arabic:   normalizeArabicField(w.Arabic),
			label:    strings.ToLower(w.Type),
			length:   utf8.RuneCountInString(swe),
			richness: utf8.RuneCountInString(w.Definition) + utf8.RuneCountInString(w.ExampleSwe) + utf8.RuneCountInString(w.IdiomSwe),
		}
		if r, size := utf8.DecodeLastRuneInString(swe); size > 0 && r != utf8.RuneError {
			e.lastRune = string(r)
		}
		c.entries[i] = e
		if _, dup := c.byID[w.ID]; !dup {
			c.byID[w.ID] = i
		}
	}
	return c
}

// Len returns the number of words.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.words)
}

// Lookup returns the word with the given ID.
func (c *Corpus) Lookup(id string) (models.Word, bool) {
	if c == nil {
		return models.Word{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return models.Word{}, false
	}
	return c.words[i], true
}
