// Package models defines core data structures for dictionary words, search requests, and search results.
package models

// Word is one dictionary record. Records are immutable once loaded into a corpus.
type Word struct {
	ID         string `json:"id" db:"id"`
	Type       string `json:"type" db:"type"`
	Swedish    string `json:"swedish" db:"swedish"`
	Arabic     string `json:"arabic" db:"arabic"`
	ArabicExt  string `json:"arabic_ext,omitempty" db:"arabic_ext"`
	Definition string `json:"definition,omitempty" db:"definition"`
	Forms      string `json:"forms,omitempty" db:"forms"`
	ExampleSwe string `json:"example_swe,omitempty" db:"example_swe"`
	ExampleArb string `json:"example_arb,omitempty" db:"example_arb"`
	IdiomSwe   string `json:"idiom_swe,omitempty" db:"idiom_swe"`
	IdiomArb   string `json:"idiom_arb,omitempty" db:"idiom_arb"`
	Gender     string `json:"gender,omitempty" db:"gender"`
}

// Result projects the word onto the fields a result list needs.
func (w *Word) Result() SearchResult {
	return SearchResult{
		ID:      w.ID,
		Type:    w.Type,
		Swedish: w.Swedish,
		Arabic:  w.Arabic,
		Forms:   w.Forms,
		Gender:  w.Gender,
	}
}
