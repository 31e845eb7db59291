package search

import "strings"

// Bucket maps a type filter key to the fragments of a free-text type label it covers.
// A type label belongs to the bucket when it contains any fragment or equals any exact value.
type Bucket struct {
	Key       string
	Fragments []string
	Exact     []string
	// Counted buckets contribute to SearchStats.Types; the rest are filter-only.
	Counted bool
}

// Match reports whether the lower-cased type label belongs to the bucket.
func (b Bucket) Match(label string) bool {
	for _, f := range b.Fragments {
		if strings.Contains(label, f) {
			return true
		}
	}
	for _, e := range b.Exact {
		if label == e {
			return true
		}
	}
	return false
}

// Buckets is evaluated in order and independently for every word,
// so one label may fall into several buckets ("juridik substantiv" is both subst and juridik).
var Buckets = []Bucket{
	{Key: "subst", Fragments: []string{"subst"}, Exact: []string{"noun"}, Counted: true},
	{Key: "verb", Fragments: []string{"verb"}, Counted: true},
	{Key: "adj", Fragments: []string{"adj"}, Counted: true},
	{Key: "adv", Fragments: []string{"adv"}, Counted: true},
	{Key: "prep", Fragments: []string{"prep"}, Counted: true},
	{Key: "pron", Fragments: []string{"pron"}, Counted: true},
	{Key: "konj", Fragments: []string{"konj"}, Counted: true},
	{Key: "fras", Fragments: []string{"fras", "uttin", "idiom"}, Counted: true},
	{Key: "juridik", Fragments: []string{"juridik"}, Counted: true},
	{Key: "medicin", Fragments: []string{"medicin"}, Counted: true},
	{Key: "it", Fragments: []string{"it", "teknik", "data", "dator"}, Counted: true},
	{Key: "politik", Fragments: []string{"politik", "samhäll"}},
	{Key: "religion", Fragments: []string{"religion", "islam"}},
}

// LookupBucket returns the bucket registered under key.
func LookupBucket(key string) (Bucket, bool) {
	for _, b := range Buckets {
		if b.Key == key {
			return b, true
		}
	}
	return Bucket{}, false
}

// countTypes increments the "all" counter and every counted bucket the label falls into.
func countTypes(types map[string]int, label string) {
	types["all"]++
	for _, b := range Buckets {
		if b.Counted && b.Match(label) {
			types[b.Key]++
		}
	}
}
