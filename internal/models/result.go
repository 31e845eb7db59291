package models

// SearchResult is the projection of a matched word returned to callers.
type SearchResult struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Swedish string `json:"swedish"`
	Arabic  string `json:"arabic"`
	Forms   string `json:"forms,omitempty"`
	Gender  string `json:"gender,omitempty"`
}

// SearchStats counts the words that passed the query and favorites filters.
// Types maps a type bucket key to its count; one word may count toward several buckets.
type SearchStats struct {
	Total int            `json:"total"`
	Types map[string]int `json:"types"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Stats   SearchStats    `json:"stats"`
	// Active is false when neither a query nor a structural filter was in effect.
	// Callers use it to tell an idle request apart from a search that found nothing.
	Active bool `json:"active"`
	// Total is the length of the ranked, capped list before paging.
	Total     int    `json:"total"`
	QueryTime int64  `json:"query_time_ms"`
	Query     string `json:"query"`
}

// Page returns a copy of the response holding only results[offset:offset+limit].
// A limit of zero keeps everything after offset.
func (r *SearchResponse) Page(offset, limit int) *SearchResponse {
	out := *r
	start := offset
	if start < 0 {
		start = 0
	}
	if start > len(r.Results) {
		start = len(r.Results)
	}
	end := len(r.Results)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	out.Results = r.Results[start:end]
	return &out
}

// FavoriteSet is a snapshot of favorited word IDs.
type FavoriteSet map[string]struct{}

// NewFavoriteSet returns a set holding ids.
func NewFavoriteSet(ids ...string) FavoriteSet {
	s := make(FavoriteSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set holds nothing.
func (s FavoriteSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in unspecified order.
func (s FavoriteSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}
