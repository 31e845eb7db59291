package models

import "strings"

// Mode selects how the query text is matched against a word.
type Mode string

const (
	ModeContains  Mode = "contains"
	ModeStart     Mode = "start"
	ModeEnd       Mode = "end"
	ModeExact     Mode = "exact"
	ModeFavorites Mode = "favorites"
)

// Sort selects the ordering of matched words.
type Sort string

const (
	SortRelevance Sort = "relevance"
	SortAlphaAsc  Sort = "alpha_asc"
	SortAlphaDesc Sort = "alpha_desc"
	SortRichness  Sort = "richness"
	SortLastChar  Sort = "last_char"
)

// TypeAll is the type bucket key that disables the type filter.
const TypeAll = "all"

// SearchRequest is a dictionary lookup with its filters.
// Limit and Offset page the capped, ranked list; the engine ignores them.
type SearchRequest struct {
	Query  string `json:"query"`
	Mode   Mode   `json:"mode,omitempty" validate:"omitempty,oneof=contains start end exact favorites"`
	Type   string `json:"type,omitempty" validate:"omitempty,max=64"`
	Sort   Sort   `json:"sort,omitempty" validate:"omitempty,oneof=relevance alpha_asc alpha_desc az za richness last_char"`
	Limit  int    `json:"limit,omitempty" validate:"gte=0"`
	Offset int    `json:"offset,omitempty" validate:"gte=0"`
}

// Normalize applies defaults and resolves aliases in place.
// Unknown modes fall back to contains and unknown sorts to relevance; it never fails.
func (r *SearchRequest) Normalize() {
	switch Mode(strings.ToLower(string(r.Mode))) {
	case ModeStart:
		r.Mode = ModeStart
	case ModeEnd:
		r.Mode = ModeEnd
	case ModeExact:
		r.Mode = ModeExact
	case ModeFavorites:
		r.Mode = ModeFavorites
	default:
		r.Mode = ModeContains
	}

	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if r.Type == "" {
		r.Type = TypeAll
	}

	switch Sort(strings.ToLower(string(r.Sort))) {
	case SortAlphaAsc, "az":
		r.Sort = SortAlphaAsc
	case SortAlphaDesc, "za":
		r.Sort = SortAlphaDesc
	case SortRichness:
		r.Sort = SortRichness
	case SortLastChar:
		r.Sort = SortLastChar
	default:
		r.Sort = SortRelevance
	}

	if r.Limit < 0 {
		r.Limit = 0
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
}

// FavoritesScoped reports whether the request is restricted to favorited words.
func (r *SearchRequest) FavoritesScoped() bool {
	return r.Mode == ModeFavorites
}
