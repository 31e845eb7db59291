// Package cli provides CLI output helpers for Ordbok.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/ordbok/internal/models"
	"github.com/hyperjump/ordbok/internal/search"
	"github.com/hyperjump/ordbok/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact prints one tab-separated line per result.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

const formsWidth = 80

// WriteSearchResults writes search results to w in the given format.
// Unknown formats are written as text.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for _, r := range response.Results {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Swedish, r.Arabic, r.Type); err != nil {
				return err
			}
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	if !response.Active && len(response.Results) == 0 {
		fmt.Fprintf(w, "\nDictionary holds %d words\n", response.Stats.Total)
		fmt.Fprintf(w, "Types: %s\n\n", FormatStats(response.Stats))
		return
	}
	fmt.Fprintf(w, "\nFound %d results in %dms (showing %d)\n", response.Total, response.QueryTime, len(response.Results))
	fmt.Fprintf(w, "Types: %s\n\n", FormatStats(response.Stats))
	for _, r := range response.Results {
		writeOneResult(w, r)
	}
}

func writeOneResult(w io.Writer, r models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	header := r.Swedish
	var tags []string
	if r.Type != "" {
		tags = append(tags, r.Type)
	}
	if r.Gender != "" {
		tags = append(tags, r.Gender)
	}
	if len(tags) > 0 {
		header += " (" + strings.Join(tags, ", ") + ")"
	}
	fmt.Fprintf(w, "%s\n", header)
	if r.Arabic != "" {
		fmt.Fprintf(w, "  %s\n", r.Arabic)
	}
	if r.Forms != "" {
		fmt.Fprintf(w, "  Forms: %s\n", utils.Truncate(r.Forms, formsWidth))
	}
	fmt.Fprintf(w, "  ID: %s\n", r.ID)
}

// FormatStats renders bucket counts as "all=3 subst=2 verb=1", in bucket order.
func FormatStats(stats models.SearchStats) string {
	parts := []string{fmt.Sprintf("%s=%d", models.TypeAll, stats.Types[models.TypeAll])}
	for _, b := range search.Buckets {
		if n := stats.Types[b.Key]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", b.Key, n))
		}
	}
	return strings.Join(parts, " ")
}
