package search

import "github.com/hyperjump/ordbok/internal/models"

// ProcessQuery applies request defaults and returns the normalized query text.
func ProcessQuery(req *models.SearchRequest) string {
	req.Normalize()
	return NormalizeQuery(req.Query)
}
