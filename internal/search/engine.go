// Package search provides the in-memory dictionary search and ranking engine.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/ordbok/internal/models"
	"go.uber.org/zap"
)

// DefaultMaxResults is the hard cap on ranked results.
const DefaultMaxResults = 1000

// EmptyQueryPolicy decides what an idle request (no query, type "all", not favorites) returns.
type EmptyQueryPolicy string

const (
	// EmptyQueryStatsOnly computes stats but returns no results, leaving the caller to show a landing view.
	EmptyQueryStatsOnly EmptyQueryPolicy = "stats_only"
	// EmptyQueryScanAll ranks and returns the whole corpus, capped.
	EmptyQueryScanAll EmptyQueryPolicy = "scan_all"
)

// Options tunes a search call.
type Options struct {
	MaxResults int
	EmptyQuery EmptyQueryPolicy
}

// DefaultOptions returns the reference cap and the stats-only empty query policy.
func DefaultOptions() Options {
	return Options{MaxResults: DefaultMaxResults, EmptyQuery: EmptyQueryStatsOnly}
}

// Search filters, classifies, ranks and caps the corpus for req. It is a pure function:
// it reads corpus and favorites without modifying them, and the same inputs always give the same output.
// favorites is consulted only when req.Mode is favorites; a nil set then matches nothing.
func Search(corpus *Corpus, req models.SearchRequest, favorites models.FavoriteSet, opts Options) *models.SearchResponse {
	q := ProcessQuery(&req)
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	scoped := req.FavoritesScoped()
	typeFiltered := req.Type != models.TypeAll
	bucket, known := LookupBucket(req.Type)
	active := q != "" || scoped || typeFiltered
	emit := active || opts.EmptyQuery == EmptyQueryScanAll

	stats := models.SearchStats{Types: make(map[string]int)}
	var matches []*entry
	if corpus != nil {
		for i := range corpus.entries {
			e := &corpus.entries[i]
			if scoped && !favorites.Has(e.word.ID) {
				continue
			}
			if q != "" && !e.matches(req.Mode, q) {
				continue
			}
			countTypes(stats.Types, e.label)
			if !emit {
				continue
			}
			if typeFiltered && (!known || !bucket.Match(e.label)) {
				continue
			}
			matches = append(matches, e)
		}
	}
	stats.Total = stats.Types["all"]

	rank(matches, req.Sort, q)
	if len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}

	results := make([]models.SearchResult, len(matches))
	for i, e := range matches {
		results[i] = e.word.Result()
	}
	return &models.SearchResponse{
		Results: results,
		Stats:   stats,
		Active:  active,
		Total:   len(results),
		Query:   req.Query,
	}
}

// CorpusProvider supplies the current corpus snapshot.
type CorpusProvider interface {
	Corpus() *Corpus
}

// FavoritesStore supplies the favorited word IDs.
type FavoritesStore interface {
	FavoriteIDs(ctx context.Context) (models.FavoriteSet, error)
}

// Engine runs searches against a corpus provider and a favorites store.
type Engine struct {
	corpus    CorpusProvider
	favorites FavoritesStore
	opts      Options
	logger    *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithOptions overrides the default search options.
func WithOptions(opts Options) EngineOption {
	return func(e *Engine) { e.opts = opts }
}

// NewEngine creates an engine. favorites may be nil, in which case favorites mode matches nothing.
func NewEngine(corpus CorpusProvider, favorites FavoritesStore, opts ...EngineOption) *Engine {
	e := &Engine{
		corpus:    corpus,
		favorites: favorites,
		opts:      DefaultOptions(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search takes one corpus snapshot and runs req against it.
// It only fails when the favorites store cannot be read.
func (e *Engine) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	start := time.Now()
	corpus := e.corpus.Corpus()
	r := *req
	r.Normalize()

	var favorites models.FavoriteSet
	if r.FavoritesScoped() && e.favorites != nil {
		ids, err := e.favorites.FavoriteIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load favorites: %w", err)
		}
		favorites = ids
	}

	resp := Search(corpus, r, favorites, e.opts)
	resp.QueryTime = time.Since(start).Milliseconds()
	e.logger.Debug("search completed",
		zap.String("query", r.Query),
		zap.String("mode", string(r.Mode)),
		zap.String("type", r.Type),
		zap.String("sort", string(r.Sort)),
		zap.Int("corpus_size", corpus.Len()),
		zap.Int("matched", resp.Stats.Total),
		zap.Int("returned", resp.Total),
	)
	return resp, nil
}

// CorpusSize returns the number of words in the current snapshot.
func (e *Engine) CorpusSize() int {
	return e.corpus.Corpus().Len()
}

// Options returns the engine's search options.
func (e *Engine) Options() Options {
	return e.opts
}
