package corpus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hyperjump/ordbok/internal/models"
	"github.com/hyperjump/ordbok/internal/search"
	"github.com/hyperjump/ordbok/internal/storage"
)

// Provider publishes the current corpus snapshot. Snapshots are replaced whole, so a search
// that already holds one never observes a partial reload.
type Provider struct {
	storage  storage.Storage
	importer *Importer
	current  atomic.Pointer[search.Corpus]
	mu       sync.Mutex // serializes imports and reloads
	logger   *zap.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets a logger for import and reload events.
func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *Provider) { p.logger = l }
}

// NewProvider creates a provider backed by store. It serves an empty corpus until Load succeeds.
func NewProvider(store storage.Storage, opts ...ProviderOption) *Provider {
	p := &Provider{
		storage:  store,
		importer: NewImporter(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.current.Store(search.NewCorpus(nil))
	return p
}

// Corpus returns the current snapshot. It is never nil.
func (p *Provider) Corpus() *search.Corpus {
	return p.current.Load()
}

// Load reads every stored word and publishes a new snapshot.
func (p *Provider) Load(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(ctx)
}

func (p *Provider) load(ctx context.Context) error {
	words, err := p.storage.ListWords(ctx)
	if err != nil {
		return fmt.Errorf("failed to list words: %w", err)
	}
	c := search.NewCorpus(words)
	p.current.Store(c)
	p.logger.Debug("corpus loaded", zap.Int("words", c.Len()))
	return nil
}

// ImportFiles reads the given sources, upserts their words and publishes a new snapshot.
// Words already stored are kept. On a read error nothing is written and the current
// snapshot stays in place.
func (p *Provider) ImportFiles(ctx context.Context, paths ...string) (ImportReport, error) {
	return p.importFiles(ctx, paths, false)
}

// SyncFiles is ImportFiles for the authoritative source set: stored words that no longer
// appear in any of paths are deleted, along with their favorites.
func (p *Provider) SyncFiles(ctx context.Context, paths ...string) (ImportReport, error) {
	return p.importFiles(ctx, paths, true)
}

func (p *Provider) importFiles(ctx context.Context, paths []string, prune bool) (ImportReport, error) {
	words, report, err := p.importer.ReadFiles(paths...)
	if err != nil {
		return report, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(words) > 0 {
		if _, err := p.storage.UpsertWords(ctx, words); err != nil {
			return report, fmt.Errorf("failed to store words: %w", err)
		}
	}
	if prune {
		removed, err := p.prune(ctx, words)
		report.Removed = removed
		if err != nil {
			return report, err
		}
	}
	if err := p.load(ctx); err != nil {
		return report, err
	}
	p.logger.Info("corpus imported",
		zap.Int("files", report.Files),
		zap.Int("imported", report.Imported),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("skipped", report.Skipped),
		zap.Int("removed", report.Removed),
	)
	return report, nil
}

// prune deletes stored words whose IDs are not in keep.
func (p *Provider) prune(ctx context.Context, keep []models.Word) (int, error) {
	ids := make(map[string]struct{}, len(keep))
	for _, w := range keep {
		ids[w.ID] = struct{}{}
	}
	stored, err := p.storage.ListWords(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list words: %w", err)
	}
	removed := 0
	for _, w := range stored {
		if _, ok := ids[w.ID]; ok {
			continue
		}
		if err := p.storage.DeleteWord(ctx, w.ID); err != nil {
			return removed, fmt.Errorf("failed to delete word %s: %w", w.ID, err)
		}
		removed++
	}
	return removed, nil
}
