// Package storage defines the persistence interface for dictionary words and favorites.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/ordbok/internal/models"
)

// ErrNotFound is returned when a word does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines word and favorites persistence operations.
type Storage interface {
	// Word operations
	UpsertWords(ctx context.Context, words []models.Word) (int, error)
	GetWord(ctx context.Context, id string) (*models.Word, error)
	ListWords(ctx context.Context) ([]models.Word, error)
	DeleteWord(ctx context.Context, id string) error

	// Favorites operations
	AddFavorite(ctx context.Context, wordID string) error
	RemoveFavorite(ctx context.Context, wordID string) error
	FavoriteIDs(ctx context.Context) (models.FavoriteSet, error)

	// Stats
	CountWords(ctx context.Context) (int64, error)
	CountFavorites(ctx context.Context) (int64, error)
	DiskUsageBytes() (int64, error)

	Close() error
}
