package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/ordbok/internal/models"
)

const memoryPath = ":memory:"

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist. ":memory:" opens a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath != memoryPath {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == memoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS words (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL DEFAULT '',
		swedish TEXT NOT NULL DEFAULT '',
		arabic TEXT NOT NULL DEFAULT '',
		arabic_ext TEXT NOT NULL DEFAULT '',
		definition TEXT NOT NULL DEFAULT '',
		forms TEXT NOT NULL DEFAULT '',
		example_swe TEXT NOT NULL DEFAULT '',
		example_arb TEXT NOT NULL DEFAULT '',
		idiom_swe TEXT NOT NULL DEFAULT '',
		idiom_arb TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS favorites (
		word_id TEXT PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_favorites_created_at ON favorites(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

const wordColumns = `id, type, swedish, arabic, arabic_ext, definition, forms,
	example_swe, example_arb, idiom_swe, idiom_arb, gender`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWord(row rowScanner) (models.Word, error) {
	var w models.Word
	err := row.Scan(&w.ID, &w.Type, &w.Swedish, &w.Arabic, &w.ArabicExt, &w.Definition, &w.Forms,
		&w.ExampleSwe, &w.ExampleArb, &w.IdiomSwe, &w.IdiomArb, &w.Gender)
	return w, err
}

// UpsertWords inserts or updates words in a transaction and returns how many were written.
// An updated word keeps its original position in corpus order.
func (s *SQLiteStorage) UpsertWords(ctx context.Context, words []models.Word) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO words (`+wordColumns+`, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			swedish = excluded.swedish,
			arabic = excluded.arabic,
			arabic_ext = excluded.arabic_ext,
			definition = excluded.definition,
			forms = excluded.forms,
			example_swe = excluded.example_swe,
			example_arb = excluded.example_arb,
			idiom_swe = excluded.idiom_swe,
			idiom_arb = excluded.idiom_arb,
			gender = excluded.gender,
			updated_at = excluded.updated_at`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now()
	for _, w := range words {
		if w.ID == "" {
			return 0, fmt.Errorf("word %q has no id", w.Swedish)
		}
		if _, err := stmt.ExecContext(ctx, w.ID, w.Type, w.Swedish, w.Arabic, w.ArabicExt, w.Definition, w.Forms,
			w.ExampleSwe, w.ExampleArb, w.IdiomSwe, w.IdiomArb, w.Gender, now); err != nil {
			return 0, fmt.Errorf("failed to upsert word %s: %w", w.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(words), nil
}

// GetWord returns a word by ID.
func (s *SQLiteStorage) GetWord(ctx context.Context, id string) (*models.Word, error) {
	w, err := scanWord(s.db.QueryRowContext(ctx,
		`SELECT `+wordColumns+` FROM words WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("word %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWords returns every word in corpus (insertion) order.
func (s *SQLiteStorage) ListWords(ctx context.Context) ([]models.Word, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+wordColumns+` FROM words ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// DeleteWord removes a word and any favorite pointing at it.
func (s *SQLiteStorage) DeleteWord(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM words WHERE id = ?`, id)
	return err
}

// AddFavorite marks a word as favorite. Adding an existing favorite is a no-op.
func (s *SQLiteStorage) AddFavorite(ctx context.Context, wordID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM words WHERE id = ?`, wordID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("word %s: %w", wordID, ErrNotFound)
	}
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (word_id, created_at) VALUES (?, ?)`, wordID, time.Now())
	return err
}

// RemoveFavorite unmarks a word. Removing a missing favorite is a no-op.
func (s *SQLiteStorage) RemoveFavorite(ctx context.Context, wordID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE word_id = ?`, wordID)
	return err
}

// FavoriteIDs returns the set of favorited word IDs.
func (s *SQLiteStorage) FavoriteIDs(ctx context.Context) (models.FavoriteSet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word_id FROM favorites`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := models.FavoriteSet{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = struct{}{}
	}
	return set, rows.Err()
}

// CountWords returns the total number of words.
func (s *SQLiteStorage) CountWords(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&count)
	return count, err
}

// CountFavorites returns the total number of favorites.
func (s *SQLiteStorage) CountFavorites(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites`).Scan(&count)
	return count, err
}

// DiskUsageBytes returns the size of the database file and its WAL companions.
// In-memory databases report zero.
func (s *SQLiteStorage) DiskUsageBytes() (int64, error) {
	if s.path == memoryPath {
		return 0, nil
	}
	var total int64
	for _, p := range []string{s.path, s.path + "-wal", s.path + "-shm"} {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
