package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/ordbok/internal/config"
	"github.com/hyperjump/ordbok/internal/corpus"
	"github.com/hyperjump/ordbok/internal/models"
	"github.com/hyperjump/ordbok/internal/search"
	"github.com/hyperjump/ordbok/internal/storage"
)

type testEnv struct {
	srv      *Server
	store    *storage.SQLiteStorage
	provider *corpus.Provider
	cfg      *config.Config
	handler  http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	words := []models.Word{
		{ID: "1", Type: "subst", Swedish: "hund", Arabic: "كَلْب", Definition: "ett husdjur"},
		{ID: "2", Type: "räkn", Swedish: "hundra", Arabic: "مئة"},
		{ID: "3", Type: "subst", Swedish: "katt", Arabic: "قطة"},
		{ID: "4", Type: "verb", Swedish: "springa", Arabic: "ركض"},
	}
	if _, err := store.UpsertWords(ctx, words); err != nil {
		t.Fatal(err)
	}
	provider := corpus.NewProvider(store)
	if err := provider.Load(ctx); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.DatabasePath = filepath.Join(dir, "db.sqlite")

	engine := search.NewEngine(provider, store)
	srv := NewServer(engine, provider, store, cfg, zap.NewNop())
	return &testEnv{srv: srv, store: store, provider: provider, cfg: cfg, handler: srv.Router()}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func TestHandleSearch(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/v1/search", models.SearchRequest{Query: "hund", Mode: models.ModeExact})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "1" {
		t.Errorf("results: got %+v", resp.Results)
	}
	if resp.Stats.Total != 1 || resp.Stats.Types["subst"] != 1 || resp.Stats.Types["all"] != 1 {
		t.Errorf("stats: got %+v", resp.Stats)
	}
	if !resp.Active {
		t.Error("response should be active")
	}
}

func TestHandleSearch_Paging(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/v1/search", models.SearchRequest{Query: "a", Limit: 1, Offset: 1})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	// "a" matches hundra, katt and springa; shorter words rank first.
	if resp.Total != 3 {
		t.Errorf("total: got %d, want 3", resp.Total)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "2" {
		t.Errorf("page: got %+v", resp.Results)
	}
}

func TestHandleSearch_Favorites(t *testing.T) {
	env := newTestEnv(t)
	if w := env.do(t, http.MethodPut, "/api/v1/favorites/3", nil); w.Code != http.StatusOK {
		t.Fatalf("add favorite: got %d", w.Code)
	}
	w := env.do(t, http.MethodPost, "/api/v1/search", models.SearchRequest{Mode: models.ModeFavorites})
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "3" {
		t.Errorf("favorites results: got %+v", resp.Results)
	}
}

func TestHandleSearch_BadRequest(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		body interface{}
	}{
		{"invalid json", "{not json"},
		{"unknown mode", map[string]interface{}{"query": "hund", "mode": "fuzzy"}},
		{"unknown sort", map[string]interface{}{"query": "hund", "sort": "random"}},
		{"negative limit", map[string]interface{}{"query": "hund", "limit": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/search", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", w.Code)
			}
		})
	}
}

func TestHandleGetWord(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/v1/words/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var word models.Word
	if err := json.NewDecoder(w.Body).Decode(&word); err != nil {
		t.Fatal(err)
	}
	if word.Swedish != "hund" || word.Definition != "ett husdjur" {
		t.Errorf("word: got %+v", word)
	}

	if w := env.do(t, http.MethodGet, "/api/v1/words/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing word: got %d, want 404", w.Code)
	}
}

func TestHandleGetWord_SnapshotThenStorage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Deleted from storage after load: still answered from the snapshot.
	if err := env.store.DeleteWord(ctx, "3"); err != nil {
		t.Fatal(err)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/words/3", nil); w.Code != http.StatusOK {
		t.Errorf("snapshot word: got %d, want 200", w.Code)
	}

	// Stored after load: found through storage before the next reload.
	if _, err := env.store.UpsertWords(ctx, []models.Word{{ID: "9", Type: "adj", Swedish: "liten", Arabic: "صغير"}}); err != nil {
		t.Fatal(err)
	}
	w := env.do(t, http.MethodGet, "/api/v1/words/9", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stored word: got %d, want 200", w.Code)
	}
	var word models.Word
	if err := json.NewDecoder(w.Body).Decode(&word); err != nil {
		t.Fatal(err)
	}
	if word.Swedish != "liten" {
		t.Errorf("word: got %+v", word)
	}
}

func TestHandleFavorites(t *testing.T) {
	env := newTestEnv(t)
	for _, id := range []string{"2", "1"} {
		if w := env.do(t, http.MethodPut, "/api/v1/favorites/"+id, nil); w.Code != http.StatusOK {
			t.Fatalf("add %s: got %d", id, w.Code)
		}
	}
	if w := env.do(t, http.MethodPut, "/api/v1/favorites/999", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown word: got %d, want 404", w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/v1/favorites", nil)
	var out struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.IDs) != 2 || out.IDs[0] != "1" || out.IDs[1] != "2" {
		t.Errorf("ids: got %v", out.IDs)
	}

	if w := env.do(t, http.MethodDelete, "/api/v1/favorites/1", nil); w.Code != http.StatusOK {
		t.Errorf("remove: got %d", w.Code)
	}
	n, _ := env.store.CountFavorites(context.Background())
	if n != 1 {
		t.Errorf("favorites after remove: got %d", n)
	}
}

func TestHandleReload(t *testing.T) {
	env := newTestEnv(t)
	src := filepath.Join(t.TempDir(), "extra.json")
	if err := os.WriteFile(src, []byte(`[[10,"adj","stor","كبير"]]`), 0644); err != nil {
		t.Fatal(err)
	}
	env.cfg.Corpus.Sources = []string{src}

	w := env.do(t, http.MethodPost, "/api/v1/corpus/reload", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	var out struct {
		Status string              `json:"status"`
		Words  int                 `json:"words"`
		Report corpus.ImportReport `json:"report"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	// Configured sources are authoritative: the seeded words are not in them.
	if out.Words != 1 || out.Report.Imported != 1 || out.Report.Removed != 4 {
		t.Errorf("reload: got %+v", out)
	}
	if _, ok := env.provider.Corpus().Lookup("10"); !ok {
		t.Error("reloaded corpus should contain word 10")
	}
	if _, ok := env.provider.Corpus().Lookup("1"); ok {
		t.Error("word 1 is absent from the sources and should be removed")
	}
}

func TestHandleReload_ImportError(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Corpus.Sources = []string{filepath.Join(t.TempDir(), "missing.json")}
	if w := env.do(t, http.MethodPost, "/api/v1/corpus/reload", nil); w.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", w.Code)
	}
	if env.provider.Corpus().Len() != 4 {
		t.Error("failed reload must keep the previous corpus")
	}
}

func TestHandleStatus(t *testing.T) {
	env := newTestEnv(t)
	_ = env.store.AddFavorite(context.Background(), "1")

	w := env.do(t, http.MethodGet, "/api/v1/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["words"].(float64) != 4 || out["favorites"].(float64) != 1 || out["corpus_size"].(float64) != 4 {
		t.Errorf("status: got %v", out)
	}
	cfg, ok := out["config"].(map[string]interface{})
	if !ok {
		t.Fatalf("config missing: %v", out)
	}
	if cfg["empty_query"] != "stats_only" || cfg["max_results"].(float64) != 1000 {
		t.Errorf("config: got %v", cfg)
	}
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestHandleReload_FromStorage(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Corpus.Sources = []string{filepath.Join(t.TempDir(), "missing.json")}
	if _, err := env.store.UpsertWords(context.Background(), []models.Word{{ID: "9", Swedish: "liten", Arabic: "صغير"}}); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodPost, "/api/v1/corpus/reload?from=storage", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body.String())
	}
	if got := env.provider.Corpus().Len(); got != 5 {
		t.Errorf("corpus size = %d, want 5", got)
	}
}
