package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/ordbok/internal/models"
	"github.com/hyperjump/ordbok/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request",
		zap.String("query", req.Query),
		zap.String("mode", string(req.Mode)),
		zap.String("type", req.Type),
		zap.Int("limit", req.Limit),
		zap.Int("offset", req.Offset),
	)
	response, err := s.engine.Search(r.Context(), &req)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.config.Search.DefaultLimit
	}
	s.respondJSON(w, http.StatusOK, response.Page(req.Offset, limit))
}

func (s *Server) handleGetWord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if word, ok := s.loader.Corpus().Lookup(id); ok {
		s.respondJSON(w, http.StatusOK, word)
		return
	}
	word, err := s.storage.GetWord(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "word not found")
		return
	}
	if err != nil {
		s.logger.Error("get word failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, word)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	set, err := s.storage.FavoriteIDs(r.Context())
	if err != nil {
		s.logger.Error("list favorites failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ids := set.IDs()
	sort.Strings(ids)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"ids": ids})
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("add favorite request", zap.String("id", id))
	err := s.storage.AddFavorite(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "word not found")
		return
	}
	if err != nil {
		s.logger.Error("add favorite failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "added"})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("remove favorite request", zap.String("id", id))
	if err := s.storage.RemoveFavorite(r.Context(), id); err != nil {
		s.logger.Error("remove favorite failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "removed"})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sources := s.config.Corpus.Sources
	resp := map[string]interface{}{"status": "reloaded"}
	// from=storage republishes stored words without touching the configured sources.
	if len(sources) == 0 || r.URL.Query().Get("from") == "storage" {
		if err := s.loader.Load(ctx); err != nil {
			s.logger.Error("corpus reload failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	} else {
		report, err := s.loader.SyncFiles(ctx, sources...)
		if err != nil {
			s.logger.Error("corpus import failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp["report"] = report
	}
	resp["words"] = s.engine.CorpusSize()
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wordCount, err := s.storage.CountWords(ctx)
	if err != nil {
		s.logger.Error("status: count words failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	favoriteCount, err := s.storage.CountFavorites(ctx)
	if err != nil {
		s.logger.Error("status: count favorites failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	opts := s.engine.Options()
	resp := map[string]interface{}{
		"words":       wordCount,
		"favorites":   favoriteCount,
		"corpus_size": s.engine.CorpusSize(),
	}
	if diskBytes, err := s.storage.DiskUsageBytes(); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}

	configInfo := map[string]interface{}{
		"max_results":   opts.MaxResults,
		"empty_query":   string(opts.EmptyQuery),
		"default_limit": s.config.Search.DefaultLimit,
		"database_path": s.config.Storage.DatabasePath,
		"sources":       s.config.Corpus.Sources,
		"watch":         s.config.Corpus.Watch,
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
