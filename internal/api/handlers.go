package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"docview/internal/document"
	"docview/internal/query"
	"github.com/go-chi/chi/v5"
)

type loadRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "bad_request", "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		jsonError(w, "bad_request", "path is required", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(req.Path)
	if err != nil {
		jsonError(w, string(document.ErrFileNotFound), "cannot stat "+req.Path, http.StatusNotFound)
		return
	}
	if info.Size() > s.cfg.MaxFileBytes {
		jsonError(w, "file_too_large",
			fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxFileBytes),
			http.StatusRequestEntityTooLarge)
		return
	}

	now := time.Now()
	entry := &Entry{
		ID:        DocIDFor(req.Path, now),
		Path:      req.Path,
		Status:    StatusLoading,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.store.Put(entry)

	go s.loadDocument(entry)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id":   entry.ID,
		"status":   entry.Status,
		"poll_url": "/api/documents/" + entry.ID,
	})
}

// loadDocument runs one bounded load. Concurrency is limited by the
// load semaphore; the per-load timeout covers file read and extraction.
func (s *Server) loadDocument(entry *Entry) {
	s.loadSem <- struct{}{}
	defer func() { <-s.loadSem }()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.LoadTimeout)
	defer cancel()

	start := time.Now()
	doc, err := document.Load(ctx, entry.Path, document.LoadOptions{Extractors: s.extractors})
	s.stats.Record("load", time.Since(start))

	if err != nil {
		kind := string(document.LoadErrorKind(err))
		if kind == "" {
			kind = string(document.ErrExtractionFailure)
		}
		entry.SetFailed(kind, err.Error())
		s.log.Error("load failed", "doc_id", entry.ID, "path", entry.Path, "kind", kind, "error", err)
		return
	}

	engine := query.New(doc)
	if collisions := engine.Index().Collisions; len(collisions) > 0 {
		s.log.Debug("section key collisions", "doc_id", entry.ID, "keys", collisions)
	}
	entry.SetReady(engine)
	s.log.Info("document loaded",
		"doc_id", entry.ID,
		"path", entry.Path,
		"format", doc.Format.String(),
		"chars", doc.CharCount,
		"lines", doc.LineCount,
	)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.store.List()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	entry := s.store.Get(chi.URLParam(r, "docID"))
	if entry == nil {
		jsonError(w, "document_not_found", "unknown doc_id", http.StatusNotFound)
		return
	}

	resp := map[string]any{"document": entry.Snapshot()}
	if engine, ok := entry.Engine(); ok {
		if info, err := engine.Info(); err == nil {
			resp["info"] = info
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "docID")
	if !s.store.Delete(id) {
		jsonError(w, "document_not_found", "unknown doc_id", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleTOC(w http.ResponseWriter, r *http.Request) {
	engine, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	start := time.Now()
	headings, err := engine.TOC()
	s.stats.Record("toc", time.Since(start))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"headings": headings})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	engine, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		jsonError(w, "bad_request", "q query parameter is required", http.StatusBadRequest)
		return
	}
	start := time.Now()
	res, err := engine.SearchKeyword(q, s.contextParam(r), s.budgetParam(r))
	s.stats.Record("search", time.Since(start))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRegex(w http.ResponseWriter, r *http.Request) {
	engine, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		jsonError(w, "bad_request", "pattern query parameter is required", http.StatusBadRequest)
		return
	}
	start := time.Now()
	res, err := engine.SearchRegex(pattern, s.contextParam(r), s.budgetParam(r))
	s.stats.Record("regex", time.Since(start))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSlice(w http.ResponseWriter, r *http.Request) {
	engine, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	rng := r.URL.Query().Get("range")
	if rng == "" {
		jsonError(w, "bad_request", "range query parameter is required, e.g. range=5-10", http.StatusBadRequest)
		return
	}
	start := time.Now()
	res, err := engine.Slice(rng, s.budgetParam(r))
	s.stats.Record("slice", time.Since(start))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	engine, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		jsonError(w, "bad_request", "name query parameter is required", http.StatusBadRequest)
		return
	}
	start := time.Now()
	res, err := engine.FindSection(name, s.budgetParam(r))
	s.stats.Record("section", time.Since(start))
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleOpStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"stats": s.stats.Snapshot()})
}

// engineFor resolves the document in the URL to a ready query engine.
func (s *Server) engineFor(w http.ResponseWriter, r *http.Request) (*query.Engine, bool) {
	entry := s.store.Get(chi.URLParam(r, "docID"))
	if entry == nil {
		jsonError(w, "document_not_found", "unknown doc_id", http.StatusNotFound)
		return nil, false
	}
	engine, ok := entry.Engine()
	if !ok {
		snap := entry.Snapshot()
		if snap.Status == StatusFailed {
			jsonError(w, snap.ErrKind, snap.ErrHint, http.StatusConflict)
		} else {
			jsonError(w, string(query.KindNoDocument), "document is still loading; poll its status", http.StatusConflict)
		}
		return nil, false
	}
	return engine, true
}

func (s *Server) budgetParam(r *http.Request) int {
	if v := r.URL.Query().Get("budget"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return s.cfg.DefaultBudget
}

func (s *Server) contextParam(r *http.Request) int {
	if v := r.URL.Query().Get("context"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return s.cfg.DefaultContextLines
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeQueryError maps structured query errors to HTTP statuses while
// keeping the kind and hint intact in the body.
func writeQueryError(w http.ResponseWriter, err error) {
	qerr := query.AsError(err)
	if qerr == nil {
		jsonError(w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	status := http.StatusBadRequest
	switch qerr.Kind {
	case query.KindSectionNotFound:
		status = http.StatusNotFound
	case query.KindNoDocument:
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{"error": qerr})
}

func jsonError(w http.ResponseWriter, kind, hint string, status int) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"kind": kind, "hint": hint},
	})
}
