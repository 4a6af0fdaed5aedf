package api

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"docview/internal/query"
)

// DocStatus is the lifecycle state of a served document.
type DocStatus string

const (
	StatusLoading DocStatus = "loading"
	StatusReady   DocStatus = "ready"
	StatusFailed  DocStatus = "failed"
)

// Entry tracks one document through load and serving. The embedded
// engine is immutable once set, so queries run lock-free; the mutex
// only guards lifecycle fields.
type Entry struct {
	mu sync.Mutex

	ID   string `json:"doc_id"`
	Path string `json:"path"`

	Status  DocStatus `json:"status"`
	ErrKind string    `json:"error_kind,omitempty"`
	ErrHint string    `json:"error_hint,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	engine *query.Engine
}

// SetReady attaches the query engine and marks the entry servable.
func (e *Entry) SetReady(engine *query.Engine) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.engine = engine
	e.Status = StatusReady
	e.UpdatedAt = time.Now()
}

// SetFailed records a terminal load failure.
func (e *Entry) SetFailed(kind, hint string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Status = StatusFailed
	e.ErrKind = kind
	e.ErrHint = hint
	e.UpdatedAt = time.Now()
}

// Engine returns the query engine once the entry is ready.
func (e *Entry) Engine() (*query.Engine, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine, e.Status == StatusReady
}

// EntrySnapshot is a read-only, JSON-safe copy of entry state.
type EntrySnapshot struct {
	ID        string    `json:"doc_id"`
	Path      string    `json:"path"`
	Status    DocStatus `json:"status"`
	ErrKind   string    `json:"error_kind,omitempty"`
	ErrHint   string    `json:"error_hint,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Entry) Snapshot() EntrySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EntrySnapshot{
		ID:        e.ID,
		Path:      e.Path,
		Status:    e.Status,
		ErrKind:   e.ErrKind,
		ErrHint:   e.ErrHint,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// DocStore is a thread-safe in-memory document registry with TTL
// eviction. It belongs to the serving layer; the core engine itself
// keeps no registry.
type DocStore struct {
	mu   sync.Mutex
	docs map[string]*Entry
	ttl  time.Duration
}

func NewDocStore(ttl time.Duration) *DocStore {
	return &DocStore{
		docs: make(map[string]*Entry),
		ttl:  ttl,
	}
}

func (s *DocStore) Put(e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[e.ID] = e
}

func (s *DocStore) Get(id string) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[id]
}

func (s *DocStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return false
	}
	delete(s.docs, id)
	return true
}

// List returns snapshots ordered by creation time.
func (s *DocStore) List() []EntrySnapshot {
	s.mu.Lock()
	entries := make([]*Entry, 0, len(s.docs))
	for _, e := range s.docs {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	snaps := make([]EntrySnapshot, 0, len(entries))
	for _, e := range entries {
		snaps = append(snaps, e.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].CreatedAt.Before(snaps[j].CreatedAt) })
	return snaps
}

// Cleanup evicts entries idle longer than the TTL.
func (s *DocStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, e := range s.docs {
		e.mu.Lock()
		expired := now.Sub(e.UpdatedAt) > s.ttl
		e.mu.Unlock()
		if expired {
			delete(s.docs, id)
		}
	}
}

// DocIDFor derives a short stable-looking ID for a load request.
func DocIDFor(path string, at time.Time) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%s-%d", path, at.UnixNano()))
	return fmt.Sprintf("%x", h[:8])
}
