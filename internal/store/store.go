// Package store owns the in-memory report collection and its on-disk JSON
// mirror. The collection is bounded and ordered most-recent-first; every
// mutation rewrites the whole file under the store lock, so the mirror is
// never written from two goroutines at once.
package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/couchcryptid/hazard-report-ingest/internal/domain"
)

// Store is the single owner of the report collection. It is the only place
// report IDs are assigned.
type Store struct {
	mu       sync.Mutex
	reports  []domain.Report
	maxSize  int
	filePath string
	lastID   int64
	logger   *slog.Logger
}

// New creates a Store capped at maxSize reports, seeding the collection from
// filePath when the file exists and parses. A missing or corrupt file starts
// the store empty; neither is fatal.
func New(filePath string, maxSize int, logger *slog.Logger) *Store {
	s := &Store{
		maxSize:  maxSize,
		filePath: filePath,
		logger:   logger,
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("read report file failed, starting empty", "path", s.filePath, "error", err)
		}
		return
	}

	var reports []domain.Report
	if err := json.Unmarshal(data, &reports); err != nil {
		s.logger.Warn("parse report file failed, starting empty", "path", s.filePath, "error", err)
		return
	}

	if len(reports) > s.maxSize {
		reports = reports[:s.maxSize]
	}
	s.reports = reports

	// Seed the ID guard so new IDs never collide with loaded ones.
	for _, r := range reports {
		if id, err := strconv.ParseInt(r.ID, 10, 64); err == nil && id > s.lastID {
			s.lastID = id
		}
	}

	s.logger.Info("loaded reports from disk", "path", s.filePath, "count", len(reports))
}

// Create assigns the ID and creation timestamp, prepends the draft to the
// collection, enforces the retention cap, and mirrors the collection to disk.
// The returned Report is the stored value.
func (s *Store) Create(draft domain.Report) domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := domain.Now()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	draft.ID = strconv.FormatInt(id, 10)
	draft.CreatedAt = now
	if draft.Status == "" {
		draft.Status = domain.StatusPending
	}

	s.reports = append([]domain.Report{draft}, s.reports...)
	if len(s.reports) > s.maxSize {
		s.reports = s.reports[:s.maxSize]
	}

	s.persistLocked()
	return draft
}

// UpdateByID applies mutate to the report with the given ID and re-persists
// the collection. Returns false when the ID is not present — e.g. the report
// was evicted before late-arriving media; that loss is accepted, not an error.
func (s *Store) UpdateByID(id string, mutate func(*domain.Report)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reports {
		if s.reports[i].ID == id {
			mutate(&s.reports[i])
			s.persistLocked()
			return true
		}
	}
	return false
}

// List returns a copy of the collection, most-recent-first.
func (s *Store) List() []domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// Count returns the number of retained reports.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

// persistLocked rewrites the whole collection to the mirror file. Callers must
// hold s.mu. Failures leave the in-memory state authoritative for the rest of
// the process lifetime.
func (s *Store) persistLocked() {
	data, err := json.MarshalIndent(s.reports, "", "  ")
	if err != nil {
		s.logger.Error("marshal reports failed", "error", err)
		return
	}
	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.logger.Error("create data dir failed", "dir", dir, "error", err)
			return
		}
	}
	if err := os.WriteFile(s.filePath, data, 0o644); err != nil {
		s.logger.Error("persist reports failed", "path", s.filePath, "error", err)
	}
}
