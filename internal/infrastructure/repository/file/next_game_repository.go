package file

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/riskibarqy/matchwatch/internal/domain/match"
	"github.com/riskibarqy/matchwatch/internal/platform/logging"
)

const NextGamesFile = "next_games.json"

type nextGameEntry struct {
	Value    match.Match `json:"value"`
	StoredAt time.Time   `json:"stored_at"`
}

// NextGameRepository keeps the last known NextGame per player in one JSON file.
// An entry stops being served once its kickoff has passed.
type NextGameRepository struct {
	mu      sync.Mutex
	path    string
	entries map[string]nextGameEntry
	dirty   bool
	logger  *logging.Logger
}

// OpenNextGameRepository loads dir/next_games.json if present. Expired entries are dropped on load.
func OpenNextGameRepository(dir string, now time.Time, logger *logging.Logger) (*NextGameRepository, error) {
	if logger == nil {
		logger = logging.Default()
	}
	repo := &NextGameRepository{
		path:    filepath.Join(dir, NextGamesFile),
		entries: make(map[string]nextGameEntry),
		logger:  logger,
	}

	var stored map[string]nextGameEntry
	found, err := ReadJSON(repo.path, &stored)
	if err != nil {
		return nil, err
	}
	if !found {
		return repo, nil
	}

	for playerID, e := range stored {
		if !now.Before(e.Value.Kickoff) {
			repo.dirty = true
			continue
		}
		repo.entries[playerID] = e
	}
	logger.Info("next game cache restored", "path", repo.path, "entries", len(repo.entries), "dropped", len(stored)-len(repo.entries))
	return repo, nil
}

func (r *NextGameRepository) Get(_ context.Context, playerID string, now time.Time) (match.Match, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[playerID]
	if !ok {
		return match.Match{}, false, nil
	}
	if !now.Before(e.Value.Kickoff) {
		delete(r.entries, playerID)
		r.dirty = true
		return match.Match{}, false, nil
	}
	return e.Value.Clone(), true, nil
}

func (r *NextGameRepository) Put(_ context.Context, playerID string, value match.Match, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[playerID] = nextGameEntry{Value: value.Clone(), StoredAt: now}
	r.dirty = true
	return nil
}

func (r *NextGameRepository) Delete(_ context.Context, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[playerID]; ok {
		delete(r.entries, playerID)
		r.dirty = true
	}
	return nil
}

// Flush writes the cache if anything changed since the last flush.
func (r *NextGameRepository) Flush(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.dirty {
		return nil
	}
	if err := WriteJSON(r.path, r.entries); err != nil {
		return err
	}
	r.dirty = false
	return nil
}

func (r *NextGameRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
