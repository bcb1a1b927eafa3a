package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/matchwatch/internal/domain/match"
)

// RecordRepository keeps the derived per-player slots. All writes go through its lock.
type RecordRepository struct {
	mu    sync.RWMutex
	slots map[string]match.Slots
}

func NewRecordRepository() *RecordRepository {
	return &RecordRepository{slots: make(map[string]match.Slots)}
}

func (r *RecordRepository) Get(_ context.Context, playerID string) (match.Slots, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slots[playerID]
	if !ok {
		return match.Slots{}, false, nil
	}
	return s.Clone(), true, nil
}

func (r *RecordRepository) List(_ context.Context) (map[string]match.Slots, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]match.Slots, len(r.slots))
	for id, s := range r.slots {
		out[id] = s.Clone()
	}
	return out, nil
}

func (r *RecordRepository) Put(_ context.Context, playerID string, kind match.Kind, value *match.Match, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.slots[playerID]
	stored := value.ClonePtr()
	switch kind {
	case match.KindToday:
		s.Today = stored
	case match.KindLast:
		s.Last = stored
	case match.KindNext:
		s.Next = stored
	case match.KindMissed:
		s.Missed = stored
	}
	s.UpdatedAt = at
	if s.Empty() {
		delete(r.slots, playerID)
		return nil
	}
	r.slots[playerID] = s
	return nil
}

func (r *RecordRepository) HasLive(_ context.Context) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.slots {
		if s.Today != nil && s.Today.Status.IsLive() {
			return true, nil
		}
	}
	return false, nil
}
