package match

import (
	"context"
	"time"
)

type Kind string

const (
	KindToday  Kind = "today"
	KindLast   Kind = "last"
	KindNext   Kind = "next"
	KindMissed Kind = "missed"
)

// Repository holds the derived per-player records. Implementations serialize writes.
type Repository interface {
	Get(ctx context.Context, playerID string) (Slots, bool, error)
	List(ctx context.Context) (map[string]Slots, error)
	// Put replaces one kind for a player. A nil value clears it.
	Put(ctx context.Context, playerID string, kind Kind, value *Match, at time.Time) error
	HasLive(ctx context.Context) (bool, error)
}

// NextGameCache persists NextGame records across restarts.
type NextGameCache interface {
	Get(ctx context.Context, playerID string, now time.Time) (Match, bool, error)
	Put(ctx context.Context, playerID string, value Match, now time.Time) error
	Delete(ctx context.Context, playerID string) error
	Flush(ctx context.Context) error
}
