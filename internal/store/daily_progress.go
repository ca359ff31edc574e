package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DailyProgressStore tracks per-user, per-day graduation counts toward the
// daily study goal. Only graduations increment the counter; a card cycling
// within the learning phase does not.
type DailyProgressStore interface {
	// Increment adds one graduation to the user's counter for the day
	// containing ts (UTC date) and returns the new count.
	Increment(ctx context.Context, userID uuid.UUID, ts time.Time) (int, error)

	// Get returns the user's graduation count for the day containing ts,
	// or 0 if no counter exists yet.
	Get(ctx context.Context, userID uuid.UUID, ts time.Time) (int, error)
}
