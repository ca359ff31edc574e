package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
)

// CardProgressStore defines the interface for card progress persistence.
// Records are keyed by (user, card, direction).
type CardProgressStore interface {
	// Create saves a new progress record.
	// Returns ErrDuplicate if the record already exists.
	Create(ctx context.Context, progress *domain.CardProgress) error

	// Get retrieves a progress record without locking it.
	// Returns ErrProgressNotFound if the record does not exist.
	Get(
		ctx context.Context,
		userID, cardID uuid.UUID,
		direction domain.StudyDirection,
	) (*domain.CardProgress, error)

	// GetForUpdate retrieves a progress record with a row-level lock using
	// SELECT FOR UPDATE. Use inside a transaction when the record will be
	// updated, to protect against concurrent answer submissions.
	// Returns ErrProgressNotFound if the record does not exist.
	GetForUpdate(
		ctx context.Context,
		userID, cardID uuid.UUID,
		direction domain.StudyDirection,
	) (*domain.CardProgress, error)

	// Update modifies an existing progress record, identified by its
	// (user, card, direction) key.
	// Returns ErrProgressNotFound if the record does not exist.
	Update(ctx context.Context, progress *domain.CardProgress) error

	// FindLearning retrieves all selected learning-phase records for a
	// user, regardless of due time. Learning cards are always eligible
	// within the session.
	FindLearning(ctx context.Context, userID uuid.UUID) ([]*domain.CardProgress, error)

	// FindDue retrieves all selected review-phase records for a user whose
	// next review is at or before the given time.
	FindDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.CardProgress, error)

	// MaxSessionPosition returns the highest session position in use among
	// the user's learning-phase records, or 0 if there are none.
	MaxSessionPosition(ctx context.Context, userID uuid.UUID) (int, error)

	// SetSelected marks all of a card's progress records for a user as
	// selected or deselected. Deselection retires the records from the
	// queue without deleting them.
	SetSelected(ctx context.Context, userID, cardID uuid.UUID, selected bool) error

	// RecomputeMastery refreshes the IsMastered flag of every record
	// against the given thresholds and returns the number of rows that
	// changed. Used by the nightly maintenance sweep.
	RecomputeMastery(ctx context.Context, minIntervalDays float64, minRepetitions int) (int64, error)

	// WithTx returns a new CardProgressStore instance that uses the
	// provided transaction. The transaction is created and managed by the
	// caller.
	WithTx(tx *sql.Tx) CardProgressStore
}
