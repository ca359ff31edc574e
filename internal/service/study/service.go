// Package study implements the session orchestrator: it owns the
// transactional read-modify-write cycle around the scheduling engine and
// assembles the mixed learning/review queue served to clients.
package study

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
)

// QueueEntry pairs a due progress record with its card content.
type QueueEntry struct {
	Card     *domain.Card         `json:"card"`
	Progress *domain.CardProgress `json:"progress"`
}

// AnswerResult reports the outcome of processing one answer.
type AnswerResult struct {
	// Progress is the record after the transition.
	Progress *domain.CardProgress `json:"progress"`

	// Graduated is true when this answer moved the card from the
	// learning phase into the review phase.
	Graduated bool `json:"graduated"`
}

// DailyProgressSummary reports a user's standing against their daily goal.
type DailyProgressSummary struct {
	Date           time.Time `json:"date"`
	GraduatedToday int       `json:"graduated_today"`
	DailyGoal      int       `json:"daily_goal"`
	GoalReached    bool      `json:"goal_reached"`
}

// StudyService defines the operations of a study session.
type StudyService interface {
	// GetQueue returns the user's current study queue: all learning-phase
	// cards plus review cards due now, ordered by priority and capped at
	// limit entries. A limit of 0 or less falls back to the configured
	// default.
	GetQueue(ctx context.Context, userID uuid.UUID, limit int) ([]QueueEntry, error)

	// SubmitAnswer processes one answer for a card in one study
	// direction and persists the resulting schedule. A card answered for
	// the first time gets a fresh learning-phase record synthesized
	// before the answer is applied.
	//
	// An invalid quality value leaves the schedule untouched and returns
	// the current record.
	SubmitAnswer(
		ctx context.Context,
		userID, cardID uuid.UUID,
		direction domain.StudyDirection,
		quality domain.ReviewQuality,
	) (*AnswerResult, error)

	// SelectCards adds cards to the user's study set, creating
	// learning-phase progress records for both study directions. Cards
	// already in the set are re-marked as selected.
	SelectCards(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID) error

	// DeselectCard retires a card from the user's queue without deleting
	// its progress.
	DeselectCard(ctx context.Context, userID, cardID uuid.UUID) error

	// DailyProgress reports the user's graduation count for today against
	// their daily goal.
	DailyProgress(ctx context.Context, userID uuid.UUID) (*DailyProgressSummary, error)
}
