package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewQuality represents the difficulty signal a learner gives after
// seeing a card.
type ReviewQuality string

// Possible review quality values
const (
	ReviewQualityHard   ReviewQuality = "hard"
	ReviewQualityMedium ReviewQuality = "medium"
	ReviewQualityEasy   ReviewQuality = "easy"
)

// Valid reports whether q is one of the accepted quality values.
func (q ReviewQuality) Valid() bool {
	switch q {
	case ReviewQualityHard, ReviewQualityMedium, ReviewQualityEasy:
		return true
	default:
		return false
	}
}

// StudyDirection identifies which side of a card is shown as the prompt.
// Each direction is scheduled independently.
type StudyDirection string

// Possible study directions
const (
	DirectionTermToTranslation StudyDirection = "term_to_translation"
	DirectionTranslationToTerm StudyDirection = "translation_to_term"
)

// Valid reports whether d is one of the accepted study directions.
func (d StudyDirection) Valid() bool {
	return d == DirectionTermToTranslation || d == DirectionTranslationToTerm
}

// Common validation errors for CardProgress
var (
	ErrEmptyProgressUserID   = errors.New("card progress user ID cannot be empty")
	ErrEmptyProgressCardID   = errors.New("card progress card ID cannot be empty")
	ErrInvalidDirection      = errors.New("invalid study direction")
	ErrInvalidIntervalDays   = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor     = errors.New("ease factor must be within [1.3, 2.5]")
	ErrMissingSessionPos     = errors.New("learning-phase progress must have a session position")
	ErrUnexpectedSessionPos  = errors.New("review-phase progress must not have a session position")
	ErrInvalidReviewQuality  = errors.New("invalid review quality")
	ErrNegativeCounter       = errors.New("progress counters cannot be negative")
)

// Ease factor bounds shared by the domain and the scheduling engine.
const (
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5
	DefaultEaseFactor = 2.5
)

// CardProgress tracks a user's spaced repetition state for one card in one
// study direction. A card being studied in both directions has two
// independent records.
//
// While LearningPhase is true the card cycles inside the current session and
// SessionPosition orders it against other learning cards; once it graduates,
// SessionPosition is cleared and IntervalDays drives the due date.
type CardProgress struct {
	UserID    uuid.UUID      `json:"user_id"`
	CardID    uuid.UUID      `json:"card_id"`
	Direction StudyDirection `json:"direction"`

	Repetitions  int     `json:"repetitions"`   // Responses processed since the last reset
	IntervalDays float64 `json:"interval_days"` // Current spacing in days (0 during learning)
	EaseFactor   float64 `json:"ease_factor"`   // SM-2 growth factor, clamped to [1.3, 2.5]

	LearningPhase   bool `json:"learning_phase"`
	SessionPosition *int `json:"session_position,omitempty"` // Non-nil iff LearningPhase

	HardPresses       int     `json:"hard_presses"`
	SuccessfulReviews float64 `json:"successful_reviews"` // Graduation points: 0.5 per medium, 1.0 per easy

	IsSelected bool `json:"is_selected"`
	IsMastered bool `json:"is_mastered"`

	LastReviewAt *time.Time `json:"last_review_at,omitempty"`
	NextReviewAt time.Time  `json:"next_review_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewCardProgress creates the progress record synthesized on first exposure
// of a card: learning phase, zero repetitions, default ease, due at the end
// of the local day so it stays in today's queue, and placed behind all
// currently pending learning cards.
func NewCardProgress(
	userID, cardID uuid.UUID,
	direction StudyDirection,
	sessionPosition int,
	now time.Time,
) (*CardProgress, error) {
	pos := sessionPosition
	progress := &CardProgress{
		UserID:          userID,
		CardID:          cardID,
		Direction:       direction,
		Repetitions:     0,
		IntervalDays:    0,
		EaseFactor:      DefaultEaseFactor,
		LearningPhase:   true,
		SessionPosition: &pos,
		IsSelected:      true,
		NextReviewAt:    EndOfDay(now),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// EndOfDay returns 23:59:59.999 in t's location on the day of t.
// New learning cards are due at end of day rather than now+24h so they
// remain part of the session in which they were introduced.
func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 999_000_000, t.Location())
}

// Clone returns a deep copy of the progress record. The scheduling engine
// never mutates its input; every transition produces a fresh copy.
func (p *CardProgress) Clone() *CardProgress {
	clone := *p
	if p.SessionPosition != nil {
		pos := *p.SessionPosition
		clone.SessionPosition = &pos
	}
	if p.LastReviewAt != nil {
		last := *p.LastReviewAt
		clone.LastReviewAt = &last
	}
	return &clone
}

// Validate checks if the CardProgress has valid data.
func (p *CardProgress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}

	if p.CardID == uuid.Nil {
		return ErrEmptyProgressCardID
	}

	if !p.Direction.Valid() {
		return ErrInvalidDirection
	}

	if p.IntervalDays < 0 {
		return ErrInvalidIntervalDays
	}

	if p.EaseFactor < MinEaseFactor || p.EaseFactor > MaxEaseFactor {
		return ErrInvalidEaseFactor
	}

	if p.Repetitions < 0 || p.HardPresses < 0 || p.SuccessfulReviews < 0 {
		return ErrNegativeCounter
	}

	if p.LearningPhase && p.SessionPosition == nil {
		return ErrMissingSessionPos
	}

	if !p.LearningPhase && p.SessionPosition != nil {
		return ErrUnexpectedSessionPos
	}

	return nil
}
