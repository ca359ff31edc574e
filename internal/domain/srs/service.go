package srs

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
)

// Common errors
var (
	ErrNilProgress = errors.New("card progress cannot be nil")
)

// Service defines the interface for scheduling engine operations.
// Implementations are stateless apart from their parameter set and safe for
// concurrent use.
type Service interface {
	// NextState computes the record that follows progress after the given
	// quality response, taken at the single clock reading now. The boolean
	// result reports a graduation from the learning phase into the review
	// phase; graduations are the only transitions that count toward the
	// user's daily goal.
	//
	// An invalid quality value returns an unchanged copy of the input and
	// false, never an error.
	NextState(
		progress *domain.CardProgress,
		quality domain.ReviewQuality,
		session SessionContext,
		now time.Time,
	) (*domain.CardProgress, bool, error)

	// NewProgress synthesizes the record for a card's first exposure,
	// placed behind all currently pending learning cards.
	NewProgress(
		userID, cardID uuid.UUID,
		direction domain.StudyDirection,
		session SessionContext,
		now time.Time,
	) (*domain.CardProgress, error)

	// Priority returns the queue-ordering key for a record.
	Priority(progress *domain.CardProgress, now time.Time) int
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// NextState implements Service.NextState.
func (s *defaultService) NextState(
	progress *domain.CardProgress,
	quality domain.ReviewQuality,
	session SessionContext,
	now time.Time,
) (*domain.CardProgress, bool, error) {
	if progress == nil {
		return nil, false, ErrNilProgress
	}

	next, graduated := nextState(progress, quality, session, now, s.params)
	return next, graduated, nil
}

// NewProgress implements Service.NewProgress.
func (s *defaultService) NewProgress(
	userID, cardID uuid.UUID,
	direction domain.StudyDirection,
	session SessionContext,
	now time.Time,
) (*domain.CardProgress, error) {
	return domain.NewCardProgress(userID, cardID, direction, session.MaxSessionPosition+1, now)
}

// Priority implements Service.Priority.
func (s *defaultService) Priority(progress *domain.CardProgress, now time.Time) int {
	return Priority(progress, now)
}
