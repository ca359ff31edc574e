package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
	"github.com/ali-aktas/HocaLingo-sub003/internal/service/study"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// SubmitAnswerRequest represents the request body for answering a card.
type SubmitAnswerRequest struct {
	Direction string `json:"direction" validate:"required,oneof=term_to_translation translation_to_term"`
	Quality   string `json:"quality"   validate:"required,oneof=hard medium easy"`
}

// SelectCardsRequest represents the request body for adding cards to the
// user's study set.
type SelectCardsRequest struct {
	CardIDs []uuid.UUID `json:"card_ids" validate:"required,min=1,dive,required"`
}

// CardResponse represents the response data for a vocabulary card.
type CardResponse struct {
	ID           string `json:"id"`
	Term         string `json:"term"`
	Translation  string `json:"translation"`
	Example      string `json:"example,omitempty"`
	Level        string `json:"level"`
	LanguagePair string `json:"language_pair"`
}

// ProgressResponse represents the scheduling state of one card direction.
type ProgressResponse struct {
	CardID            string     `json:"card_id"`
	Direction         string     `json:"direction"`
	LearningPhase     bool       `json:"learning_phase"`
	SessionPosition   *int       `json:"session_position,omitempty"`
	SuccessfulReviews float64    `json:"successful_reviews"`
	HardPresses       int        `json:"hard_presses"`
	EaseFactor        float64    `json:"ease_factor"`
	IntervalDays      float64    `json:"interval_days"`
	Repetitions       int        `json:"repetitions"`
	IsMastered        bool       `json:"is_mastered"`
	LastReviewAt      *time.Time `json:"last_review_at,omitempty"`
	NextReviewAt      time.Time  `json:"next_review_at"`
}

// QueueEntryResponse pairs a card with its scheduling state in the queue.
type QueueEntryResponse struct {
	Card     CardResponse     `json:"card"`
	Progress ProgressResponse `json:"progress"`
}

// QueueResponse represents the response for the study queue endpoint.
type QueueResponse struct {
	Entries []QueueEntryResponse `json:"entries"`
	Count   int                  `json:"count"`
}

// AnswerResponse represents the response for the answer submission endpoint.
type AnswerResponse struct {
	Progress  ProgressResponse `json:"progress"`
	Graduated bool             `json:"graduated"`
}

// DailyProgressResponse represents the response for the daily progress endpoint.
type DailyProgressResponse struct {
	Date           string `json:"date"`
	GraduatedToday int    `json:"graduated_today"`
	DailyGoal      int    `json:"daily_goal"`
	GoalReached    bool   `json:"goal_reached"`
}

// cardToResponse converts a domain card to its API representation.
func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:           card.ID.String(),
		Term:         card.Term,
		Translation:  card.Translation,
		Example:      card.Example,
		Level:        card.Level,
		LanguagePair: card.LanguagePair,
	}
}

// progressToResponse converts a progress record to its API representation.
func progressToResponse(p *domain.CardProgress) ProgressResponse {
	return ProgressResponse{
		CardID:            p.CardID.String(),
		Direction:         string(p.Direction),
		LearningPhase:     p.LearningPhase,
		SessionPosition:   p.SessionPosition,
		SuccessfulReviews: p.SuccessfulReviews,
		HardPresses:       p.HardPresses,
		EaseFactor:        p.EaseFactor,
		IntervalDays:      p.IntervalDays,
		Repetitions:       p.Repetitions,
		IsMastered:        p.IsMastered,
		LastReviewAt:      p.LastReviewAt,
		NextReviewAt:      p.NextReviewAt,
	}
}

// queueToResponse converts queue entries to their API representation.
func queueToResponse(entries []study.QueueEntry) QueueResponse {
	out := make([]QueueEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, QueueEntryResponse{
			Card:     cardToResponse(e.Card),
			Progress: progressToResponse(e.Progress),
		})
	}
	return QueueResponse{Entries: out, Count: len(out)}
}
