package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardTermEmpty is returned when a card's term is empty.
	ErrCardTermEmpty = errors.New("card term cannot be empty")

	// ErrCardTranslationEmpty is returned when a card's translation is empty.
	ErrCardTranslationEmpty = errors.New("card translation cannot be empty")

	// ErrCardLevelInvalid is returned when a card's level is not a known CEFR level.
	ErrCardLevelInvalid = errors.New("card level must be one of A1, A2, B1, B2, C1, C2")
)

// Card represents a single vocabulary entry. Cards are shared content:
// every user studies the same card pool, but each user's scheduling state
// lives in their own CardProgress records.
type Card struct {
	ID           uuid.UUID `json:"id"`
	Term         string    `json:"term"`        // Word in the language being learned
	Translation  string    `json:"translation"` // Word in the user's language
	Example      string    `json:"example,omitempty"`
	Level        string    `json:"level"` // CEFR level (A1..C2)
	LanguagePair string    `json:"language_pair"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// cefrLevels holds the accepted values for Card.Level.
var cefrLevels = map[string]bool{
	"A1": true, "A2": true,
	"B1": true, "B2": true,
	"C1": true, "C2": true,
}

// NewCard creates a new vocabulary card.
// It generates a new UUID for the card ID and sets the timestamps.
// Returns an error if validation fails.
func NewCard(term, translation, example, level, languagePair string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:           uuid.New(),
		Term:         term,
		Translation:  translation,
		Example:      example,
		Level:        level,
		LanguagePair: languagePair,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.Term == "" {
		return ErrCardTermEmpty
	}

	if c.Translation == "" {
		return ErrCardTranslationEmpty
	}

	if !cefrLevels[c.Level] {
		return ErrCardLevelInvalid
	}

	return nil
}
