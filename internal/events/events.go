// Package events provides a lightweight in-process event bus used to
// decouple the study service from the components reacting to scheduling
// milestones, such as the daily goal counter.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
)

// Event type identifiers
const (
	// EventCardGraduated is emitted when a card leaves the learning
	// phase and enters the review phase.
	EventCardGraduated = "card_graduated"

	// EventCardMastered is emitted when an answer pushes a card past the
	// mastery thresholds.
	EventCardMastered = "card_mastered"
)

// CardGraduatedPayload carries the details of a graduation.
type CardGraduatedPayload struct {
	UserID      uuid.UUID             `json:"user_id"`
	CardID      uuid.UUID             `json:"card_id"`
	Direction   domain.StudyDirection `json:"direction"`
	GraduatedAt time.Time             `json:"graduated_at"`
}

// CardMasteredPayload carries the details of a mastery transition.
type CardMasteredPayload struct {
	UserID     uuid.UUID             `json:"user_id"`
	CardID     uuid.UUID             `json:"card_id"`
	Direction  domain.StudyDirection `json:"direction"`
	MasteredAt time.Time             `json:"mastered_at"`
}

// StudyEvent represents a scheduling milestone published by the study
// service. The payload is serialized JSON so handlers stay decoupled
// from the emitting package's types.
type StudyEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what happened, e.g. EventCardGraduated
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *StudyEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewStudyEvent creates a new StudyEvent with the specified type and payload.
func NewStudyEvent(eventType string, payload interface{}) (*StudyEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &StudyEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *StudyEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *StudyEvent) error
}
