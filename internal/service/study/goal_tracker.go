package study

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ali-aktas/HocaLingo-sub003/internal/events"
	"github.com/ali-aktas/HocaLingo-sub003/internal/platform/logger"
	"github.com/ali-aktas/HocaLingo-sub003/internal/store"
)

// GoalTracker listens for graduation events and advances the per-day
// counter behind the daily goal. It ignores every other event type.
type GoalTracker struct {
	dailyStore store.DailyProgressStore
	logger     *slog.Logger
}

// NewGoalTracker creates a GoalTracker backed by the given store.
func NewGoalTracker(dailyStore store.DailyProgressStore, logger *slog.Logger) *GoalTracker {
	if dailyStore == nil {
		panic("dailyStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &GoalTracker{
		dailyStore: dailyStore,
		logger:     logger.With(slog.String("component", "goal_tracker")),
	}
}

// Ensure GoalTracker implements events.EventHandler interface
var _ events.EventHandler = (*GoalTracker)(nil)

// HandleEvent implements events.EventHandler.
func (t *GoalTracker) HandleEvent(ctx context.Context, event *events.StudyEvent) error {
	if event.Type != events.EventCardGraduated {
		return nil
	}

	log := logger.FromContextOrDefault(ctx, t.logger)

	var payload events.CardGraduatedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal graduation payload: %w", err)
	}

	count, err := t.dailyStore.Increment(ctx, payload.UserID, payload.GraduatedAt)
	if err != nil {
		return fmt.Errorf("failed to increment daily progress: %w", err)
	}

	log.Debug("daily progress advanced",
		slog.String("user_id", payload.UserID.String()),
		slog.String("card_id", payload.CardID.String()),
		slog.Int("graduated_today", count))
	return nil
}
