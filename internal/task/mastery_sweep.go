package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/store"
)

// masterySweepPayload is the persisted form of a mastery sweep task.
type masterySweepPayload struct {
	MinIntervalDays float64   `json:"min_interval_days"`
	MinRepetitions  int       `json:"min_repetitions"`
	RequestedAt     time.Time `json:"requested_at"`
}

// MasterySweepTask refreshes the mastery flag of every progress record
// against the configured thresholds. It runs nightly and after threshold
// changes.
type MasterySweepTask struct {
	id              uuid.UUID
	progressStore   store.CardProgressStore
	minIntervalDays float64
	minRepetitions  int
	requestedAt     time.Time
	logger          *slog.Logger
}

// NewMasterySweepTask creates a mastery sweep with the given thresholds.
func NewMasterySweepTask(
	progressStore store.CardProgressStore,
	minIntervalDays float64,
	minRepetitions int,
	logger *slog.Logger,
) (*MasterySweepTask, error) {
	if progressStore == nil {
		return nil, fmt.Errorf("progress store cannot be nil")
	}

	if minIntervalDays <= 0 || minRepetitions <= 0 {
		return nil, fmt.Errorf("mastery thresholds must be positive")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &MasterySweepTask{
		id:              uuid.New(),
		progressStore:   progressStore,
		minIntervalDays: minIntervalDays,
		minRepetitions:  minRepetitions,
		requestedAt:     time.Now().UTC(),
		logger:          logger.With(slog.String("component", "mastery_sweep_task")),
	}, nil
}

// NewMasterySweepFactory returns a Factory that rebuilds sweep tasks
// recovered from the database.
func NewMasterySweepFactory(
	progressStore store.CardProgressStore,
	logger *slog.Logger,
) Factory {
	return func(id uuid.UUID, payload []byte) (Task, error) {
		var p masterySweepPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mastery sweep payload: %w", err)
		}

		t, err := NewMasterySweepTask(progressStore, p.MinIntervalDays, p.MinRepetitions, logger)
		if err != nil {
			return nil, err
		}
		t.id = id
		t.requestedAt = p.RequestedAt
		return t, nil
	}
}

// Ensure MasterySweepTask implements the Task interface
var _ Task = (*MasterySweepTask)(nil)

// ID implements Task.ID
func (t *MasterySweepTask) ID() uuid.UUID {
	return t.id
}

// Type implements Task.Type
func (t *MasterySweepTask) Type() string {
	return TaskTypeMasterySweep
}

// Payload implements Task.Payload
func (t *MasterySweepTask) Payload() []byte {
	payload, err := json.Marshal(masterySweepPayload{
		MinIntervalDays: t.minIntervalDays,
		MinRepetitions:  t.minRepetitions,
		RequestedAt:     t.requestedAt,
	})
	if err != nil {
		// Marshaling a struct of primitives cannot fail.
		return []byte("{}")
	}
	return payload
}

// Status implements Task.Status
func (t *MasterySweepTask) Status() TaskStatus {
	return TaskStatusPending
}

// Execute implements Task.Execute
func (t *MasterySweepTask) Execute(ctx context.Context) error {
	changed, err := t.progressStore.RecomputeMastery(ctx, t.minIntervalDays, t.minRepetitions)
	if err != nil {
		return fmt.Errorf("failed to recompute mastery: %w", err)
	}

	t.logger.Info("mastery sweep completed",
		slog.String("task_id", t.id.String()),
		slog.Int64("records_changed", changed))
	return nil
}
