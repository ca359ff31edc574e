package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/platform/logger"
	"github.com/ali-aktas/HocaLingo-sub003/internal/store"
)

// PostgresDailyProgressStore implements the store.DailyProgressStore
// interface using a PostgreSQL database as the storage backend.
type PostgresDailyProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDailyProgressStore creates a new PostgreSQL implementation of
// the DailyProgressStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresDailyProgressStore(db store.DBTX, logger *slog.Logger) *PostgresDailyProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDailyProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "daily_progress_store")),
	}
}

// Ensure PostgresDailyProgressStore implements store.DailyProgressStore interface
var _ store.DailyProgressStore = (*PostgresDailyProgressStore)(nil)

// utcDay truncates ts to its UTC calendar date. Counters roll over at
// UTC midnight regardless of the learner's local timezone.
func utcDay(ts time.Time) time.Time {
	year, month, day := ts.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Increment implements store.DailyProgressStore.Increment
// It upserts the counter row so the first graduation of a day creates it.
func (s *PostgresDailyProgressStore) Increment(
	ctx context.Context,
	userID uuid.UUID,
	ts time.Time,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO daily_progress (user_id, day, graduated_count, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (user_id, day)
		DO UPDATE SET graduated_count = daily_progress.graduated_count + 1,
			updated_at = now()
		RETURNING graduated_count
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, utcDay(ts)).Scan(&count)
	if err != nil {
		log.Error("failed to increment daily progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, err
	}

	return count, nil
}

// Get implements store.DailyProgressStore.Get
// A missing row means no graduations yet, not an error.
func (s *PostgresDailyProgressStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	ts time.Time,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT graduated_count
		FROM daily_progress
		WHERE user_id = $1 AND day = $2
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, utcDay(ts)).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		log.Error("failed to get daily progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, err
	}

	return count, nil
}
