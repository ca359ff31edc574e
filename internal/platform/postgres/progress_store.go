package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
	"github.com/ali-aktas/HocaLingo-sub003/internal/platform/logger"
	"github.com/ali-aktas/HocaLingo-sub003/internal/store"
)

// PostgresCardProgressStore implements the store.CardProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardProgressStore creates a new PostgreSQL implementation of
// the CardProgressStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardProgressStore(db store.DBTX, logger *slog.Logger) *PostgresCardProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_progress_store")),
	}
}

// Ensure PostgresCardProgressStore implements store.CardProgressStore interface
var _ store.CardProgressStore = (*PostgresCardProgressStore)(nil)

const progressColumns = `user_id, card_id, direction, repetitions, interval_days,
	ease_factor, learning_phase, session_position, hard_presses,
	successful_reviews, is_selected, is_mastered, last_review_at,
	next_review_at, created_at, updated_at`

// scanProgress reads one progress row from a scanner, mapping nullable
// columns onto the record's pointer fields.
func scanProgress(scan func(dest ...any) error) (*domain.CardProgress, error) {
	var (
		progress     domain.CardProgress
		sessionPos   sql.NullInt32
		lastReviewAt sql.NullTime
	)

	err := scan(
		&progress.UserID,
		&progress.CardID,
		&progress.Direction,
		&progress.Repetitions,
		&progress.IntervalDays,
		&progress.EaseFactor,
		&progress.LearningPhase,
		&sessionPos,
		&progress.HardPresses,
		&progress.SuccessfulReviews,
		&progress.IsSelected,
		&progress.IsMastered,
		&lastReviewAt,
		&progress.NextReviewAt,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sessionPos.Valid {
		pos := int(sessionPos.Int32)
		progress.SessionPosition = &pos
	}
	if lastReviewAt.Valid {
		last := lastReviewAt.Time
		progress.LastReviewAt = &last
	}

	return &progress, nil
}

// nullSessionPosition converts the record's session position to its
// nullable column value.
func nullSessionPosition(progress *domain.CardProgress) sql.NullInt32 {
	if progress.SessionPosition == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*progress.SessionPosition), Valid: true}
}

// nullLastReviewAt converts the record's last review time to its nullable
// column value.
func nullLastReviewAt(progress *domain.CardProgress) sql.NullTime {
	if progress.LastReviewAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *progress.LastReviewAt, Valid: true}
}

// Create implements store.CardProgressStore.Create
// Returns store.ErrDuplicate if a record with the same (user, card,
// direction) key already exists, and store.ErrInvalidEntity if the record
// fails domain validation.
func (s *PostgresCardProgressStore) Create(ctx context.Context, progress *domain.CardProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", progress.CardID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO card_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		progress.UserID,
		progress.CardID,
		progress.Direction,
		progress.Repetitions,
		progress.IntervalDays,
		progress.EaseFactor,
		progress.LearningPhase,
		nullSessionPosition(progress),
		progress.HardPresses,
		progress.SuccessfulReviews,
		progress.IsSelected,
		progress.IsMastered,
		nullLastReviewAt(progress),
		progress.NextReviewAt,
		progress.CreatedAt,
		progress.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced user or card does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to create progress record",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("card_id", progress.CardID.String()))
		return err
	}

	return nil
}

// Get implements store.CardProgressStore.Get
// Returns store.ErrProgressNotFound if the record does not exist.
func (s *PostgresCardProgressStore) Get(
	ctx context.Context,
	userID, cardID uuid.UUID,
	direction domain.StudyDirection,
) (*domain.CardProgress, error) {
	return s.get(ctx, userID, cardID, direction, false)
}

// GetForUpdate implements store.CardProgressStore.GetForUpdate
// It acquires a row-level lock, so it must run inside a transaction.
// Returns store.ErrProgressNotFound if the record does not exist.
func (s *PostgresCardProgressStore) GetForUpdate(
	ctx context.Context,
	userID, cardID uuid.UUID,
	direction domain.StudyDirection,
) (*domain.CardProgress, error) {
	return s.get(ctx, userID, cardID, direction, true)
}

func (s *PostgresCardProgressStore) get(
	ctx context.Context,
	userID, cardID uuid.UUID,
	direction domain.StudyDirection,
	forUpdate bool,
) (*domain.CardProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + progressColumns + `
		FROM card_progress
		WHERE user_id = $1 AND card_id = $2 AND direction = $3
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	row := s.db.QueryRowContext(ctx, query, userID, cardID, direction)
	progress, err := scanProgress(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get progress record",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, err
	}

	return progress, nil
}

// Update implements store.CardProgressStore.Update
// Returns store.ErrProgressNotFound if the record does not exist, and
// store.ErrInvalidEntity if the record fails domain validation.
func (s *PostgresCardProgressStore) Update(ctx context.Context, progress *domain.CardProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", progress.CardID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE card_progress
		SET repetitions = $4,
			interval_days = $5,
			ease_factor = $6,
			learning_phase = $7,
			session_position = $8,
			hard_presses = $9,
			successful_reviews = $10,
			is_selected = $11,
			is_mastered = $12,
			last_review_at = $13,
			next_review_at = $14,
			updated_at = $15
		WHERE user_id = $1 AND card_id = $2 AND direction = $3
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		progress.UserID,
		progress.CardID,
		progress.Direction,
		progress.Repetitions,
		progress.IntervalDays,
		progress.EaseFactor,
		progress.LearningPhase,
		nullSessionPosition(progress),
		progress.HardPresses,
		progress.SuccessfulReviews,
		progress.IsSelected,
		progress.IsMastered,
		nullLastReviewAt(progress),
		progress.NextReviewAt,
		progress.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update progress record",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("card_id", progress.CardID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return store.ErrProgressNotFound
	}

	return nil
}

// FindLearning implements store.CardProgressStore.FindLearning
func (s *PostgresCardProgressStore) FindLearning(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.CardProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + progressColumns + `
		FROM card_progress
		WHERE user_id = $1
			AND is_selected = TRUE
			AND learning_phase = TRUE
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query learning records",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer closeRows(rows, log)

	return collectProgress(rows)
}

// FindDue implements store.CardProgressStore.FindDue
func (s *PostgresCardProgressStore) FindDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.CardProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + progressColumns + `
		FROM card_progress
		WHERE user_id = $1
			AND is_selected = TRUE
			AND learning_phase = FALSE
			AND next_review_at <= $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		log.Error("failed to query due records",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer closeRows(rows, log)

	return collectProgress(rows)
}

// MaxSessionPosition implements store.CardProgressStore.MaxSessionPosition
func (s *PostgresCardProgressStore) MaxSessionPosition(
	ctx context.Context,
	userID uuid.UUID,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COALESCE(MAX(session_position), 0)
		FROM card_progress
		WHERE user_id = $1 AND learning_phase = TRUE
	`

	var max int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&max); err != nil {
		log.Error("failed to query max session position",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, err
	}

	return max, nil
}

// SetSelected implements store.CardProgressStore.SetSelected
// Returns store.ErrProgressNotFound if the user has no progress records
// for the card in any direction.
func (s *PostgresCardProgressStore) SetSelected(
	ctx context.Context,
	userID, cardID uuid.UUID,
	selected bool,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE card_progress
		SET is_selected = $3, updated_at = now()
		WHERE user_id = $1 AND card_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, userID, cardID, selected)
	if err != nil {
		log.Error("failed to update selection",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return store.ErrProgressNotFound
	}

	log.Info("card selection updated",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Bool("selected", selected))
	return nil
}

// RecomputeMastery implements store.CardProgressStore.RecomputeMastery
// A single statement flips the flag both ways so records that regressed
// below the thresholds lose mastery on the same sweep.
func (s *PostgresCardProgressStore) RecomputeMastery(
	ctx context.Context,
	minIntervalDays float64,
	minRepetitions int,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE card_progress
		SET is_mastered = (
				learning_phase = FALSE
				AND interval_days >= $1
				AND repetitions >= $2
			),
			updated_at = now()
		WHERE is_mastered <> (
			learning_phase = FALSE
			AND interval_days >= $1
			AND repetitions >= $2
		)
	`

	result, err := s.db.ExecContext(ctx, query, minIntervalDays, minRepetitions)
	if err != nil {
		log.Error("failed to recompute mastery",
			slog.String("error", err.Error()))
		return 0, err
	}

	changed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return changed, nil
}

// WithTx implements store.CardProgressStore.WithTx
func (s *PostgresCardProgressStore) WithTx(tx *sql.Tx) store.CardProgressStore {
	return &PostgresCardProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

// collectProgress drains a progress result set into a slice.
func collectProgress(rows *sql.Rows) ([]*domain.CardProgress, error) {
	records := []*domain.CardProgress{}
	for rows.Next() {
		progress, err := scanProgress(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, progress)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
