package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
	"github.com/ali-aktas/HocaLingo-sub003/internal/platform/logger"
	"github.com/ali-aktas/HocaLingo-sub003/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

const cardColumns = "id, term, translation, example, level, language_pair, created_at, updated_at"

// scanCard reads one card row from a scanner.
func scanCard(scan func(dest ...any) error) (*domain.Card, error) {
	var card domain.Card
	err := scan(
		&card.ID,
		&card.Term,
		&card.Translation,
		&card.Example,
		&card.Level,
		&card.LanguagePair,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// CreateMultiple implements store.CardStore.CreateMultiple
// It validates and saves a batch of cards. Run inside a transaction
// (via WithTx) when all-or-nothing semantics are required.
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		_, err := s.db.ExecContext(
			ctx,
			query,
			card.ID,
			card.Term,
			card.Translation,
			card.Example,
			card.Level,
			card.LanguagePair,
			card.CreatedAt,
			card.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: card %s", store.ErrDuplicate, card.ID)
			}
			log.Error("failed to create card",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return err
		}
	}

	log.Info("cards created successfully", slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.GetByID
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	row := s.db.QueryRowContext(ctx, query, id)
	card, err := scanCard(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, err
	}

	return card, nil
}

// GetByIDs implements store.CardStore.GetByIDs
func (s *PostgresCardStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return []*domain.Card{}, nil
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ANY($1)`

	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		log.Error("failed to query cards by IDs",
			slog.String("error", err.Error()),
			slog.Int("count", len(ids)))
		return nil, err
	}
	defer closeRows(rows, log)

	return collectCards(rows)
}

// ListByLevel implements store.CardStore.ListByLevel
func (s *PostgresCardStore) ListByLevel(
	ctx context.Context,
	level string,
	limit, offset int,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE level = $1
		ORDER BY term ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, level, limit, offset)
	if err != nil {
		log.Error("failed to query cards by level",
			slog.String("error", err.Error()),
			slog.String("level", level))
		return nil, err
	}
	defer closeRows(rows, log)

	return collectCards(rows)
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// collectCards drains a card result set into a slice.
func collectCards(rows *sql.Rows) ([]*domain.Card, error) {
	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows.Scan)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

// closeRows closes a result set, logging a close failure instead of
// masking the caller's error.
func closeRows(rows *sql.Rows, log *slog.Logger) {
	if err := rows.Close(); err != nil {
		log.Error("failed to close rows", slog.String("error", err.Error()))
	}
}
