package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
)

// CardStore defines the interface for vocabulary card persistence.
type CardStore interface {
	// CreateMultiple saves a batch of cards. The operation is atomic when
	// executed inside a transaction (see WithTx).
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetByIDs retrieves the cards with the given IDs. Missing IDs are
	// silently skipped; the result preserves no particular order.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Card, error)

	// ListByLevel retrieves cards of a CEFR level, ordered by term,
	// with limit/offset pagination.
	ListByLevel(ctx context.Context, level string, limit, offset int) ([]*domain.Card, error)

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) CardStore
}
