package excel

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
	"github.com/ali-aktas/HocaLingo-sub003/internal/store"
)

// captureCardStore records the batch handed to CreateMultiple.
type captureCardStore struct {
	created []*domain.Card
}

func (c *captureCardStore) CreateMultiple(_ context.Context, cards []*domain.Card) error {
	c.created = append(c.created, cards...)
	return nil
}

func (c *captureCardStore) GetByID(context.Context, uuid.UUID) (*domain.Card, error) {
	return nil, store.ErrCardNotFound
}

func (c *captureCardStore) GetByIDs(context.Context, []uuid.UUID) ([]*domain.Card, error) {
	return nil, nil
}

func (c *captureCardStore) ListByLevel(context.Context, string, int, int) ([]*domain.Card, error) {
	return nil, nil
}

func (c *captureCardStore) WithTx(*sql.Tx) store.CardStore { return c }

// writeWordPack builds an xlsx file from rows of [term, translation, example].
func writeWordPack(t *testing.T, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, value))
		}
	}

	path := filepath.Join(t.TempDir(), "pack.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestImporter_ImportsValidRows(t *testing.T) {
	t.Parallel()

	path := writeWordPack(t, [][]string{
		{"Term", "Translation", "Example"},
		{"apple", "elma", "She ate an apple."},
		{"water", "su", ""},
	})

	cardStore := &captureCardStore{}
	importer := NewImporter(cardStore, slog.Default())

	result, err := importer.Import(context.Background(), path, ImportOptions{
		Level:        "A1",
		LanguagePair: "en-tr",
		SkipHeader:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Errors)

	require.Len(t, cardStore.created, 2)
	assert.Equal(t, "apple", cardStore.created[0].Term)
	assert.Equal(t, "elma", cardStore.created[0].Translation)
	assert.Equal(t, "She ate an apple.", cardStore.created[0].Example)
	assert.Equal(t, "A1", cardStore.created[0].Level)
	assert.Equal(t, "en-tr", cardStore.created[0].LanguagePair)
}

func TestImporter_SkipsBadAndDuplicateRows(t *testing.T) {
	t.Parallel()

	path := writeWordPack(t, [][]string{
		{"apple", "elma", ""},
		{"", "bos", ""},        // missing term
		{"water", "", ""},      // missing translation
		{"APPLE", "elma", ""},  // duplicate term, case-insensitive
		{"fire", "ates", ""},
	})

	cardStore := &captureCardStore{}
	importer := NewImporter(cardStore, slog.Default())

	result, err := importer.Import(context.Background(), path, ImportOptions{
		Level:        "A1",
		LanguagePair: "en-tr",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 3, result.Skipped)
	assert.Len(t, result.Errors, 3)
	require.Len(t, cardStore.created, 2)
	assert.Equal(t, "apple", cardStore.created[0].Term)
	assert.Equal(t, "fire", cardStore.created[1].Term)
}

func TestImporter_InvalidLevelReported(t *testing.T) {
	t.Parallel()

	path := writeWordPack(t, [][]string{
		{"apple", "elma", ""},
	})

	cardStore := &captureCardStore{}
	importer := NewImporter(cardStore, slog.Default())

	result, err := importer.Import(context.Background(), path, ImportOptions{
		Level:        "Z9",
		LanguagePair: "en-tr",
	})
	require.NoError(t, err)

	assert.Zero(t, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, cardStore.created)
}

func TestImporter_MissingFile(t *testing.T) {
	t.Parallel()

	importer := NewImporter(&captureCardStore{}, slog.Default())

	_, err := importer.Import(context.Background(), "/does/not/exist.xlsx", ImportOptions{})
	assert.Error(t, err)
}
