// Package excel loads vocabulary word packs from xlsx spreadsheets into
// the card catalog. A word pack is a sheet with one row per card: term in
// column A, translation in column B, optional example sentence in column C.
package excel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ali-aktas/HocaLingo-sub003/internal/domain"
	"github.com/ali-aktas/HocaLingo-sub003/internal/platform/logger"
	"github.com/ali-aktas/HocaLingo-sub003/internal/store"
)

// ImportOptions configures a word pack import.
type ImportOptions struct {
	// SheetName selects the worksheet. Empty means the file's first sheet.
	SheetName string

	// Level is the CEFR level assigned to every card in the pack.
	Level string

	// LanguagePair identifies the pack's languages, e.g. "en-tr".
	LanguagePair string

	// SkipHeader drops the first row.
	SkipHeader bool
}

// ImportResult summarizes an import run.
type ImportResult struct {
	TotalRows int
	Created   int
	Skipped   int
	Errors    []string
}

// Importer reads word packs and saves their cards.
type Importer struct {
	cardStore store.CardStore
	logger    *slog.Logger
}

// NewImporter creates an Importer backed by the given card store.
func NewImporter(cardStore store.CardStore, logger *slog.Logger) *Importer {
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Importer{
		cardStore: cardStore,
		logger:    logger.With(slog.String("component", "word_pack_importer")),
	}
}

// Import reads the word pack at path and saves its cards in one batch.
// Rows with a missing term or translation, and terms repeated within the
// pack, are skipped and reported in the result rather than failing the
// whole import.
func (i *Importer) Import(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	log := logger.FromContextOrDefault(ctx, i.logger)

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word pack: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn("failed to close word pack file", slog.String("error", closeErr.Error()))
		}
	}()

	sheet := opts.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	result := &ImportResult{}
	seen := make(map[string]bool)
	cards := make([]*domain.Card, 0, len(rows))

	for rowIdx, row := range rows {
		if opts.SkipHeader && rowIdx == 0 {
			continue
		}
		result.TotalRows++

		term, translation, example := cellAt(row, 0), cellAt(row, 1), cellAt(row, 2)

		if term == "" || translation == "" {
			result.Skipped++
			result.Errors = append(result.Errors,
				fmt.Sprintf("row %d: term and translation are required", rowIdx+1))
			continue
		}

		key := strings.ToLower(term)
		if seen[key] {
			result.Skipped++
			result.Errors = append(result.Errors,
				fmt.Sprintf("row %d: duplicate term %q", rowIdx+1, term))
			continue
		}
		seen[key] = true

		card, err := domain.NewCard(term, translation, example, opts.Level, opts.LanguagePair)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowIdx+1, err))
			continue
		}

		cards = append(cards, card)
	}

	if len(cards) > 0 {
		if err := i.cardStore.CreateMultiple(ctx, cards); err != nil {
			return nil, fmt.Errorf("failed to save cards: %w", err)
		}
		result.Created = len(cards)
	}

	log.Info("word pack imported",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("total_rows", result.TotalRows),
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped))

	return result, nil
}

// cellAt returns the trimmed cell value or "" when the row is short.
func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
