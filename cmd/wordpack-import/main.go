// Package main implements the word pack import tool. It reads an Excel
// word pack and loads its vocabulary cards into the database, so content
// teams can ship new levels without touching the API.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ali-aktas/HocaLingo-sub003/internal/config"
	"github.com/ali-aktas/HocaLingo-sub003/internal/platform/excel"
	"github.com/ali-aktas/HocaLingo-sub003/internal/platform/logger"
	"github.com/ali-aktas/HocaLingo-sub003/internal/platform/postgres"
)

func main() {
	var (
		file         = flag.String("file", "", "path to the word pack .xlsx file (required)")
		sheet        = flag.String("sheet", "", "worksheet name (default: first sheet)")
		level        = flag.String("level", "", "CEFR level for the pack, e.g. A1 (required)")
		languagePair = flag.String("pair", "", "language pair for the pack, e.g. en-tr (required)")
		skipHeader   = flag.Bool("skip-header", true, "skip the first row")
	)
	flag.Parse()

	if *file == "" || *level == "" || *languagePair == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		appLogger.Error("failed to open database connection", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database connection", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		appLogger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	importer := excel.NewImporter(postgres.NewPostgresCardStore(db, appLogger), appLogger)

	result, err := importer.Import(ctx, *file, excel.ImportOptions{
		SheetName:    *sheet,
		Level:        *level,
		LanguagePair: *languagePair,
		SkipHeader:   *skipHeader,
	})
	if err != nil {
		appLogger.Error("import failed", "file", *file, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Imported %s: %d rows read, %d cards created, %d skipped\n",
		*file, result.TotalRows, result.Created, result.Skipped)
	for _, msg := range result.Errors {
		fmt.Printf("  skipped: %s\n", msg)
	}

	if result.Created == 0 {
		os.Exit(1)
	}
}
