package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"golang.org/x/crypto/bcrypt"

	"github.com/ali-aktas/HocaLingo-sub003/internal/config"
	"github.com/ali-aktas/HocaLingo-sub003/internal/domain/srs"
	"github.com/ali-aktas/HocaLingo-sub003/internal/events"
	"github.com/ali-aktas/HocaLingo-sub003/internal/platform/postgres"
	"github.com/ali-aktas/HocaLingo-sub003/internal/service/auth"
	"github.com/ali-aktas/HocaLingo-sub003/internal/service/study"
	"github.com/ali-aktas/HocaLingo-sub003/internal/store"
	"github.com/ali-aktas/HocaLingo-sub003/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore     store.UserStore
	cardStore     store.CardStore
	progressStore store.CardProgressStore
	dailyStore    store.DailyProgressStore
	taskStore     task.TaskStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	srsService       srs.Service
	studyService     study.StudyService

	// Event system
	eventEmitter events.EventEmitter

	// Background work
	taskRunner *task.TaskRunner
	scheduler  *gocron.Scheduler
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger,
// and database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)
	app.cardStore = postgres.NewPostgresCardStore(db, logger)
	app.progressStore = postgres.NewPostgresCardProgressStore(db, logger)
	app.dailyStore = postgres.NewPostgresDailyProgressStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	// Scheduling engine
	app.srsService = srs.NewDefaultService()

	// Event system: graduations feed the daily goal counter.
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(study.NewGoalTracker(app.dailyStore, logger))
	app.eventEmitter = emitter

	app.studyService = study.NewStudyService(
		db,
		app.userStore,
		app.cardStore,
		app.progressStore,
		app.dailyStore,
		app.srsService,
		app.eventEmitter,
		cfg.Study.QueueLimit,
		logger,
	)

	if err := app.setupTaskRunner(); err != nil {
		return nil, fmt.Errorf("failed to set up task runner: %w", err)
	}

	if err := app.setupScheduler(); err != nil {
		return nil, fmt.Errorf("failed to set up scheduler: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupTaskRunner initializes and starts the background task processor,
// registering factories so persisted tasks survive restarts.
func (app *application) setupTaskRunner() error {
	runner := task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		QueueSize:    app.config.Task.QueueSize,
		WorkerCount:  app.config.Task.WorkerCount,
		StuckTaskAge: time.Duration(app.config.Task.StuckTaskAgeMinutes) * time.Minute,
	}, app.logger)

	runner.RegisterFactory(
		task.TaskTypeMasterySweep,
		task.NewMasterySweepFactory(app.progressStore, app.logger),
	)

	if err := runner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	app.taskRunner = runner
	return nil
}

// setupScheduler starts the nightly mastery sweep on the configured
// schedule. The sweep itself runs through the task runner so it is
// persisted and recovered like any other background task.
func (app *application) setupScheduler() error {
	scheduler := gocron.NewScheduler(time.UTC)

	_, err := scheduler.Every(1).Day().At(app.config.Task.SweepTime).Do(func() {
		params := srs.NewDefaultParams()
		sweep, err := task.NewMasterySweepTask(
			app.progressStore,
			params.MasteryIntervalDays,
			params.MasteryRepetitions,
			app.logger,
		)
		if err != nil {
			app.logger.Error("failed to create mastery sweep task", "error", err)
			return
		}

		if err := app.taskRunner.Submit(context.Background(), sweep); err != nil {
			app.logger.Error("failed to submit mastery sweep task",
				"task_id", sweep.ID(),
				"error", err)
			return
		}

		app.logger.Info("mastery sweep scheduled", "task_id", sweep.ID())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule mastery sweep: %w", err)
	}

	scheduler.StartAsync()
	app.scheduler = scheduler

	app.logger.Info("nightly mastery sweep scheduled", "at", app.config.Task.SweepTime)
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
