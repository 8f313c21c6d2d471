package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slidespace/backend/internal/config"
	"github.com/slidespace/backend/internal/core/ports"
	"github.com/slidespace/backend/internal/core/usecase"
	"github.com/slidespace/backend/internal/infrastructure/queue/nats"
	"github.com/slidespace/backend/internal/infrastructure/repository/postgres"
	"github.com/slidespace/backend/internal/infrastructure/slideml"
	"github.com/slidespace/backend/internal/infrastructure/storage/localfs"
	"github.com/slidespace/backend/internal/observability/logging"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue ports.EventQueue

	DocumentUC  ports.DocumentService
	TitleUC     ports.TitleService
	DeckUC      ports.DeckService
	ExportUC    ports.ExportService
	WorkspaceUC ports.WorkspaceService
	AuthUC      ports.AuthService
	ReportUC    ports.ReportService
	Cleaner     ports.WorkspaceCleaner

	closeFn func()
}

// New wires the application graph. mlRecorder receives the outcome of every
// remote ML call; the worker passes nil since it never calls the ML service.
func New(ctx context.Context, cfg config.Config, service string, mlRecorder slideml.CallRecorder) (*App, error) {
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	documents := postgres.NewDocumentRepository(db)
	workflows := postgres.NewWorkflowRepository(db)
	titles := postgres.NewTitleRepository(db)
	decks := postgres.NewSlideDeckRepository(db)
	artifacts := postgres.NewArtifactRepository(db)
	users := postgres.NewUserRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init event queue: %w", err)
	}

	var locator slideml.ServiceLocator
	if cfg.MLGistID != "" {
		locator = slideml.NewGistLocator(cfg.MLGistID, time.Duration(cfg.MLLocatorCacheTTLSec)*time.Second)
	} else {
		locator = slideml.StaticLocator{URL: cfg.MLBaseURL}
	}
	ml := slideml.New(locator, slideml.Options{
		ExtractTimeout: time.Duration(cfg.MLExtractTimeoutSec) * time.Second,
		SlidesTimeout:  time.Duration(cfg.MLSlidesTimeoutSec) * time.Second,
		PPTXTimeout:    time.Duration(cfg.MLPPTXTimeoutSec) * time.Second,
		Service:        service,
		Recorder:       mlRecorder,
	})

	documentUC := usecase.NewDocumentUsecase(documents, workflows, storage, logger)
	titleUC := usecase.NewTitleUsecase(documents, workflows, titles, storage, ml, logger)
	deckUC := usecase.NewDeckUsecase(documents, workflows, titles, decks, storage, ml, logger)
	exportUC := usecase.NewExportUsecase(documents, workflows, artifacts, deckUC, storage, ml, logger)
	workspaceUC := usecase.NewWorkspaceUsecase(documents, workflows, queue, logger)
	authUC := usecase.NewAuthUsecase(users, logger)
	reportUC := usecase.NewReportUsecase(users, cfg.AdminReportMaxRows)
	cleaner := usecase.NewCleaner(titles, decks, storage, logger)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue: queue,

		DocumentUC:  documentUC,
		TitleUC:     titleUC,
		DeckUC:      deckUC,
		ExportUC:    exportUC,
		WorkspaceUC: workspaceUC,
		AuthUC:      authUC,
		ReportUC:    reportUC,
		Cleaner:     cleaner,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
