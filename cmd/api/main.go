package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/slidespace/backend/internal/adapters/http"
	"github.com/slidespace/backend/internal/adapters/http/session"
	"github.com/slidespace/backend/internal/bootstrap"
	"github.com/slidespace/backend/internal/config"
	"github.com/slidespace/backend/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverMetrics := metrics.NewHTTPServerMetrics("slidespace-api")
	app, err := bootstrap.New(ctx, cfg, "slidespace-api", serverMetrics)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	sessions, err := session.NewManager(cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour, cfg.CookieSecure)
	if err != nil {
		log.Fatalf("session manager error: %v", err)
	}

	router := httpadapter.NewRouter(
		cfg,
		sessions,
		serverMetrics,
		app.DocumentUC,
		app.TitleUC,
		app.DeckUC,
		app.ExportUC,
		app.WorkspaceUC,
		app.AuthUC,
		app.ReportUC,
	)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("api listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
}
