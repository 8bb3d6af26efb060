package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"gitea.jw6.us/james/campusdesk/internal/api"
	"gitea.jw6.us/james/campusdesk/internal/auth"
	"gitea.jw6.us/james/campusdesk/internal/config"
	"gitea.jw6.us/james/campusdesk/internal/http"
	"gitea.jw6.us/james/campusdesk/internal/submit"
	"gitea.jw6.us/james/campusdesk/internal/ui"
)

func main() {
	log.Println("Starting campusdesk console...")
	if _, err := maxprocs.Set(maxprocs.Logger(log.Printf)); err != nil {
		log.Fatalf("failed to set GOMAXPROCS: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiClient, err := api.New(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout}, auth.ContextCredentials{})
	if err != nil {
		log.Fatalf("failed to create backend client: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(cfg)
	if err != nil {
		log.Fatalf("failed to initialize sessions: %v", err)
	}
	authService := auth.NewService(sessionManager, apiClient)

	uiHandler := ui.NewHandler(cfg, authService, apiClient, submit.New(apiClient))
	r := httpserver.NewRouter(cfg, authService, uiHandler)

	srv := &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		// Uploads are relayed to the backend before the response is written.
		WriteTimeout: cfg.API.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s, backend %s", cfg.ListenAddr, cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
