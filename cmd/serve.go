package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"mediscan/internal/config"
	"mediscan/internal/handlers"
	"mediscan/internal/llm"
	"mediscan/internal/logger"
	"mediscan/internal/repository"
	"mediscan/internal/repository/db"
	"mediscan/internal/server"
	"mediscan/internal/service"
	"mediscan/internal/speech"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	writeSlack      = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to init sqlite: %w", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	creds, err := openCredentials(cfg)
	if err != nil {
		return err
	}

	gen, err := llm.NewGemini(ctx, llm.GeminiOptions{
		APIKey:          cfg.Gemini.APIKey,
		Model:           cfg.Gemini.Model,
		BaseURL:         cfg.Gemini.BaseURL,
		Temperature:     cfg.Gemini.Temperature,
		TopP:            cfg.Gemini.TopP,
		TopK:            cfg.Gemini.TopK,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
	})
	if err != nil {
		return err
	}

	repos := repository.NewRepository(sqlDB, creds)
	services := service.NewService(repos, service.Collaborators{
		Generator: gen,
		Speech:    speech.NewGoogleTTS(cfg.Speech.BaseURL, &http.Client{Timeout: cfg.Speech.Timeout}),
	}, service.Options{
		SigningKey:      cfg.Auth.SigningKey,
		SessionTTL:      cfg.Auth.SessionTTL,
		GenerateTimeout: cfg.Gemini.Timeout,
		SpeechTimeout:   cfg.Speech.Timeout,
		MaxUploadBytes:  cfg.Upload.MaxBytes,
	}, log)

	apiHandler := handlers.NewHandler(services, log,
		handlers.WithAllowedOrigins(cfg.CORS.AllowedOrigins...),
		handlers.WithMaxUploadBytes(cfg.Upload.MaxBytes),
	)

	// analyze = generate + translate; speech has its own budget.
	srv := &server.Server{WriteTimeout: 2*cfg.Gemini.Timeout + cfg.Speech.Timeout + writeSlack}

	log.Infow("starting server", "port", cfg.Port, "model", gen.Model(), "db", cfg.DB.Path)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Run(cfg.Port, apiHandler.InitRoutes()); err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		services.Janitor.Run(gctx, cfg.Janitor.Interval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, log)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Infow("server stopped")
	return nil
}

func openCredentials(cfg *config.Config) (*repository.CredentialsCSV, error) {
	digest, err := repository.NewDigest(cfg.Credentials.Digest)
	if err != nil {
		return nil, err
	}
	creds := repository.NewCredentialsCSV(afero.NewOsFs(), cfg.Credentials.Path, digest)
	if err := creds.EnsureInitialized(); err != nil {
		return nil, fmt.Errorf("init credential store: %w", err)
	}
	return creds, nil
}

// shutdown lets in-flight requests complete.
func shutdown(srv *server.Server, log *logger.Logger) error {
	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
