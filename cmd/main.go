package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crosstable/pairing-system/config"
	"github.com/crosstable/pairing-system/db"
	"github.com/crosstable/pairing-system/handlers"
	"github.com/crosstable/pairing-system/repositories"
	api "github.com/crosstable/pairing-system/routes"
	"github.com/crosstable/pairing-system/services"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn, repositories.TournamentDefaults{
		ByePoints:          cfg.ByePoints,
		RequestedByePoints: cfg.RequestedByePoints,
		AcceleratedRounds:  cfg.AcceleratedRounds,
	})
	sectionRepo := repositories.NewPostgresSectionRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	stateRepo := repositories.NewPostgresRoundStateRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	logger.Info("repositories initialized")

	txRunner := services.NewSQLTxRunner(dbConn)
	sectionLocks := services.NewSectionLocker()

	standingsService := services.NewStandingsService(
		tournamentRepo,
		sectionRepo,
		participantRepo,
		matchRepo,
		teamRepo,
	)
	pairingService := services.NewPairingService(
		txRunner,
		tournamentRepo,
		sectionRepo,
		participantRepo,
		matchRepo,
		stateRepo,
		teamRepo,
		standingsService,
		sectionLocks,
		logger,
	)
	roundService := services.NewRoundService(
		txRunner,
		tournamentRepo,
		sectionRepo,
		matchRepo,
		stateRepo,
		standingsService,
		sectionLocks,
		logger,
	)
	resultService := services.NewResultService(matchRepo, stateRepo, standingsService, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, sectionRepo)
	logger.Info("services initialized")

	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	pairingHandler := handlers.NewPairingHandler(pairingService)
	roundHandler := handlers.NewRoundHandler(roundService)
	resultHandler := handlers.NewResultHandler(resultService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		tournamentHandler,
		pairingHandler,
		roundHandler,
		resultHandler,
		standingsHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
