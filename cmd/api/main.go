package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/chayanitb/task-tracker-api/internal/auth"
	"github.com/chayanitb/task-tracker-api/internal/config"
	"github.com/chayanitb/task-tracker-api/internal/handler"
	"github.com/chayanitb/task-tracker-api/internal/mailer"
	"github.com/chayanitb/task-tracker-api/internal/middleware"
	"github.com/chayanitb/task-tracker-api/internal/repository"
	"github.com/chayanitb/task-tracker-api/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	logger.Info().Msg("connected to MongoDB")

	db := client.Database(cfg.Mongo.Database)

	userRepo := repository.NewUserMongoRepository(ctx, &logger, db)
	projectRepo := repository.NewProjectMongoRepository(ctx, &logger, db)
	taskRepo := repository.NewTaskMongoRepository(ctx, &logger, db)

	tokens := auth.NewTokenIssuer(cfg.Token.Secret, cfg.Token.ExpiresIn)
	otpMailer := mailer.NewMailer(&logger)

	authUsecase := usecase.NewAuthUsecase(userRepo, tokens)
	resetUsecase := usecase.NewPasswordResetUsecase(userRepo, otpMailer)
	projectUsecase := usecase.NewProjectUsecase(projectRepo, taskRepo)
	taskUsecase := usecase.NewTaskUsecase(taskRepo, projectRepo)
	activityUsecase := usecase.NewActivityUsecase(projectRepo, taskRepo)

	authHandler := handler.NewAuthHandler(authUsecase, resetUsecase, activityUsecase, cfg, &logger)
	projectHandler := handler.NewProjectHandler(projectUsecase, cfg, &logger)
	taskHandler := handler.NewTaskHandler(taskUsecase, cfg, &logger)
	guard := middleware.NewAuth(tokens, userRepo)

	router := handler.NewRouter(&logger, authHandler, projectHandler, taskHandler, guard)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newLogger() zerolog.Logger {
	if os.Getenv("ENVIRONMENT") == "production" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
}
