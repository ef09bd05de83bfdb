package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/hirolabs/hirehub-api/internal/config"
	"github.com/hirolabs/hirehub-api/internal/database"
	"github.com/hirolabs/hirehub-api/internal/handler"
	"github.com/hirolabs/hirehub-api/internal/middleware"
	"github.com/hirolabs/hirehub-api/internal/models"
	"github.com/hirolabs/hirehub-api/internal/repository"
	"github.com/hirolabs/hirehub-api/internal/router"
	"github.com/hirolabs/hirehub-api/internal/service"
	"github.com/hirolabs/hirehub-api/pkg/judge"
	"github.com/hirolabs/hirehub-api/pkg/recruiter"
	"github.com/hirolabs/hirehub-api/pkg/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectSQLite(cfg.StatePath)
	if err != nil {
		log.Fatalf("failed to open state database: %v", err)
	}

	if err := db.AutoMigrate(&models.Profile{}); err != nil {
		log.Fatalf("failed to migrate state database: %v", err)
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("event bus unavailable, lifecycle events disabled")
			natsConn = nil
		} else {
			defer natsConn.Close()
		}
	}

	recruiterClient, err := recruiter.New(cfg.RecruiterBaseURL, &http.Client{Timeout: 15 * time.Second}, logger)
	if err != nil {
		log.Fatalf("failed to create recruiter client: %v", err)
	}

	var judgeClient judge.Client
	if cfg.JudgeAPIKey != "" {
		judgeClient, err = judge.New(judge.Config{
			BaseURL:      cfg.JudgeBaseURL,
			APIKey:       cfg.JudgeAPIKey,
			APIHost:      cfg.JudgeAPIHost,
			PollInterval: cfg.JudgePollInterval,
			PollAttempts: cfg.JudgePollAttempts,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create judge client: %v", err)
		}
	} else {
		logger.Warn().Msg("judge api key missing, code execution disabled")
	}

	var voiceFactory service.VoiceFactory
	if cfg.VoicePublicKey != "" {
		voiceFactory = func() (voice.Client, error) {
			return voice.New(voice.Config{
				BaseURL:   cfg.VoiceBaseURL,
				PublicKey: cfg.VoicePublicKey,
			}, logger)
		}
	} else {
		logger.Warn().Msg("voice public key missing, interviews disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	profileRepo := repository.NewProfileRepository(db)
	sessionStore := repository.NewSessionStore()

	eventPublisher := service.NewEventPublisher(natsConn, cfg.EventSubjectBase, logger)

	authService := service.NewAuthService(recruiterClient, profileRepo, validate, cfg.JWTSecret, logger)
	interviewService := service.NewInterviewService(sessionStore, voiceFactory, recruiterClient, eventPublisher, logger, service.InterviewConfig{
		SilenceTimeoutSec: cfg.SilenceTimeoutSec,
		MaxCallSeconds:    cfg.MaxCallSeconds,
	})
	sessionService := service.NewSessionService(sessionStore, recruiterClient, judgeClient, eventPublisher, interviewService, validate, logger, service.SessionConfig{
		TestDuration: cfg.TestDuration,
	})
	portalService := service.NewPortalService(recruiterClient, logger)
	adminService := service.NewAdminService(recruiterClient, validate, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	sessionHandler := handler.NewSessionHandler(sessionService, logger)
	interviewHandler := handler.NewInterviewHandler(interviewService, logger)
	portalHandler := handler.NewPortalHandler(portalService, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:      authHandler,
		SessionHandler:   sessionHandler,
		InterviewHandler: interviewHandler,
		PortalHandler:    portalHandler,
		AdminHandler:     adminHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, sessionService, interviewService)
}

func waitForShutdown(app *fiber.App, sessions service.SessionService, interviews service.InterviewService) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	interviews.Shutdown()
	sessions.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
