// Command server runs the birthday notification service: the scheduled
// calendar → directory → generation → Slack pipeline plus the dashboard API.
//
// @title          Birthday Bot API
// @version        1.0
// @description    Team birthday notifications: calendar-driven message generation, delivery tracking, prompt versioning, and alias management.
// @BasePath       /api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-birthday-bot/internal/cache"
	"github.com/tbourn/go-birthday-bot/internal/calendar"
	"github.com/tbourn/go-birthday-bot/internal/config"
	"github.com/tbourn/go-birthday-bot/internal/directory"
	"github.com/tbourn/go-birthday-bot/internal/genai"
	httpapi "github.com/tbourn/go-birthday-bot/internal/http"
	"github.com/tbourn/go-birthday-bot/internal/notify"
	"github.com/tbourn/go-birthday-bot/internal/observability"
	"github.com/tbourn/go-birthday-bot/internal/scheduler"
	"github.com/tbourn/go-birthday-bot/internal/services"
	"github.com/tbourn/go-birthday-bot/internal/sysutil"
)

// version is set at build time via -ldflags "-X main.version=…".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up tracing")
	}

	loc, err := time.LoadLocation(cfg.ScheduleTZ)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.ScheduleTZ).Msg("invalid schedule timezone")
	}

	// Core services. The message store only exists when a generative backend
	// is configured; without one, valid recipients get the fixed greeting.
	aliasSvc := services.NewAliasService(cfg.DataDir)
	promptSvc := services.NewPromptService(cfg.DataDir)

	var msgSvc *services.MessageService
	if cfg.OpenAIAPIKey != "" {
		gen, err := genai.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.GenMaxTokens)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to construct generator")
		}
		msgSvc = services.NewMessageService(cfg.DataDir, promptSvc, gen)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, using simple birthday messages")
	}

	birthdaySvc := &services.BirthdayService{
		Aliases:   aliasSvc,
		Messages:  msgSvc,
		Calendar:  calendar.NewFeed(cfg.ICSURL),
		Directory: directory.NewClient(cfg.LDAPServerURL, cfg.LDAPSearchBase, cfg.LDAPInsecureSkipVerify),
		Notifier:  notify.NewSlackNotifier(cfg.WebhookURL, cfg.SlackEnabled),
		Flags: services.StatusFlags{
			ICSConfigured:        cfg.ICSURL != "",
			WebhookConfigured:    cfg.WebhookURL != "",
			LDAPConfigured:       cfg.LDAPServerURL != "",
			SearchBaseConfigured: cfg.LDAPSearchBase != "",
		},
	}

	// Warm the event cache before serving so the dashboard has data on boot.
	events := cache.New()
	{
		warmCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		events.Refresh(warmCtx, birthdaySvc, time.Now().In(loc), cfg.LookAheadDays)
		cancel()
	}

	sched, err := scheduler.Start(birthdaySvc, events, scheduler.Options{
		Location:          loc,
		SendHour:          cfg.SendHour,
		RefreshEveryHours: cfg.RefreshHours,
		LookAheadDays:     cfg.LookAheadDays,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Birthdays: birthdaySvc,
		Aliases:   aliasSvc,
		Prompts:   promptSvc,
		Events:    events,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown: stop accepting, drain requests, stop jobs, flush traces.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	sched.Stop()
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown failed")
	}
	log.Info().Msg("bye")
}
