package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"telegram-subscription-tracker/internal/config"
	"telegram-subscription-tracker/internal/dialogue"
	"telegram-subscription-tracker/internal/domain/model"
	"telegram-subscription-tracker/internal/domain/ports/adapter"
	tele "telegram-subscription-tracker/internal/infra/adapters/telegram"
	"telegram-subscription-tracker/internal/infra/api"
	pg "telegram-subscription-tracker/internal/infra/db/postgres"
	"telegram-subscription-tracker/internal/infra/i18n"
	"telegram-subscription-tracker/internal/infra/logging"
	"telegram-subscription-tracker/internal/infra/metrics"
	red "telegram-subscription-tracker/internal/infra/redis"
	"telegram-subscription-tracker/internal/infra/sched"
	"telegram-subscription-tracker/internal/infra/worker"
	"telegram-subscription-tracker/internal/session"
	"telegram-subscription-tracker/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, no bot token required")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("application stopped")
	}
	logger.Info().Msg("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 15*time.Second, logger)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	sessions := red.NewSessionStore(redisClient, cfg.Redis.TTL, logger)
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	settingsRepo := pg.NewSettingsRepo(pool)
	subRepo := pg.NewSubscriptionRepoCacheDecorator(pg.NewSubscriptionRepo(pool), redisClient, 10*time.Minute)

	// ---- Use cases ----
	userUC, err := usecase.NewUserUseCase(userRepo, tm, logger)
	if err != nil {
		return err
	}
	subUC := usecase.NewSubscriptionUseCase(subRepo, tm, cfg.Session.PageSize, logger)
	settingsUC := usecase.NewSettingsUseCase(settingsRepo, tm, logger)

	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Locale)
	if err != nil {
		return err
	}

	// ---- Worker pools ----
	updatePool := worker.NewPool(cfg.Bot.Workers, logger)
	reminderPool := worker.NewPool(cfg.Reminder.Workers, logger)
	updatePool.Start(ctx)
	reminderPool.Start(ctx)
	defer updatePool.Stop()
	defer reminderPool.Stop()

	// ---- Telegram ----
	var (
		bot     adapter.Messenger
		realBot *tele.RealTelegramBotAdapter
	)
	if cfg.Bot.Token == "" {
		logger.Warn().Msg("bot.token is empty; outgoing messages are only logged")
		bot = tele.NewNoopBotAdapter(logger)
	} else {
		realBot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, cfg.RateLimit, rateLimiter, updatePool, translator, logger)
		if err != nil {
			return err
		}
		bot = realBot
	}

	// ---- Dialogue ----
	handlers := dialogue.New(sessions, subUC, userUC, settingsUC, session.NewMachine(), translator,
		dialogue.Options{Currency: cfg.Bot.Currency, Location: cfg.Location()}, logger)
	callbacks := session.NewRegistry[string](session.RegistryCallback)
	commands := session.NewRegistry[string](session.RegistryCommand)
	steps := session.NewRegistry[model.DialogueState](session.RegistryStep)
	handlers.Register(callbacks, commands, steps)

	dispatcher := session.NewDispatcher(callbacks, commands, steps, sessions, locker, cfg.Session.LockTTL, translator, logger)
	dispatcher.Unrecognized = handlers.Unrecognized

	reminderUC := usecase.NewReminderUseCase(subRepo, tm, bot, reminderPool, translator, cfg.Bot.Currency, logger)
	clock := sched.NewClock(cfg.Location())

	var wg sync.WaitGroup
	goRun := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Str("task", name).Msg("task stopped")
			}
		}()
	}

	if realBot != nil {
		realBot.SetDispatcher(dispatcher)
		if err := realBot.SetMenuCommands(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to publish bot commands")
		}
		goRun("telegram", realBot.StartPolling)
	}

	goRun("reminders", sched.NewReminderWorker(cfg.Reminder.Interval, reminderUC, clock, logger).Run)
	goRun("rollover", sched.NewRolloverWorker(cfg.Rollover.Interval, reminderUC, clock, logger).Run)

	// ---- Admin / ops HTTP ----
	auth := api.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer, time.Hour)
	if cfg.Admin.JWTSecret == "" {
		logger.Warn().Msg("admin.jwt_secret is empty; /admin routes are disabled")
	}
	checks := map[string]api.Pinger{"postgres": pool, "redis": redisClient}
	srv := api.NewServer(sessions, userUC, checks, auth, logger).HTTPServer(cfg.Admin.Port)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("admin http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("admin http server error")
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("admin http shutdown")
	}
	wg.Wait()
	return nil
}
