package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"github.com/dskvich/trigger-telegram-bot/pkg/api/handler"
	"github.com/dskvich/trigger-telegram-bot/pkg/auth"
	"github.com/dskvich/trigger-telegram-bot/pkg/database"
	"github.com/dskvich/trigger-telegram-bot/pkg/logger"
	"github.com/dskvich/trigger-telegram-bot/pkg/matcher"
	"github.com/dskvich/trigger-telegram-bot/pkg/repository"
	"github.com/dskvich/trigger-telegram-bot/pkg/scheduler"
	"github.com/dskvich/trigger-telegram-bot/pkg/services"
	"github.com/dskvich/trigger-telegram-bot/pkg/telegram"
	"github.com/dskvich/trigger-telegram-bot/pkg/workers"
)

type Config struct {
	TelegramBotToken               string        `env:"TELEGRAM_BOT_TOKEN,required"`
	TelegramAdminID                int64         `env:"TELEGRAM_ADMIN_ID,required"`
	TelegramUpdateListenerPoolSize int           `env:"TELEGRAM_UPDATE_LISTENER_POOL_SIZE" envDefault:"10"`
	TelegramRequestTimeout         time.Duration `env:"TELEGRAM_REQUEST_TIMEOUT" envDefault:"75s"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	PgURL          string `env:"DATABASE_URL"`
	PgHost         string `env:"DB_HOST" envDefault:"localhost:65432"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"triggers.db"`

	TriggerMarker    string        `env:"TRIGGER_MARKER" envDefault:"#"`
	TriggerTrimSpace bool          `env:"TRIGGER_TRIM_SPACE" envDefault:"false"`
	TriggerCacheSize int           `env:"TRIGGER_CACHE_SIZE" envDefault:"4000"`
	TriggerCacheTTL  time.Duration `env:"TRIGGER_CACHE_TTL" envDefault:"1h"`
	TriggerMaxDelay  time.Duration `env:"TRIGGER_MAX_DELAY" envDefault:"1h"`

	SchedulerAllowDuplicatePending bool          `env:"SCHEDULER_ALLOW_DUPLICATE_PENDING" envDefault:"true"`
	SchedulerMaxAttempts           int           `env:"SCHEDULER_MAX_ATTEMPTS" envDefault:"1"`
	SchedulerRetryBackoff          time.Duration `env:"SCHEDULER_RETRY_BACKOFF" envDefault:"5s"`
	SchedulerWorkers               int           `env:"SCHEDULER_WORKERS" envDefault:"10"`
	SchedulerFlushOnShutdown       bool          `env:"SCHEDULER_FLUSH_ON_SHUTDOWN" envDefault:"false"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	BotName  string `env:"BOT_NAME"`

	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogNoColor bool   `env:"LOG_NO_COLOR" envDefault:"false"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env file: %w", err)
	}

	cfg, err := parseConfig(environ())
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.NewOptions(cfg.LogLevel, cfg.LogNoColor))))

	db, err := database.Open(cfg.DatabaseDriver, cfg.PgURL, cfg.PgHost, cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	workerGroup, err := setupWorkers(cfg, db)
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return workerGroup.Run(ctx)
}

func environ() map[string]string {
	return lo.Associate(os.Environ(), func(kv string) (string, string) {
		k, v, _ := strings.Cut(kv, "=")
		return k, v
	})
}

func parseConfig(environment map[string]string) (Config, error) {
	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parsing env config: %w", err)
	}

	if cfg.TelegramUpdateListenerPoolSize <= 0 {
		return Config{}, fmt.Errorf("TELEGRAM_UPDATE_LISTENER_POOL_SIZE must be positive, got %d", cfg.TelegramUpdateListenerPoolSize)
	}
	if cfg.TriggerMarker == "" {
		return Config{}, errors.New("TRIGGER_MARKER must not be empty")
	}

	return cfg, nil
}

func setupWorkers(cfg Config, db *database.DB) (workers.Group, error) {
	var workerGroup workers.Group

	telegramClient, err := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramRequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("creating telegram client: %w", err)
	}
	authenticator := auth.NewAuthenticator(cfg.TelegramAdminID)

	triggerRepository, err := repository.NewCachedTriggerRepository(
		repository.NewTriggerRepository(db),
		cfg.TriggerCacheSize,
		cfg.TriggerCacheTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("creating trigger repository: %w", err)
	}

	triggerMatcher := matcher.New(triggerRepository, matcher.Config{
		Marker:    cfg.TriggerMarker,
		TrimSpace: cfg.TriggerTrimSpace,
	})

	reporter := scheduler.NewLogReporter()
	delayScheduler := scheduler.New(telegramClient, reporter, scheduler.Config{
		AllowDuplicatePending: cfg.SchedulerAllowDuplicatePending,
		MaxAttempts:           cfg.SchedulerMaxAttempts,
		RetryBackoff:          cfg.SchedulerRetryBackoff,
		Workers:               cfg.SchedulerWorkers,
		FlushOnShutdown:       cfg.SchedulerFlushOnShutdown,
	})
	workerGroup = append(workerGroup, delayScheduler)

	triggerService := services.NewTriggerService(triggerMatcher, delayScheduler, telegramClient)
	adminService := services.NewAdminService(
		triggerRepository,
		authenticator,
		delayScheduler,
		telegramClient,
		services.AdminConfig{
			Marker:   cfg.TriggerMarker,
			MaxDelay: cfg.TriggerMaxDelay,
		},
	)

	listener, err := workers.NewTelegramUpdateListener(
		telegramClient,
		telegram.NewHandler(triggerService, adminService),
		cfg.TelegramUpdateListenerPoolSize,
	)
	if err != nil {
		return nil, fmt.Errorf("creating update listener: %w", err)
	}
	workerGroup = append(workerGroup, listener)

	if cfg.HTTPAddr != "" {
		botName := lo.Ternary(cfg.BotName != "", cfg.BotName, telegramClient.UserName())
		health := handler.NewHealth(botName, delayScheduler, reporter)
		workerGroup = append(workerGroup, workers.NewHTTPServer(cfg.HTTPAddr, health.Routes()))
	}

	return workerGroup, nil
}
