package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httprate"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/vladimiradmaev/farm-helper/internal/ai"
	"github.com/vladimiradmaev/farm-helper/internal/auth"
	"github.com/vladimiradmaev/farm-helper/internal/bot"
	"github.com/vladimiradmaev/farm-helper/internal/cache"
	"github.com/vladimiradmaev/farm-helper/internal/config"
	"github.com/vladimiradmaev/farm-helper/internal/database"
	apperrors "github.com/vladimiradmaev/farm-helper/internal/errors"
	"github.com/vladimiradmaev/farm-helper/internal/logger"
	"github.com/vladimiradmaev/farm-helper/internal/notify"
	"github.com/vladimiradmaev/farm-helper/internal/repository"
	"github.com/vladimiradmaev/farm-helper/internal/rules"
	"github.com/vladimiradmaev/farm-helper/internal/server"
	"github.com/vladimiradmaev/farm-helper/internal/services"
	"github.com/vladimiradmaev/farm-helper/internal/storage"
	"github.com/vladimiradmaev/farm-helper/internal/validation"
	"github.com/vladimiradmaev/farm-helper/internal/weather"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration:\n%v", err)
	}

	logOutput, err := logger.InitWithConfig(cfg.Logger.Logger())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logOutput.Close()

	if err := run(ctx, cfg, logger.GetLogger()); err != nil {
		logger.Fatal("Server stopped with error", "error", err)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, lg *slog.Logger) error {
	db, err := database.Open(cfg.DB, lg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	lg.Info("Database connection established", "driver", cfg.DB.Driver)

	table := rules.DefaultTable()
	if cfg.RulesFile != "" {
		if table, err = rules.LoadTable(cfg.RulesFile); err != nil {
			return err
		}
		lg.Info("Crop rules loaded", "file", cfg.RulesFile, "rules", len(table))
	}

	var geocodeCache cache.Cache = cache.NewMemory(cfg.Weather.GeocodeTTL)
	if cfg.Cache.RedisAddr != "" {
		r, err := cache.NewRedis(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, "farm-helper:")
		if err != nil {
			return err
		}
		defer r.Close()
		geocodeCache = r
		lg.Info("Using Redis geocode cache", "addr", cfg.Cache.RedisAddr)
	}

	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		return err
	}
	gateway := ai.NewGateway(provider)

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}
	locator := storage.NewLocator(cfg.Storage)

	var (
		notifier notify.Notifier = notify.Noop{}
		botAPI   *tgbotapi.BotAPI
	)
	if cfg.Telegram.Token != "" {
		if botAPI, err = tgbotapi.NewBotAPI(cfg.Telegram.Token); err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
		notifier = notify.NewTelegramWithAPI(botAPI, lg)
	}

	repos := repository.New(db)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience)
	weatherSvc := services.NewWeatherService(weather.NewClient(cfg.Weather, geocodeCache), repos, notifier, cfg.Weather.DefaultCity)
	profileSvc := services.NewProfileService(repos.Profiles)
	deps := server.Deps{
		Disease:       services.NewDiseaseService(gateway, repos.Detections, store, locator, cfg.Storage.MaxUploadSize),
		Plans:         services.NewPlanService(gateway),
		Weather:       weatherSvc,
		Soil:          services.NewSoilService(repos, rules.NewEngine(table), time.Now),
		Crops:         services.NewCropService(repos.Crops),
		Tasks:         services.NewTaskService(repos.Tasks, time.Now),
		Notifications: services.NewNotificationService(repos.Notifications),
		Profiles:      profileSvc,
		Exports:       services.NewExportService(repos),

		Verifier:  verifier,
		Validator: validation.New(time.Now),
		Errors:    apperrors.NewHandler(lg),
		Logger:    lg,

		Limiter:         httprate.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow),
		RateLimitWindow: cfg.HTTP.RateLimitWindow,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		MaxUploadBytes:  cfg.Storage.MaxUploadSize,

		Ping:   sqlDB.PingContext,
		Bucket: cfg.Storage.Bucket,
	}
	if cfg.Storage.Backend == "local" {
		deps.PublicStore = store
	}

	srv := server.New(":"+cfg.HTTP.Port, server.NewRouter(deps), lg, cfg.HTTP.ShutdownTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if botAPI != nil {
		companion := bot.New(botAPI, verifier, profileSvc, weatherSvc, lg.With("component", "bot"))
		g.Go(func() error { return companion.Start(gctx) })
	}
	return g.Wait()
}
