package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/vladimiradmaev/farm-helper/internal/logger"
)

type Config struct {
	HTTP     HTTPConfig
	DB       DBConfig
	Auth     AuthConfig
	AI       AIConfig
	Weather  WeatherConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Telegram TelegramConfig
	Logger   LoggerConfig

	// RulesFile optionally points at an .xlsx workbook overriding the built-in crop rules.
	RulesFile string `env:"RULES_FILE"`
}

type HTTPConfig struct {
	Port              string        `env:"PORT,default=8080"`
	AllowedOrigins    []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=15s"`
}

type DBConfig struct {
	Driver   string `env:"DB_DRIVER,default=postgres"`
	Host     string `env:"DB_HOST,default=localhost"`
	Port     string `env:"DB_PORT,default=5432"`
	User     string `env:"DB_USER,default=postgres"`
	Password string `env:"DB_PASSWORD,default=postgres"`
	DBName   string `env:"DB_NAME,default=farm_helper"`
	SSLMode  string `env:"DB_SSLMODE,default=disable"`
	Path     string `env:"DB_PATH,default=farm_helper.db"`
}

type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET"`
	Audience  string `env:"AUTH_AUDIENCE"`
}

type AIConfig struct {
	Provider     string `env:"AI_PROVIDER,default=openai"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	BaseURL      string `env:"AI_BASE_URL"`
	VisionModel  string `env:"AI_VISION_MODEL,default=gpt-4o"`
	TextModel    string `env:"AI_TEXT_MODEL,default=gpt-4o-mini"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
}

type WeatherConfig struct {
	APIKey      string        `env:"OPENWEATHER_API_KEY"`
	BaseURL     string        `env:"OPENWEATHER_BASE_URL,default=https://api.openweathermap.org"`
	Timeout     time.Duration `env:"WEATHER_TIMEOUT,default=10s"`
	GeocodeTTL  time.Duration `env:"GEOCODE_CACHE_TTL,default=24h"`
	DefaultCity string        `env:"WEATHER_DEFAULT_LOCATION,default=London,UK"`
}

type CacheConfig struct {
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`
}

type StorageConfig struct {
	Backend       string `env:"STORAGE_BACKEND,default=local"`
	LocalDir      string `env:"STORAGE_LOCAL_DIR,default=./data/storage"`
	Bucket        string `env:"STORAGE_BUCKET,default=crop-images"`
	PublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL,default=http://localhost:8080"`
	MaxUploadSize int64  `env:"UPLOAD_MAX_BYTES,default=10485760"`
}

type TelegramConfig struct {
	Token string `env:"TELEGRAM_BOT_TOKEN"`
}

type LoggerConfig struct {
	Level      string `env:"LOG_LEVEL,default=info"`
	OutputPath string `env:"LOG_OUTPUT,default=stdout"`
	Format     string `env:"LOG_FORMAT,default=json"`
}

// Logger converts the settings into the logger package's config.
func (c LoggerConfig) Logger() logger.Config {
	return logger.Config{Level: c.Level, OutputPath: c.OutputPath, Format: c.Format}
}

// DSN builds the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	cfg.Storage.PublicBaseURL = strings.TrimRight(cfg.Storage.PublicBaseURL, "/")
	return &cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}

	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DB.Driver))
	}

	switch c.AI.Provider {
	case "openai":
		if c.AI.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for AI_PROVIDER=openai"))
		}
	case "gemini":
		if c.AI.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for AI_PROVIDER=gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("AI_PROVIDER must be openai or gemini, got %q", c.AI.Provider))
	}

	if c.Weather.APIKey == "" {
		errs = append(errs, errors.New("OPENWEATHER_API_KEY is required"))
	}
	if c.Weather.Timeout <= 0 {
		errs = append(errs, errors.New("WEATHER_TIMEOUT must be positive"))
	}

	switch c.Storage.Backend {
	case "local", "gcs":
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be local or gcs, got %q", c.Storage.Backend))
	}
	if c.Storage.PublicBaseURL == "" {
		errs = append(errs, errors.New("STORAGE_PUBLIC_BASE_URL is required"))
	}

	if !slices.ContainsFunc(c.HTTP.AllowedOrigins, func(o string) bool { return strings.TrimSpace(o) != "" }) {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must list at least one origin or *"))
	}

	if c.HTTP.RateLimitRequests <= 0 || c.HTTP.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
	}

	return errors.Join(errs...)
}
