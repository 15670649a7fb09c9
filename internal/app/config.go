package app

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/carlux/carlux-inventory/internal/catalog"
	"github.com/carlux/carlux-inventory/internal/dashboard"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr  string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	CatalogURL       string        `envconfig:"CATALOG_URL"`
	SearchDebounce   time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"500ms"`
	DashboardIdleTTL time.Duration `envconfig:"DASHBOARD_IDLE_TTL" default:"30m"`

	APIAllowedOrigins []string `envconfig:"API_ALLOWED_ORIGINS"`
}

// LoadConfig reads configuration from a .env file, when present, and environment variables.
// Variables already set in the environment win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.CatalogURL == "" {
		cfg.CatalogURL = catalog.Endpoint
	}
	if cfg.SearchDebounce < 0 {
		cfg.SearchDebounce = dashboard.DefaultSearchDelay
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
