package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the console.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	APIBaseURL string        `envconfig:"API_BASE_URL" default:"http://127.0.0.1:8080/api"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"30s"`

	SessionFile string `envconfig:"SESSION_FILE" default:"~/.fieldgrid/session.json"`

	PageLimit int    `envconfig:"PAGE_LIMIT" default:"10"`
	ExportDir string `envconfig:"EXPORT_DIR" default:"."`

	UploadMaxBytes int64 `envconfig:"UPLOAD_MAX_BYTES" default:"5242880"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`

	StubAddr string `envconfig:"STUB_ADDR" default:":8080"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("FG", &cfg); err != nil {
		return nil, err
	}
	if cfg.APIBaseURL == "" {
		return nil, errors.New("app: api base url must be provided")
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 10
	}
	cfg.SessionFile = expandHome(cfg.SessionFile)
	return &cfg, nil
}

// IsProduction returns true when the console runs against production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
