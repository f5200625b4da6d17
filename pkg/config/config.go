package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Graph struct {
		AccessToken string        `env:"GRAPH_ACCESS_TOKEN"`
		Version     string        `env:"GRAPH_API_VERSION" env-default:"v22.0"`
		Timeout     time.Duration `env:"GRAPH_HTTP_TIMEOUT" env-default:"30s"`
	}
	Collector struct {
		InputPath     string        `env:"COLLECTOR_INPUT_PATH" env-default:"./input/links.csv"`
		MappingPath   string        `env:"COLLECTOR_MAPPING_PATH"`
		OutputDir     string        `env:"COLLECTOR_OUTPUT_DIR" env-default:"./output"`
		Cron          string        `env:"COLLECTOR_CRON"`
		CommentCap    int           `env:"COLLECTOR_COMMENT_CAP" env-default:"20000"`
		PageDelay     time.Duration `env:"COLLECTOR_PAGE_DELAY" env-default:"1s"`
		LinkDelay     time.Duration `env:"COLLECTOR_LINK_DELAY" env-default:"3s"`
		RateLimitWait time.Duration `env:"COLLECTOR_RATE_LIMIT_WAIT" env-default:"60s"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// ArchiveEnabled reports whether the run archive database is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.Postgres.Host != ""
}

// GetDSN builds the connection string for the run archive database.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass,
		c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}
