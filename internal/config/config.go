// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string        `env:"FORUM_ADDR,default=:8080"`
	DBDriver        string        `env:"FORUM_DB_DRIVER,default=sqlite3"`
	DBDSN           string        `env:"FORUM_DB_DSN,default=forum.db"`
	LogLevel        string        `env:"FORUM_LOG_LEVEL,default=info"`
	LogFormat       string        `env:"FORUM_LOG_FORMAT,default=text"`
	AuditSink       string        `env:"FORUM_AUDIT_SINK,default=database"`
	AuditFile       string        `env:"FORUM_AUDIT_FILE,default=storage/logs/api-logs.jsonl"`
	RateLimit       float64       `env:"FORUM_RATE_LIMIT,default=0"`
	RateBurst       int           `env:"FORUM_RATE_BURST,default=10"`
	CORSOrigins     string        `env:"FORUM_CORS_ORIGINS"`
	MaxBodyBytes    int64         `env:"FORUM_MAX_BODY_BYTES,default=1048576"`
	ShutdownTimeout time.Duration `env:"FORUM_SHUTDOWN_TIMEOUT,default=10s"`
}

// Load reads envFile (when it exists) into the process environment and decodes
// the configuration. Variables already set win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("FORUM_DB_DRIVER must be sqlite3 or pgx, got %q", c.DBDriver)
	}
	switch c.AuditSink {
	case "database", "file", "none":
	default:
		return fmt.Errorf("FORUM_AUDIT_SINK must be database, file or none, got %q", c.AuditSink)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errors.New("rate limit settings must not be negative")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("FORUM_MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// Origins splits the comma separated CORS origin list.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
