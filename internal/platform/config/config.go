package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

type Config struct {
	Addr               string        `koanf:"addr"`
	DatabaseURL        string        `koanf:"database_url"`
	Environment        string        `koanf:"environment"`
	LogLevel           string        `koanf:"log_level"`
	JWTSecret          string        `koanf:"jwt_secret"`
	JWTSecretFile      string        `koanf:"jwt_secret_file"`
	TokenTTL           time.Duration `koanf:"token_ttl"`
	CompanyName        string        `koanf:"company_name"`
	AdminName          string        `koanf:"admin_name"`
	AdminPassword      string        `koanf:"admin_password"`
	FrontendDir        string        `koanf:"frontend_dir"`
	MaxBodyBytes       int64         `koanf:"max_body_bytes"`
	RateLimitPerMinute int           `koanf:"rate_limit_per_minute"`
	MetricsEnabled     bool          `koanf:"metrics_enabled"`
	SnapshotSchedule   string        `koanf:"snapshot_schedule"`
	RoleProfilesFile   string        `koanf:"role_profiles_file"`
	RunSeed            bool          `koanf:"run_seed"`
}

func Default() Config {
	return Config{
		Addr:               ":3001",
		DatabaseURL:        "file:skima.db",
		Environment:        "development",
		LogLevel:           "info",
		TokenTTL:           24 * time.Hour,
		CompanyName:        "Skima",
		AdminName:          "Administrador",
		AdminPassword:      "admin123",
		FrontendDir:        "client/dist",
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
		MetricsEnabled:     true,
		SnapshotSchedule:   "0 3 1 * *",
		RunSeed:            true,
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("%w: database_url is required", ErrInvalidConfig)
	}
	if c.IsProduction() {
		if strings.TrimSpace(c.JWTSecret) == "" && strings.TrimSpace(c.JWTSecretFile) == "" {
			return fmt.Errorf("%w: jwt_secret or jwt_secret_file must be set in production", ErrInvalidConfig)
		}
		if c.RunSeed && (c.AdminPassword == "" || c.AdminPassword == Default().AdminPassword) {
			return fmt.Errorf("%w: admin_password must be changed or run_seed disabled in production", ErrInvalidConfig)
		}
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: token_ttl must be positive", ErrInvalidConfig)
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("%w: max_body_bytes must be at least 1024", ErrInvalidConfig)
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("%w: rate_limit_per_minute must be positive", ErrInvalidConfig)
	}
	if c.SnapshotSchedule != "" {
		if _, err := cron.ParseStandard(c.SnapshotSchedule); err != nil {
			return fmt.Errorf("%w: snapshot_schedule: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}
