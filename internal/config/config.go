package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string   `mapstructure:"PORT"`
	Env           string   `mapstructure:"ENV"`
	DatabaseURL   string   `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret     string   `mapstructure:"JWT_SECRET"`
	TokenTTLMins  int      `mapstructure:"TOKEN_TTL_MINUTES"`
	MigrationsDir string   `mapstructure:"MIGRATIONS_DIR"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`

	// Revenue split applied by the clinic summary report. The two shares are
	// independent ratios and need not sum to 1.
	DoctorShare float64 `mapstructure:"DOCTOR_SHARE"`
	ClinicShare float64 `mapstructure:"CLINIC_SHARE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("TOKEN_TTL_MINUTES", 60)
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("DOCTOR_SHARE", 0.9)
	v.SetDefault("CLINIC_SHARE", 0.1)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("TOKEN_TTL_MINUTES")
	v.BindEnv("MIGRATIONS_DIR")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("DOCTOR_SHARE")
	v.BindEnv("CLINIC_SHARE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret must be configured so role enforcement is real, and the
// revenue shares must be sane ratios.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
	}
	if c.DoctorShare < 0 || c.DoctorShare > 1 {
		return fmt.Errorf("DOCTOR_SHARE must be in [0, 1], got %v", c.DoctorShare)
	}
	if c.ClinicShare < 0 || c.ClinicShare > 1 {
		return fmt.Errorf("CLINIC_SHARE must be in [0, 1], got %v", c.ClinicShare)
	}
	if c.TokenTTLMins <= 0 {
		return fmt.Errorf("TOKEN_TTL_MINUTES must be positive, got %d", c.TokenTTLMins)
	}
	return nil
}
