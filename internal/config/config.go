package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string   `mapstructure:"PORT"`
	Env                string   `mapstructure:"ENV"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"`
	SimSeed            int64    `mapstructure:"SIM_SEED"`
	BedCount           int      `mapstructure:"BED_COUNT"`
	StaffCount         int      `mapstructure:"STAFF_COUNT"`
	TargetActiveVisits int      `mapstructure:"TARGET_ACTIVE_VISITS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SIM_SEED", 0)
	v.SetDefault("BED_COUNT", 50)
	v.SetDefault("STAFF_COUNT", 15)
	v.SetDefault("TARGET_ACTIVE_VISITS", 40)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("SIM_SEED")
	v.BindEnv("BED_COUNT")
	v.BindEnv("STAFF_COUNT")
	v.BindEnv("TARGET_ACTIVE_VISITS")

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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.BedCount <= 0 {
		return fmt.Errorf("BED_COUNT must be positive, got %d", c.BedCount)
	}
	if c.StaffCount <= 0 {
		return fmt.Errorf("STAFF_COUNT must be positive, got %d", c.StaffCount)
	}
	if c.TargetActiveVisits <= 0 {
		return fmt.Errorf("TARGET_ACTIVE_VISITS must be positive, got %d", c.TargetActiveVisits)
	}
	return nil
}
