// Package config loads the server configuration from an optional YAML file,
// a .env file and ARMORY_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/erazemk/armory/internal/finance"
)

// EnvPrefix prefixes every environment variable, e.g. ARMORY_BACKEND_URL.
const EnvPrefix = "ARMORY"

// Config is the resolved server configuration.
type Config struct {
	Addr    string
	DB      string
	Log     string
	SiteURL string
	Backend Backend
	Auth    Auth
	Rules   finance.Rules
}

// Backend locates the REST backend.
type Backend struct {
	URL     string
	Timeout time.Duration
}

// Auth locates the session provider used for sign-in.
type Auth struct {
	URL    string
	APIKey string
}

func setDefaults(v *viper.Viper) {
	rules := finance.DefaultRules()
	v.SetDefault("addr", ":8080")
	v.SetDefault("db", "armory.sqlite3")
	v.SetDefault("log", "")
	v.SetDefault("site_url", "http://localhost:8080")
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("auth.url", "")
	v.SetDefault("auth.api_key", "")
	v.SetDefault("rules.grace_days", rules.GraceDays)
	v.SetDefault("rules.missed_months_default", rules.DefaultAfterMissed)
	v.SetDefault("rules.cancellation_fee_percent", rules.CancellationFeePercent.String())
	v.SetDefault("rules.storage_daily_rate", rules.StorageDailyRate.String())
}

// Load reads the configuration. path names a YAML file; when empty,
// armory.yaml in the working directory is used if present. envFile names a
// dotenv file whose absence is not an error.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("armory")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Addr:    v.GetString("addr"),
		DB:      v.GetString("db"),
		Log:     v.GetString("log"),
		SiteURL: strings.TrimRight(v.GetString("site_url"), "/"),
		Backend: Backend{
			URL:     strings.TrimRight(v.GetString("backend.url"), "/"),
			Timeout: v.GetDuration("backend.timeout"),
		},
		Auth: Auth{
			URL:    strings.TrimRight(v.GetString("auth.url"), "/"),
			APIKey: v.GetString("auth.api_key"),
		},
	}

	fee, err := decimal.NewFromString(v.GetString("rules.cancellation_fee_percent"))
	if err != nil {
		return nil, fmt.Errorf("rules.cancellation_fee_percent: %w", err)
	}
	rate, err := decimal.NewFromString(v.GetString("rules.storage_daily_rate"))
	if err != nil {
		return nil, fmt.Errorf("rules.storage_daily_rate: %w", err)
	}
	cfg.Rules = finance.Rules{
		GraceDays:              v.GetInt("rules.grace_days"),
		DefaultAfterMissed:     v.GetInt("rules.missed_months_default"),
		CancellationFeePercent: fee,
		StorageDailyRate:       rate,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and ranges.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return errors.New("backend.url is required")
	}
	if err := checkURL("backend.url", c.Backend.URL); err != nil {
		return err
	}
	if c.Auth.URL != "" {
		if err := checkURL("auth.url", c.Auth.URL); err != nil {
			return err
		}
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %s", c.Backend.Timeout)
	}
	if c.Rules.GraceDays < 0 {
		return errors.New("rules.grace_days must not be negative")
	}
	if c.Rules.DefaultAfterMissed < 1 {
		return errors.New("rules.missed_months_default must be at least 1")
	}
	if c.Rules.CancellationFeePercent.IsNegative() || c.Rules.CancellationFeePercent.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("rules.cancellation_fee_percent must be between 0 and 100")
	}
	if c.Rules.StorageDailyRate.IsNegative() {
		return errors.New("rules.storage_daily_rate must not be negative")
	}
	return nil
}

func checkURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
	}
	return nil
}
