// Package config loads medcare.yaml and MEDCARE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/DarkZangetsu/medcare/internal/constants"
	"github.com/DarkZangetsu/medcare/internal/logger"
)

type APIConfig struct {
	URL           string        `mapstructure:"url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
}

type NotifierConfig struct {
	Backend  string   `mapstructure:"backend"`  // local or queue
	Channels []string `mapstructure:"channels"` // tray, push, sms
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type FirebaseConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	DeviceToken     string `mapstructure:"device_token"`
}

type TwilioConfig struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	From       string `mapstructure:"from"`
	To         string `mapstructure:"to"`
}

// Config holds every file/env configurable value.
type Config struct {
	API       APIConfig      `mapstructure:"api"`
	Timezone  string         `mapstructure:"timezone"`
	Notifier  NotifierConfig `mapstructure:"notifier"`
	Redis     RedisConfig    `mapstructure:"redis"`
	Firebase  FirebaseConfig `mapstructure:"firebase"`
	Twilio    TwilioConfig   `mapstructure:"twilio"`
	Documents string         `mapstructure:"documents_dir"`
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("api.url", "http://localhost:8000/graphql/")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.rate_per_second", 5.0)
	v.SetDefault("timezone", "")
	v.SetDefault("notifier.backend", constants.BackendLocal)
	v.SetDefault("notifier.channels", []string{constants.ChannelTray})
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("firebase.credentials_file", "")
	v.SetDefault("firebase.device_token", "")
	v.SetDefault("twilio.account_sid", "")
	v.SetDefault("twilio.auth_token", "")
	v.SetDefault("twilio.from", "")
	v.SetDefault("twilio.to", "")
	v.SetDefault("documents_dir", filepath.Join(configDir, "documents"))
}

// Load reads an optional .env, then medcare.yaml from configDir or the
// working directory, then MEDCARE_* environment variables. A missing file is
// not an error.
func Load(configDir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file", "error", err)
	}

	v := viper.New()
	v.SetConfigName(constants.AppName)
	v.SetConfigType("yaml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix(strings.ToUpper(constants.AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Debug("No config file found, using defaults and environment")
	} else {
		logger.Debug("Loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Notifier.Channels = splitChannels(cfg.Notifier.Channels)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitChannels accepts both a YAML list and a comma separated env value.
func splitChannels(in []string) []string {
	var out []string
	for _, item := range in {
		for _, c := range strings.Split(item, ",") {
			c = strings.ToLower(strings.TrimSpace(c))
			if c != "" {
				out = append(out, c)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	switch c.Notifier.Backend {
	case constants.BackendLocal, constants.BackendQueue:
	default:
		return fmt.Errorf("invalid notifier.backend %q (must be %s or %s)", c.Notifier.Backend, constants.BackendLocal, constants.BackendQueue)
	}
	for _, ch := range c.Notifier.Channels {
		switch ch {
		case constants.ChannelTray, constants.ChannelPush, constants.ChannelSMS:
		default:
			return fmt.Errorf("invalid notifier channel %q", ch)
		}
	}
	if c.API.RatePerSecond < 0 {
		return fmt.Errorf("api.rate_per_second cannot be negative")
	}
	return nil
}

// HasChannel reports whether the named delivery channel is enabled.
func (c *Config) HasChannel(name string) bool {
	for _, ch := range c.Notifier.Channels {
		if ch == name {
			return true
		}
	}
	return false
}
