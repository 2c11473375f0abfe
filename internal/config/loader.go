package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "BOATRACE"
	defaultConfigPath = "config/config.yaml"
	configPathEnv     = "BOATRACE_CONFIG_PATH"
)

// ResolvePath picks the config file: the flag value, then BOATRACE_CONFIG_PATH,
// then the default location.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envPath := os.Getenv(configPathEnv); envPath != "" {
		return envPath
	}
	return defaultConfigPath
}

// LoadDotEnv loads a .env file into the environment when one exists
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// BOATRACE_ prefixed variables override file values
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	// storage.vote_prefix is read from BOATRACE_STORAGE_VOTE_PREFIX
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand ${VAR} placeholders before viper sees the YAML
	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields. A missing file is not an error.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// Without a file, defaults and environment variables still apply

	// Unmarshal configuration into Config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "boatrace-vote")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("storage.region", "ap-northeast-1")
	v.SetDefault("storage.vote_prefix", "vote")
	v.SetDefault("storage.feed_prefix", "feed")
	v.SetDefault("storage.predictions_key", "predictions/df_predictions.json.gz")
	v.SetDefault("storage.timeout_seconds", 30)
	v.SetDefault("storage.max_retries", 3)
	v.SetDefault("storage.rate_limit", 20)
	v.SetDefault("storage.feed_cache_ttl_seconds", 300)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 5)

	v.SetDefault("vote.lead_minutes", 5)
	v.SetDefault("vote.payoff_lag_minutes", 10)

	v.SetDefault("loop.interval_seconds", 60)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
