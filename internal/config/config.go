// Package config provides configuration management for the boatrace vote runner.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/boatrace-vote/internal/storage"
	"github.com/yourusername/boatrace-vote/internal/vote"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Vote     VoteConfig     `mapstructure:"vote" validate:"required"`
	Loop     LoopConfig     `mapstructure:"loop" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// StorageConfig represents the object store holding feeds, ledgers and votes
type StorageConfig struct {
	Bucket              string  `mapstructure:"bucket" validate:"required"`
	Region              string  `mapstructure:"region" validate:"required"`
	Endpoint            string  `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKeyID         string  `mapstructure:"access_key_id"`
	SecretAccessKey     string  `mapstructure:"secret_access_key"`
	UsePathStyle        bool    `mapstructure:"use_path_style"`
	CreateBucket        bool    `mapstructure:"create_bucket"`
	VotePrefix          string  `mapstructure:"vote_prefix" validate:"required,objectkey"`
	FeedPrefix          string  `mapstructure:"feed_prefix" validate:"required,objectkey"`
	PredictionsKey      string  `mapstructure:"predictions_key" validate:"required,objectkey"`
	TimeoutSeconds      int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries          int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit           float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	FeedCacheTTLSeconds int     `mapstructure:"feed_cache_ttl_seconds" validate:"required,gt=0"`
}

// DatabaseConfig represents the optional PostgreSQL archive
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// BandConfig is a median and half-width
type BandConfig struct {
	Median float64 `mapstructure:"median"`
	Range  float64 `mapstructure:"range" validate:"gte=0"`
}

// VoteConfig represents the vote selector and its timing
type VoteConfig struct {
	Probability       BandConfig `mapstructure:"probability"`
	ExpectedReturn    BandConfig `mapstructure:"expected_return"`
	FixedUnits        int        `mapstructure:"fixed_units" validate:"gte=0"`
	TargetPayoff      float64    `mapstructure:"target_payoff" validate:"gte=0"`
	LeadMinutes       int        `mapstructure:"lead_minutes" validate:"required,gt=0"`
	PayoffLagMinutes  int        `mapstructure:"payoff_lag_minutes" validate:"required,gt=0"`
	ArchiveSettlement bool       `mapstructure:"archive_settlement"`
}

// LoopConfig represents the poll loop
type LoopConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds" validate:"required,gt=0"`
	HealthPort      int `mapstructure:"health_port" validate:"omitempty,min=1,max=65535"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// SecretsConfig points at an AWS Secrets Manager secret overlaid at startup
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// VoteParams converts the vote section into selector parameters
func (c *Config) VoteParams() vote.Params {
	return vote.Params{
		Probability:    vote.Band{Median: c.Vote.Probability.Median, Range: c.Vote.Probability.Range},
		ExpectedReturn: vote.Band{Median: c.Vote.ExpectedReturn.Median, Range: c.Vote.ExpectedReturn.Range},
		FixedUnits:     c.Vote.FixedUnits,
		TargetPayoff:   c.Vote.TargetPayoff,
	}
}

// VoteLead is how long before a race's start it becomes eligible for a vote
func (c *Config) VoteLead() time.Duration {
	return time.Duration(c.Vote.LeadMinutes) * time.Minute
}

// PayoffLag is how long after a race's start it becomes eligible for payoff
func (c *Config) PayoffLag() time.Duration {
	return time.Duration(c.Vote.PayoffLagMinutes) * time.Minute
}

// StorageKeys returns the object key layout
func (c *Config) StorageKeys() storage.Keys {
	return storage.Keys{
		VotePrefix:     c.Storage.VotePrefix,
		FeedPrefix:     c.Storage.FeedPrefix,
		PredictionsKey: c.Storage.PredictionsKey,
	}
}

// S3Config returns the S3 store settings
func (c *Config) S3Config() storage.S3Config {
	httpCfg := storage.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(c.Storage.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = c.Storage.MaxRetries
	httpCfg.RateLimit = c.Storage.RateLimit

	return storage.S3Config{
		Bucket:          c.Storage.Bucket,
		Region:          c.Storage.Region,
		Endpoint:        c.Storage.Endpoint,
		AccessKeyID:     c.Storage.AccessKeyID,
		SecretAccessKey: c.Storage.SecretAccessKey,
		UsePathStyle:    c.Storage.UsePathStyle,
		HTTP:            httpCfg,
	}
}

// FeedCacheTTL is how long a parsed feed stays cached
func (c *Config) FeedCacheTTL() time.Duration {
	return time.Duration(c.Storage.FeedCacheTTLSeconds) * time.Second
}

// LoopInterval is the poll loop period
func (c *Config) LoopInterval() time.Duration {
	return time.Duration(c.Loop.IntervalSeconds) * time.Second
}
