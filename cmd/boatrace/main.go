// Package main provides the boatrace command: race list creation, voting,
// payoff and the poll loop over object storage.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/boatrace-vote/internal/config"
	"github.com/yourusername/boatrace-vote/internal/database"
	"github.com/yourusername/boatrace-vote/internal/feed"
	"github.com/yourusername/boatrace-vote/internal/logger"
	"github.com/yourusername/boatrace-vote/internal/metrics"
	"github.com/yourusername/boatrace-vote/internal/repository"
	"github.com/yourusername/boatrace-vote/internal/storage"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// annotationOffline marks commands that run without storage or a valid config
const annotationOffline = "offline"

var (
	configFile string
	nowFlag    string

	cfg    *config.Config
	appLog *logrus.Logger
	store  *storage.S3Store
	tables *storage.TableStore
	db     *database.DB
	repos  *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (default $BOATRACE_CONFIG_PATH or config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&nowFlag, "now", "", "Evaluate as if the current time were this RFC3339 timestamp")

	rootCmd.AddCommand(raceListCmd, voteCmd, payoffCmd, loopCmd, parseCmd, ingestCmd, summaryCmd)
}

var rootCmd = &cobra.Command{
	Use:           "boatrace",
	Short:         "Vote and settle boat races from scraped feeds",
	Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		offline := cmd.Annotations[annotationOffline] == "true"
		if err := loadConfig(cmd.Context(), offline); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if offline {
			return nil
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	cleanup()
	if err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context, offline bool) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	var err error
	path := config.ResolvePath(configFile)
	if offline {
		cfg, err = config.LoadWithDefaults(path)
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return err
	}

	appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	if offline {
		return nil
	}

	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return err
	}
	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	metrics.InitRegistry()

	var err error
	store, err = storage.NewS3Store(ctx, cfg.S3Config(), appLog)
	if err != nil {
		return err
	}
	if cfg.Storage.CreateBucket {
		if err := store.EnsureBucket(ctx); err != nil {
			return err
		}
	}

	tables = storage.NewTableStore(
		store,
		cfg.StorageKeys(),
		feed.NewParser(appLog),
		storage.NewFeedCache(cfg.FeedCacheTTL()),
		appLog,
	)

	if cfg.Database.Enabled {
		db, err = database.Initialize(ctx, cfg, appLog)
		if err != nil {
			return err
		}
		repos, err = repository.NewRepositories(db)
		if err != nil {
			return err
		}
	}

	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"bucket":      cfg.Storage.Bucket,
		"database":    cfg.Database.Enabled,
	}).Debug("Dependencies ready")
	return nil
}

func cleanup() {
	if db != nil {
		db.Close()
	}
	if store != nil {
		if err := store.Close(); err != nil && appLog != nil {
			appLog.WithError(err).Warn("Failed to close storage client")
		}
	}
}

// now returns the --now override or the wall clock
func now() (time.Time, error) {
	if nowFlag == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, nowFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: %w", nowFlag, err)
	}
	return t, nil
}

// clock returns a time source for the loop. With --now the loop starts at
// that instant and advances with the wall clock.
func clock() (func() time.Time, error) {
	if nowFlag == "" {
		return time.Now, nil
	}
	start, err := now()
	if err != nil {
		return nil, err
	}
	offset := time.Until(start)
	return func() time.Time { return time.Now().Add(offset) }, nil
}
