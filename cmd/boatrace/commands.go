package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/boatrace-vote/internal/feed"
	"github.com/yourusername/boatrace-vote/internal/health"
	"github.com/yourusername/boatrace-vote/internal/repository"
	"github.com/yourusername/boatrace-vote/internal/scheduler"
	"github.com/yourusername/boatrace-vote/internal/service"
	"github.com/yourusername/boatrace-vote/internal/vote"
)

var errDatabaseDisabled = errors.New("database is disabled: set database.enabled to archive")

var (
	raceListDate string
	raceListFeed string
	ingestPrefix string
	parseLocal   bool
)

func init() {
	raceListCmd.Flags().StringVar(&raceListDate, "date", "", "Race day as YYYY-MM-DD (default: today in JST)")
	raceListCmd.Flags().StringVar(&raceListFeed, "feed", "", "Object key of the schedule feed")
	_ = raceListCmd.MarkFlagRequired("feed")

	parseCmd.Flags().BoolVar(&parseLocal, "local", false, "Read the feed from the local filesystem instead of storage")
	ingestCmd.Flags().StringVar(&ingestPrefix, "prefix", "", "Archive every feed under this object key prefix")
}

var raceListCmd = &cobra.Command{
	Use:   "racelist",
	Short: "Create the day's race list from a schedule feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := raceDay()
		if err != nil {
			return err
		}

		ledger, err := service.NewRaceListService(tables, appLog).Create(cmd.Context(), day, raceListFeed)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "race list for %s: %d races\n", day.Format("2006-01-02"), ledger.Len())
		return nil
	},
}

func raceDay() (time.Time, error) {
	if raceListDate != "" {
		return service.ParseRaceDay(raceListDate)
	}
	t, err := now()
	if err != nil {
		return time.Time{}, err
	}
	return service.RaceDay(t), nil
}

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Vote the next eligible race once",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := now()
		if err != nil {
			return err
		}
		svc, err := newVoteService()
		if err != nil {
			return err
		}
		res, err := svc.VoteNext(cmd.Context(), t)
		if err != nil {
			return err
		}
		printStep(cmd.OutOrStdout(), "vote", res)
		return nil
	},
}

var payoffCmd = &cobra.Command{
	Use:   "payoff",
	Short: "Settle the next eligible race once",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := now()
		if err != nil {
			return err
		}
		res, err := newPayoffService().SettleNext(cmd.Context(), t)
		if err != nil {
			return err
		}
		printStep(cmd.OutOrStdout(), "payoff", res)
		return nil
	},
}

var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Vote and settle races until every race on the list is settled",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		votes, err := newVoteService()
		if err != nil {
			return err
		}
		clk, err := clock()
		if err != nil {
			return err
		}

		srv := newHealthServer()
		sched := scheduler.NewScheduler(votes, newPayoffService(), appLog,
			scheduler.WithClock(clk),
			scheduler.WithObserver(func(res *scheduler.CycleResult, err error) {
				srv.ObserveCycle(cycleStatus(res, err))
			}),
		)
		if err := sched.ScheduleLoop(cfg.LoopInterval()); err != nil {
			return err
		}
		if err := srv.Start(ctx); err != nil {
			return err
		}

		// first cycle runs now rather than one interval from now
		if _, err := sched.RunCycle(ctx); err != nil {
			appLog.WithError(err).Warn("Initial cycle failed")
		}
		if err := sched.Start(); err != nil {
			return err
		}
		srv.SetReady(true)
		defer sched.Stop()

		select {
		case <-sched.Done():
			fmt.Fprintln(cmd.OutOrStdout(), "all races settled")
		case <-ctx.Done():
			appLog.Info("Loop interrupted")
		}
		srv.SetReady(false)
		return nil
	},
}

var parseCmd = &cobra.Command{
	Use:         "parse <feed>",
	Short:       "Parse a feed batch and print per-table counts",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationOffline: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if parseLocal {
			data, err = os.ReadFile(args[0])
		} else {
			if err = setupDependencies(cmd.Context()); err != nil {
				return err
			}
			data, err = tables.Store().Get(cmd.Context(), args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read feed %s: %w", args[0], err)
		}

		parsed, report, err := feed.NewParser(appLog).ParseBytes(data)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), parsed, report)
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [feed...]",
	Short: "Archive parsed feeds in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if repos == nil {
			return errDatabaseDisabled
		}
		if len(args) == 0 && ingestPrefix == "" {
			return fmt.Errorf("give feed keys or --prefix")
		}

		svc := service.NewIngestService(tables, repos.Entities, appLog)
		var results []*service.IngestResult
		for _, key := range args {
			res, err := svc.Ingest(cmd.Context(), key)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		if ingestPrefix != "" {
			more, err := svc.IngestPrefix(cmd.Context(), ingestPrefix)
			results = append(results, more...)
			if err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		for _, res := range results {
			var total int64
			for _, n := range res.Inserted {
				total += n
			}
			fmt.Fprintf(out, "%s: %d rows inserted\n", res.FeedKey, total)
		}
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize every stored vote table",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := service.NewSummaryService(tables).Summarize(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "races\t%d\n", s.Races)
		fmt.Fprintf(w, "votes\t%d\n", s.Votes)
		fmt.Fprintf(w, "hits\t%d\t(%.1f%%)\n", s.Hits, s.HitRate()*100)
		fmt.Fprintf(w, "cost\t%s\n", s.Cost.StringFixed(2))
		fmt.Fprintf(w, "return\t%s\t(%.1f%%)\n", s.Return.StringFixed(2), s.ReturnRate()*100)
		fmt.Fprintf(w, "profit\t%s\n", s.Profit.StringFixed(2))
		return w.Flush()
	},
}

func newVoteService() (*service.VoteService, error) {
	selector, err := vote.NewSelector(cfg.VoteParams())
	if err != nil {
		return nil, err
	}
	appLog.WithFields(logrus.Fields(selector.GetParameters())).Debug("Vote selector configured")
	return service.NewVoteService(tables, selector, cfg.VoteLead(), appLog), nil
}

func newPayoffService() *service.PayoffService {
	var archive repository.VoteResultRepository
	if repos != nil && cfg.Vote.ArchiveSettlement {
		archive = repos.VoteResults
	}
	return service.NewPayoffService(tables, cfg.PayoffLag(), archive, appLog)
}

func newHealthServer() *health.Server {
	checks := map[string]health.CheckFunc{"storage": store.Ping}
	if db != nil {
		checks["database"] = db.Ping
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	return health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        cfg.Loop.HealthPort,
		MetricsPath: metricsPath,
		StaleAfter:  3 * cfg.LoopInterval(),
		Logger:      appLog,
		Checks:      checks,
	})
}

func cycleStatus(res *scheduler.CycleResult, err error) health.CycleStatus {
	status := health.CycleStatus{RunID: res.RunID.String(), At: time.Now(), Clock: res.Now}
	if res.Vote != nil {
		status.Vote = string(res.Vote.Outcome)
	}
	if res.Payoff != nil {
		status.Payoff = string(res.Payoff.Outcome)
		status.Remaining = res.Payoff.Remaining
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

func printStep(w io.Writer, step string, res *service.StepResult) {
	if res.RaceID == "" {
		fmt.Fprintf(w, "%s: %s (%d races remaining)\n", step, res.Outcome, res.Remaining)
		return
	}
	fmt.Fprintf(w, "%s: %s %s (%d races remaining)\n", step, res.RaceID, res.Outcome, res.Remaining)
}

func printReport(w io.Writer, parsed *feed.Tables, report *feed.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "kind\trows\tparsed\tskipped")
	counts := parsed.Counts()
	for _, kind := range feed.Kinds() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", kind, counts[kind], report.Parsed[kind], report.Skipped[kind])
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "unclassified: %d, failures: %d, took %s\n", report.Unclassified, len(report.Failures), report.Duration)
	for _, f := range report.Failures {
		fmt.Fprintf(w, "  %v\n", f)
	}
}
