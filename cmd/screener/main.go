package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"MarketScreener/internal/collector"
	"MarketScreener/internal/config"
	"MarketScreener/internal/report"
	"MarketScreener/internal/scheduler"
	"MarketScreener/internal/screener"
)

// DefaultBacktestDate is the as-of date used when --date is omitted.
const DefaultBacktestDate = "2024-01-01"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("screener failed")
		stop()
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	logLevel   string
	tickers    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "screener",
		Short:         "Equity technical screener",
		Long:          "Scores a ticker universe on three horizons from technical indicators and writes a ranked xlsx report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", defaultConfig, "path to the YAML config")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&flags.tickers, "tickers", "", "comma-separated ticker override")

	root.AddCommand(newRunCmd(flags), newBacktestCmd(flags), newScheduleCmd(flags), newHistoryCmd(flags))
	return root
}

// loadConfig reads and validates the config and applies the root flags.
func loadConfig(flags *rootFlags) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, log.Logger, err
	}
	if flags.tickers != "" {
		cfg.Tickers = nil
		for _, t := range strings.Split(flags.tickers, ",") {
			if t = strings.TrimSpace(t); t != "" {
				cfg.Tickers = append(cfg.Tickers, strings.ToUpper(t))
			}
		}
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, log.Logger, fmt.Errorf("config validation: %w", err)
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, log.Logger, fmt.Errorf("log level: %w", err)
	}
	return cfg, log.Logger.Level(level), nil
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyse the universe with live data and write the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if output == "" {
				output = cfg.Report.Output
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			_, err = a.screener.Run(cmd.Context(), screener.Request{Mode: screener.ModeLive, Output: output})
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "report path (default from config)")
	return cmd
}

func newBacktestCmd(flags *rootFlags) *cobra.Command {
	var date, output string
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run the same analysis as of a historical date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asOf, err := time.ParseInLocation(collector.DateLayout, date, time.UTC)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if output == "" {
				output = screener.BacktestOutput(asOf)
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()
			_, err = a.screener.Run(cmd.Context(), screener.Request{Mode: screener.ModeBacktest, AsOf: asOf, Output: output})
			return err
		},
	}
	cmd.Flags().StringVar(&date, "date", DefaultBacktestDate, "as-of date, YYYY-MM-DD (bars before this date)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "report path (default backtest_report_<date>.xlsx)")
	return cmd
}

func newScheduleCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run live analyses on the configured cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			sched := scheduler.NewScheduler(ctx, a.screener, a.recorder, cfg.Report.Output, cfg.Report.TopN, logger)
			if err := sched.Register(cfg.Schedule.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if cfg.Metrics.Addr != "" {
				go func() {
					if err := a.metrics.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
						logger.Error().Err(err).Msg("metrics server")
					}
				}()
			}
			if a.telegram != nil {
				go a.telegram.StartPolling(ctx, sched.HandleCommand)
				logger.Info().Msg("telegram polling started")
			}
			if cfg.Schedule.RunOnStart {
				logger.Info().Msg("run on start enabled, executing live analysis now")
				go func() {
					if err := sched.RunNow(); err != nil && !errors.Is(err, report.ErrNoData) {
						logger.Warn().Err(err).Msg("startup run")
					}
				}()
			}

			logger.Info().Str("cron", cfg.Schedule.Cron).Time("next", sched.Next()).Msg("screener is running, press Ctrl+C to stop")
			<-ctx.Done()
			logger.Info().Msg("shutdown signal received, stopping")
			return nil
		},
	}
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history TICKER",
		Short: "Print a ticker's recorded master scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			rec, err := openRecorder(cfg, logger)
			if err != nil {
				return err
			}
			defer rec.Close()
			ticker := strings.ToUpper(args[0])
			points, err := rec.TickerHistory(cmd.Context(), ticker, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(points) == 0 {
				fmt.Fprintf(out, "no recorded runs for %s\n", ticker)
				return nil
			}
			fmt.Fprintf(out, "%-16s  %5s  %7s  %7s  %7s  %7s\n", "finished", "rank", "master", "long", "medium", "short")
			for _, p := range points {
				fmt.Fprintf(out, "%-16s  %5d  %7.2f  %7.2f  %7.2f  %7.2f\n",
					p.FinishedAt.Format("2006-01-02 15:04"), p.Rank, p.MasterScore, p.LongScore, p.MediumScore, p.ShortScore)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}
