package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nafia007/afd-submissions-sub001/internal/adapters/events/natsbus"
	"github.com/nafia007/afd-submissions-sub001/internal/app"
	"github.com/nafia007/afd-submissions-sub001/internal/config"
	"github.com/nafia007/afd-submissions-sub001/internal/core/ports"
	"github.com/nafia007/afd-submissions-sub001/internal/database"
	"github.com/nafia007/afd-submissions-sub001/internal/logging"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		interval time.Duration
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:          "sweeper",
		Short:        "Closes expired proposals and backfills missing allocations",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") {
				interval = cfg.SweepInterval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			repos, err := database.Open(ctx, cfg, false, logger)
			if err != nil {
				return err
			}
			defer repos.Close()

			var publisher ports.EventPublisher
			if cfg.NATSURL != "" {
				nats, err := natsbus.Connect(cfg.NATSURL, logger)
				if err != nil {
					return err
				}
				defer nats.Close()
				publisher = nats
			}

			ledger := app.New(repos, app.Options{
				EligibleRoles: cfg.EligibleRoles,
				OpenProposals: cfg.OpenProposals,
				Events:        publisher,
				Logger:        logger,
			})

			if interval > 0 {
				logger.WithField("interval", interval).Info("starting sweeper loop")
				ledger.Sweeper.Run(ctx, interval)
				return nil
			}

			// Bound a one-shot run so a stuck database cannot hang the job.
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			report, err := ledger.Sweeper.Sweep(ctx)
			if report != nil {
				logger.WithFields(logrus.Fields{
					"closed":     report.Closed,
					"backfilled": report.Backfilled,
					"proposals":  report.Proposals,
				}).Info("sweep completed")
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "repeat the sweep at this interval instead of running once")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "deadline for a single run")
	return cmd
}
