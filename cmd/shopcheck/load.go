package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/v0xg/shopcheck/internal/load"
)

func newLoadCmd(a *app) *cobra.Command {
	var (
		opts        load.Options
		minWait     time.Duration
		maxWait     time.Duration
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Simulate shoppers issuing the weighted request mix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile := load.DefaultProfile()
			if cmd.Flags().Changed("min-wait") {
				profile.MinWait = minWait
			}
			if cmd.Flags().Changed("max-wait") {
				profile.MaxWait = maxWait
			}

			opts.Logger = a.log
			opts.Metrics = load.NewMetrics()

			ctx := cmd.Context()
			if metricsAddr != "" {
				var cancel context.CancelFunc
				ctx, cancel = context.WithCancel(ctx)
				defer cancel()
				go func() {
					if err := opts.Metrics.Serve(ctx, metricsAddr, a.log); err != nil {
						a.log.WithError(err).Error("Metrics endpoint stopped")
					}
				}()
			}

			r, err := load.NewRunner(a.cfg.Base(), profile, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "→ Running %d users against %s...\n", opts.Users, a.cfg.BaseURL)
			summary, err := r.Run(ctx)
			summary.Print(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().IntVarP(&opts.Users, "users", "u", 10, "Simulated users")
	cmd.Flags().Float64VarP(&opts.SpawnRate, "spawn-rate", "r", 1, "Users started per second (0 starts all at once)")
	cmd.Flags().DurationVarP(&opts.Duration, "duration", "d", time.Minute, "Run length (0 runs until interrupted or iterations are done)")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", 0, "Requests per user (0 means no limit)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	cmd.Flags().DurationVar(&minWait, "min-wait", time.Second, "Shortest think time between requests")
	cmd.Flags().DurationVar(&maxWait, "max-wait", 5*time.Second, "Longest think time between requests")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	return cmd
}
