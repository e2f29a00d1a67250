package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/v0xg/shopcheck/internal/config"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	envFiles  []string
	verbose   bool
	logFormat string
	baseURL   string

	cfg config.Config
	log *logrus.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "shopcheck",
		Short: "End-to-end browser checks and load runs for the LazyLizard storefront",
		Long: `shopcheck drives a real browser through the storefront's shopping,
seller and admin flows, checks pages for broken links, and simulates
shoppers to put the site under load.

Examples:
  shopcheck run cart checkout
  shopcheck run --tolerate-timeouts --artifacts ./shots
  shopcheck load --users 50 --spawn-rate 5 --duration 2m`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "Environment files to load (missing files are skipped)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Show detailed progress")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "Log format: text, json")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Storefront base URL (default: SHOPCHECK_BASE_URL or "+config.DefaultBaseURL+")")

	root.AddCommand(
		newRunCmd(a),
		newListCmd(a),
		newLoadCmd(a),
		newLinksCmd(a),
		newDraftCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	log, err := newLogger(a.logFormat, a.verbose)
	if err != nil {
		return err
	}
	log.SetOutput(cmd.ErrOrStderr())
	a.log = log

	cfg, err := config.Load(a.envFiles...)
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log.WithField("base_url", cfg.BaseURL).Debug("Configuration loaded")
	return nil
}

func newLogger(format string, verbose bool) (*logrus.Logger, error) {
	log := logrus.New()
	switch format {
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q (supported: text, json)", format)
	}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log, nil
}
