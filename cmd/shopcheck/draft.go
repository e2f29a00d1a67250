package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/v0xg/shopcheck/internal/ai"
	"github.com/v0xg/shopcheck/internal/browser"
	"github.com/v0xg/shopcheck/internal/scenario"
)

func newDraftCmd(a *app) *cobra.Command {
	var (
		provider string
		model    string
		name     string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "draft <path> <request>",
		Short: "Map a page and let a model draft a scenario file for it",
		Long: `draft opens a storefront page, collects its interactive elements and asks
an AI provider for the steps that fulfil the request. The result is a
scenario file that "shopcheck run --file" accepts.

Example:
  shopcheck draft /en/login "log in as a buyer and check the dashboard shows the profile link"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, request := args[0], args[1]
			cfg := a.cfg
			if provider != "" {
				cfg.DraftProvider = provider
			}
			if model != "" {
				cfg.DraftModel = model
			}
			if name == "" {
				name = "drafted" + strings.NewReplacer("/", "-").Replace(strings.TrimRight(path, "/"))
			}

			p, err := ai.NewProvider(ai.Settings{
				Provider: cfg.DraftProvider,
				Model:    cfg.DraftModel,
				APIKey:   cfg.DraftKey(),
			})
			if err != nil {
				return fmt.Errorf("AI provider init failed: %w", err)
			}

			progress := cmd.ErrOrStderr()
			fmt.Fprintf(progress, "→ Mapping %s... ", path)
			var pm *browser.PageMap
			err = browser.With(cmd.Context(), cfg.Base(), browser.OptionsFrom(cfg, a.log), func(s *browser.Session) error {
				if err := s.Navigate(cmd.Context(), path); err != nil {
					return err
				}
				s.WaitIdle(cfg.Timeout)
				pm, err = s.PageMap()
				return err
			})
			if err != nil {
				fmt.Fprintln(progress, "failed")
				return fmt.Errorf("mapping page failed: %w", err)
			}
			fmt.Fprintf(progress, "done (found %d interactive elements)\n", len(pm.Elements))

			fmt.Fprintf(progress, "→ Drafting steps via %s... ", p.Name())
			s, err := ai.NewDrafter(p, a.log).Scenario(cmd.Context(), name, pm, request)
			if err != nil {
				fmt.Fprintln(progress, "failed")
				return err
			}
			fmt.Fprintf(progress, "done (%d steps)\n", len(s.Actions))

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := scenario.Encode(out, []scenario.Scenario{s}); err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintf(progress, "✓ Wrote %s\n", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "AI provider: claude, openai (default: SHOPCHECK_DRAFT_PROVIDER or claude)")
	cmd.Flags().StringVar(&model, "model", "", "Specific model override")
	cmd.Flags().StringVar(&name, "name", "", "Scenario name (default: derived from the path)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the scenario file here instead of stdout")
	return cmd
}
