package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/v0xg/shopcheck/internal/linkcheck"
)

func newLinksCmd(a *app) *cobra.Command {
	var (
		external    bool
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "links [path]",
		Short: "Check a page for broken links and missing images over plain HTTP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/en/"
			if len(args) == 1 {
				path = args[0]
			}
			checker := linkcheck.NewChecker(a.cfg.Base(), a.log)
			checker.External = external
			checker.Concurrency = concurrency

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "→ Checking %s... ", path)
			results, err := checker.Page(cmd.Context(), path)
			if err != nil {
				fmt.Fprintln(out, "failed")
				return err
			}
			broken := linkcheck.Broken(results)
			fmt.Fprintf(out, "done (%d references, %d broken)\n", len(results), len(broken))
			for _, r := range broken {
				fmt.Fprintf(out, "  %s\n", r)
			}
			if len(broken) > 0 {
				return fmt.Errorf("%d broken links or missing images", len(broken))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&external, "external", false, "Also check links to other hosts")
	cmd.Flags().IntVar(&concurrency, "concurrency", 8, "Parallel requests")
	return cmd
}
