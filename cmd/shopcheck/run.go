package main

import (
	"github.com/spf13/cobra"

	"github.com/v0xg/shopcheck/internal/catalog"
	"github.com/v0xg/shopcheck/internal/runner"
	"github.com/v0xg/shopcheck/internal/scenario"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		files            []string
		tolerateTimeouts bool
		artifacts        string
		headless         bool
		strictHost       bool
		productImage     string
	)
	cmd := &cobra.Command{
		Use:   "run [scenario|suite ...]",
		Short: "Run scenarios in a browser (all of them by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("headless") {
				cfg.Headless = headless
			}
			if cmd.Flags().Changed("strict-host") {
				cfg.StrictHost = strictHost
			}
			if artifacts != "" {
				cfg.ArtifactDir = artifacts
			}
			if productImage != "" {
				cfg.ProductImage = productImage
			}

			reg, err := catalog.Registry(cfg)
			if err != nil {
				return err
			}
			for _, f := range files {
				loaded, err := scenario.LoadFile(f)
				if err != nil {
					return err
				}
				for _, s := range loaded {
					if err := reg.Add(s); err != nil {
						return err
					}
				}
			}
			scenarios, err := reg.Select(args...)
			if err != nil {
				return err
			}

			r := runner.New(cfg, a.log,
				runner.TolerateTimeouts(tolerateTimeouts),
				runner.WithOutput(cmd.OutOrStdout()),
				runner.WithArtifacts(cfg.ArtifactDir),
			)
			report, err := r.Run(cmd.Context(), scenarios)
			report.Print(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "YAML scenario files to add to the catalog")
	cmd.Flags().BoolVar(&tolerateTimeouts, "tolerate-timeouts", false, "Report missing elements and expired waits as aborted instead of failed")
	cmd.Flags().StringVar(&artifacts, "artifacts", "", "Save a screenshot of every failure in this directory")
	cmd.Flags().BoolVar(&headless, "headless", true, "Run the browser without a window")
	cmd.Flags().BoolVar(&strictHost, "strict-host", false, "Block every browser request that leaves the storefront host")
	cmd.Flags().StringVar(&productImage, "product-image", "", "Image the add-product scenario uploads")
	return cmd
}
