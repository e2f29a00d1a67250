package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/v0xg/shopcheck/internal/catalog"
	"github.com/v0xg/shopcheck/internal/scenario"
)

func newListCmd(a *app) *cobra.Command {
	var steps bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog scenarios by suite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := catalog.Registry(a.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, suite := range reg.Suites() {
				fmt.Fprintf(out, "%s\n", suite)
				for _, s := range reg.Suite(suite) {
					login := ""
					if s.LoginAs != scenario.Anonymous {
						login = fmt.Sprintf(" [as %s]", s.LoginAs)
					}
					fmt.Fprintf(out, "  %-28s %s%s\n", s.Name, s.Description, login)
					if steps {
						for i, action := range s.Steps(a.cfg) {
							fmt.Fprintf(out, "      %2d. %s\n", i+1, action)
						}
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&steps, "steps", false, "Print every step")
	return cmd
}
