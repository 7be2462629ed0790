package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured security checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			eng, err := newEngine(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printHeader(out, "Security Checks")
			for _, e := range eng.svc.List() {
				fmt.Fprintf(out, "  %s  %-18s %s\n", statusLabel(e.State.Status), e.Definition.ID, e.Definition.Name)
				if e.Definition.Description != "" {
					fmt.Fprintf(out, "        %s\n", dimStyle.Render(e.Definition.Description))
				}
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}
