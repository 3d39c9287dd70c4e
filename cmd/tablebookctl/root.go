package main

import "github.com/spf13/cobra"

const JobName = "tablebookctl"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tablebookctl",
		Short:         "Operational tooling for the tablebook reservation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newTokenCmd())

	return root
}
