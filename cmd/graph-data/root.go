package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "graph-data",
		Short:         "Graph ETL tool for roles, competencies, requires and adjacency",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newRolesCmd())
	cmd.AddCommand(newCompetenciesCmd())
	cmd.AddCommand(newRequiresCmd())
	cmd.AddCommand(newAdjacencyCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newAllCmd())
	cmd.AddCommand(newConvertCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}

func main() {
	Execute()
}
