package main

import (
	"github.com/spf13/cobra"

	"github.com/iota-uz/career-graph/modules/graph/infrastructure/tabular"
)

func newConvertCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a CSV/Excel file to a JSON seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := tabular.ConvertToJSON(args[0], output)
			if err != nil {
				return withCode(exitInput, err)
			}
			return writeJSON(map[string]any{
				"input":   args[0],
				"output":  output,
				"records": count,
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "seed/converted.json", "Destination JSON file")
	return cmd
}
