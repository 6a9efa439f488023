package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/iota-uz/career-graph/modules/graph/infrastructure/tabular"
)

func newAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all [DIR]",
		Short: "Ingest every per-entity CSV/Excel file found in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "data"
			if len(args) == 1 {
				dir = args[0]
			}

			eng, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.close(cmd.Context())

			var outputs []batchOutput
			for _, entry := range seedOrder {
				base := entry.file[:len(entry.file)-len(".json")]
				path := pickFile(dir, base)
				if path == "" {
					continue
				}
				rows, err := tabular.ReadFile(path)
				if err != nil {
					return withCode(exitInput, err)
				}
				report, err := entry.apply(cmd.Context(), eng.ingest, rows)
				if err != nil {
					return err
				}
				outputs = append(outputs, batchOutput{Kind: string(entry.kind), File: path, Report: report})
			}
			if len(outputs) == 0 {
				return withCode(exitInput, errors.Errorf("no CSV/Excel files found in %s", dir))
			}
			return writeJSON(outputs)
		},
	}
}

func pickFile(dir, base string) string {
	for _, ext := range []string{".csv", ".xlsx"} {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
