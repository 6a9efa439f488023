package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iota-uz/career-graph/modules/graph/domain/record"
	"github.com/iota-uz/career-graph/modules/graph/infrastructure/tabular"
	"github.com/iota-uz/career-graph/modules/graph/services"
)

// seed ingestion order matters: nodes before edges keeps stub creation to a
// minimum, though edges arriving first would still succeed.
var seedOrder = []struct {
	kind  record.Kind
	file  string
	apply ingestFunc
}{
	{record.KindRole, "roles.json", func(ctx context.Context, s *services.IngestService, rows []record.Fields) (services.Report, error) {
		return s.IngestRoles(ctx, rows)
	}},
	{record.KindCompetency, "competencies.json", func(ctx context.Context, s *services.IngestService, rows []record.Fields) (services.Report, error) {
		return s.IngestCompetencies(ctx, rows)
	}},
	{record.KindRequires, "requires.json", func(ctx context.Context, s *services.IngestService, rows []record.Fields) (services.Report, error) {
		return s.IngestRequires(ctx, rows)
	}},
	{record.KindAdjacency, "adjacency.json", func(ctx context.Context, s *services.IngestService, rows []record.Fields) (services.Report, error) {
		return s.IngestAdjacency(ctx, rows)
	}},
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [DIR]",
		Short: "Ingest JSON seed files (roles.json, competencies.json, requires.json, adjacency.json) from a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "seed"
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
				path := filepath.Join(dir, entry.file)
				if _, err := os.Stat(path); err != nil {
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
			return writeJSON(outputs)
		},
	}
}
