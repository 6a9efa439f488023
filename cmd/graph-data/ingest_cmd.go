package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/iota-uz/career-graph/modules/graph/domain/record"
	"github.com/iota-uz/career-graph/modules/graph/infrastructure/tabular"
	"github.com/iota-uz/career-graph/modules/graph/services"
)

type ingestFunc func(ctx context.Context, s *services.IngestService, rows []record.Fields) (services.Report, error)

func newIngestFileCmd(use, short string, kind record.Kind, apply ingestFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " FILE",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			rows, err := tabular.ReadFile(path)
			if err != nil {
				return withCode(exitInput, err)
			}

			eng, err := newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer eng.close(cmd.Context())

			report, err := apply(cmd.Context(), eng.ingest, rows)
			if err != nil {
				return err
			}
			return writeJSON(batchOutput{Kind: string(kind), File: path, Report: report})
		},
	}
}

func newRolesCmd() *cobra.Command {
	return newIngestFileCmd("roles", "Ingest Role nodes from a CSV/Excel/JSON file",
		record.KindRole,
		func(ctx context.Context, s *services.IngestService, rows []record.Fields) (services.Report, error) {
			return s.IngestRoles(ctx, rows)
		})
}

func newCompetenciesCmd() *cobra.Command {
	return newIngestFileCmd("competencies", "Ingest Competency nodes from a CSV/Excel/JSON file",
		record.KindCompetency,
		func(ctx context.Context, s *services.IngestService, rows []record.Fields) (services.Report, error) {
			return s.IngestCompetencies(ctx, rows)
		})
}

func newRequiresCmd() *cobra.Command {
	return newIngestFileCmd("requires", "Ingest REQUIRES edges (role -> competency) from a CSV/Excel/JSON file",
		record.KindRequires,
		func(ctx context.Context, s *services.IngestService, rows []record.Fields) (services.Report, error) {
			return s.IngestRequires(ctx, rows)
		})
}

func newAdjacencyCmd() *cobra.Command {
	return newIngestFileCmd("adjacency", "Ingest ADJACENT_TO edges (role <-> role, mirrored) from a CSV/Excel/JSON file",
		record.KindAdjacency,
		func(ctx context.Context, s *services.IngestService, rows []record.Fields) (services.Report, error) {
			return s.IngestAdjacency(ctx, rows)
		})
}
