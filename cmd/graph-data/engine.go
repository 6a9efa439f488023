package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/iota-uz/career-graph/modules/graph/infrastructure/persistence"
	"github.com/iota-uz/career-graph/modules/graph/services"
	"github.com/iota-uz/career-graph/pkg/configuration"
	"github.com/iota-uz/career-graph/pkg/eventbus"
	"github.com/iota-uz/career-graph/pkg/logging"
)

type engine struct {
	ingest *services.IngestService
	client *persistence.GraphClient
}

// newEngine wires a full ingestion stack against the configured graph and
// requires it to be reachable: the CLI has no use for the in-memory fallback,
// rows written there would vanish on exit.
func newEngine(ctx context.Context) (*engine, error) {
	conf := configuration.Use()
	logger := logging.ConsoleLogger(conf.LogrusLogLevel())

	client := persistence.NewGraphClient(conf.Graph, logger)
	if err := client.Start(ctx); err != nil {
		return nil, err
	}

	if status := client.Status(ctx); status != services.StatusHealthy {
		client.Close(ctx)
		return nil, withCode(exitUnavailable, errors.Errorf("graph store is %s, refusing to ingest", status))
	}

	store := persistence.NewGraphRepository(client)
	fallback := persistence.NewRoleMemoryStore()
	ingest := services.NewIngestService(store, client, fallback, eventbus.NewEventPublisher(logger), logger)
	return &engine{ingest: ingest, client: client}, nil
}

func (e *engine) close(ctx context.Context) {
	e.client.Close(ctx)
}

type batchOutput struct {
	Kind   string          `json:"kind"`
	File   string          `json:"file"`
	Report services.Report `json:"report"`
}
