package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpsertsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "career_graph_upserts_created_total",
		Help: "Entities and edges created by ingestion batches.",
	}, []string{"kind"})

	UpsertsUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "career_graph_upserts_updated_total",
		Help: "Entities and edges merged into existing records by ingestion batches.",
	}, []string{"kind"})

	UpsertsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "career_graph_upserts_failed_total",
		Help: "Rows rejected during mapping or writing.",
	}, []string{"kind"})

	HealthProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "career_graph_health_probes_total",
		Help: "Graph store health probes by resulting status.",
	}, []string{"status"})
)
