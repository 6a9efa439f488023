package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/career-graph/modules/graph/services"
	"github.com/iota-uz/career-graph/pkg/configuration"
	"github.com/iota-uz/career-graph/pkg/metrics"
)

// GraphClient owns the Neo4j driver lifecycle and answers availability
// questions. Every status call runs a fresh probe: flag, configuration,
// connectivity, then a trivial query. Nothing is cached between calls, so a
// recovered server is visible on the next probe.
type GraphClient struct {
	opts   configuration.GraphOptions
	log    *logrus.Logger
	driver neo4j.DriverWithContext
}

func NewGraphClient(opts configuration.GraphOptions, log *logrus.Logger) *GraphClient {
	return &GraphClient{opts: opts, log: log}
}

// Start initializes the driver once when the feature is enabled and
// configured. A failed connectivity check is not fatal here: the process
// comes up in degraded mode and health probes report the real state.
func (c *GraphClient) Start(ctx context.Context) error {
	if !c.opts.Enabled {
		c.log.Info("graph client start skipped: feature flag disabled")
		return nil
	}
	if !c.opts.Configured() {
		c.log.WithField("missing", c.opts.MissingEnvs()).
			Warn("graph client misconfigured: flag enabled but connection vars missing")
		return nil
	}
	if c.driver != nil {
		return nil
	}

	driver, err := neo4j.NewDriverWithContext(
		c.opts.URI,
		neo4j.BasicAuth(c.opts.Username, c.opts.Password, ""),
		func(cfg *config.Config) {
			cfg.SocketConnectTimeout = c.opts.ConnectTimeout
		},
	)
	if err != nil {
		c.log.WithError(err).Warn("graph driver construction failed, continuing degraded")
		return nil
	}
	c.driver = driver

	if err := driver.VerifyConnectivity(ctx); err != nil {
		c.log.WithError(err).Warn("graph client started but connectivity verification failed")
	} else {
		c.log.Info("graph client started, connectivity verified")
	}
	return nil
}

func (c *GraphClient) Close(ctx context.Context) {
	if c.driver == nil {
		return
	}
	if err := c.driver.Close(ctx); err != nil {
		c.log.WithError(err).Warn("error closing graph driver")
	}
	c.driver = nil
}

// Driver exposes the underlying driver, or nil while disabled or unstarted.
func (c *GraphClient) Driver() neo4j.DriverWithContext {
	return c.driver
}

// categorizeProbeError maps a driver error to (category, code, hint).
func categorizeProbeError(err error) (string, string, string) {
	var neo4jErr *neo4j.Neo4jError
	if errors.As(err, &neo4jErr) {
		if strings.Contains(neo4jErr.Code, "Security.Unauthorized") || neo4jErr.IsAuthenticationFailed() {
			return "auth", neo4jErr.Code,
				"Neo4j authentication failed. Verify NEO4J_USERNAME/NEO4J_PASSWORD and database auth."
		}
	}
	low := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(low, "timeout") || strings.Contains(low, "timed out") {
		return "timeout", "Timeout",
			"Connection timed out. Consider adjusting NEO4J_CONNECT_TIMEOUT and verify reachability."
	}
	if neo4j.IsConnectivityError(err) || strings.Contains(low, "connection refused") || strings.Contains(low, "no such host") {
		return "network", "ServiceUnavailable",
			"Neo4j service unavailable. Check NEO4J_URI host/port and network connectivity."
	}
	return "other", "", "Unexpected error during graph connectivity. Check server logs for details."
}

// CheckHealth runs one full probe and returns the derived status together
// with the endpoint-shaped details.
func (c *GraphClient) CheckHealth(ctx context.Context) (services.Status, services.HealthDetails) {
	status, details := c.probe(ctx)
	metrics.HealthProbes.WithLabelValues(string(status)).Inc()
	return status, details
}

// Status derives the availability state from a fresh probe.
func (c *GraphClient) Status(ctx context.Context) services.Status {
	status, _ := c.CheckHealth(ctx)
	return status
}

func (c *GraphClient) probe(ctx context.Context) (services.Status, services.HealthDetails) {
	if !c.opts.Enabled {
		return services.StatusDisabled, services.HealthDetails{
			Category: "disabled",
			Message:  "Graph feature disabled by flag.",
			Hint:     "Set GRAPH_ENABLED=true to enable.",
		}
	}
	if !c.opts.Configured() {
		return services.StatusMisconfigured, services.HealthDetails{
			Category: "misconfigured",
			Message:  "Missing required env vars: " + strings.Join(c.opts.MissingEnvs(), ", "),
			Hint:     "Provide NEO4J_URI, NEO4J_USERNAME, and NEO4J_PASSWORD.",
		}
	}
	if c.driver == nil {
		return services.StatusUnhealthy, services.HealthDetails{
			Category: "network",
			Message:  "Neo4j driver not initialized.",
			Hint:     "Check earlier startup logs for driver initialization errors.",
		}
	}

	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		category, code, hint := categorizeProbeError(err)
		c.log.WithError(err).Debug("graph connectivity verification failed")
		return services.StatusUnhealthy, services.HealthDetails{
			Category: category,
			Message:  err.Error(),
			Hint:     hint,
			Code:     code,
		}
	}

	if err := c.runHealthQuery(ctx); err != nil {
		category, code, hint := categorizeProbeError(err)
		c.log.WithError(err).Debug("graph health query failed")
		return services.StatusUnhealthy, services.HealthDetails{
			Category: category,
			Message:  err.Error(),
			Hint:     hint,
			Code:     code,
		}
	}

	return services.StatusHealthy, services.HealthDetails{
		Healthy:  true,
		Category: "ok",
		Message:  "Connected",
	}
}

func (c *GraphClient) runHealthQuery(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.opts.Database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, c.opts.HealthQuery, nil)
	if err != nil {
		return err
	}
	rec, err := result.Single(ctx)
	if err != nil {
		return err
	}

	value, found := rec.Get("ok")
	if !found && len(rec.Values) > 0 {
		value = rec.Values[0]
	}
	switch v := value.(type) {
	case int64:
		if v == 1 {
			return nil
		}
	case bool:
		if v {
			return nil
		}
	}
	return fmt.Errorf("unexpected health query result: %v", value)
}
