package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/career-graph/modules/graph/infrastructure/persistence"
	"github.com/iota-uz/career-graph/modules/graph/presentation/controllers"
	"github.com/iota-uz/career-graph/modules/graph/services"
	"github.com/iota-uz/career-graph/pkg/configuration"
	"github.com/iota-uz/career-graph/pkg/eventbus"
	"github.com/iota-uz/career-graph/pkg/metrics"
	"github.com/iota-uz/career-graph/pkg/middleware"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	client := persistence.NewGraphClient(conf.Graph, logger)
	if err := client.Start(ctx); err != nil {
		logger.WithError(err).Fatal("failed to start graph client")
	}
	cancel()

	bus := eventbus.NewEventPublisher(logger)
	store := persistence.NewGraphRepository(client)
	fallback := persistence.NewRoleMemoryStore()

	ingest := services.NewIngestService(store, client, fallback, bus, logger)
	graph := services.NewGraphService(store, client, fallback, conf.PageSize, conf.MaxPageSize)

	router := mux.NewRouter()
	router.Use(middleware.WithLogger(logger, conf.RequestIDHeader))
	controllers.NewGraphAPIController(ingest, graph).Register(router)
	if conf.Prometheus.Enabled {
		metrics.NewPrometheusController(conf.Prometheus.Path).Register(router)
	}

	srv := &http.Server{
		Addr:         conf.SocketAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", conf.SocketAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("server shutdown failed")
	}
	client.Close(shutdownCtx)
	conf.Unload()
}
