// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blinklabs-io/civicprep"
	"github.com/blinklabs-io/civicprep/internal/config"
	"github.com/blinklabs-io/civicprep/internal/version"
)

const shutdownTimeout = 30 * time.Second

// New builds a node from the loaded config. The caller opens and stops it.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*civicprep.Node, error) {
	return civicprep.New(
		civicprep.NewConfig(
			civicprep.WithLogger(logger),
			civicprep.WithPrometheusRegistry(promRegistry),
			civicprep.WithDatabasePath(cfg.DataDir),
			civicprep.WithMetadataPlugin(cfg.MetadataPlugin),
			civicprep.WithPostgres(cfg.Postgres),
			civicprep.WithAPIKey(cfg.APIKey),
			civicprep.WithBaseURL(cfg.BaseURL),
			civicprep.WithGeocodeBaseURL(cfg.GeocodeBaseURL),
			civicprep.WithRequestTimeout(cfg.RequestTimeout),
			civicprep.WithSyncInterval(cfg.SyncInterval),
			civicprep.WithPurgeDeleted(cfg.PurgeDeleted),
			civicprep.WithTracing(cfg.Tracing),
			civicprep.WithTracingStdout(cfg.TracingStdout),
			civicprep.WithShutdownTimeout(shutdownTimeout),
			civicprep.WithVersion(version.GetVersionString()),
		),
	)
}

// Run keeps the election mirror in sync and serves metrics until SIGINT or
// SIGTERM
func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(
		fmt.Sprintf("config: %+v", redacted(cfg)),
		"component", "node",
	)
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	n, err := New(cfg, logger, registry)
	if err != nil {
		return err
	}
	// Metrics listener
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsAddr := net.JoinHostPort(
		cfg.MetricsBindAddr,
		strconv.FormatUint(uint64(cfg.MetricsPort), 10),
	)
	logger.Info(
		"serving prometheus metrics on "+metricsAddr,
		"component", "node",
	)
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	listenErr := make(chan error, 1)
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			listenErr <- fmt.Errorf("failed to start metrics listener: %w", err)
		}
	}()
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()
	runCtx, runCancel := context.WithCancel(signalCtx)
	defer runCancel()

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- n.Run(runCtx)
	}()

	var runErr error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown", "component", "node")
		runCancel()
		runErr = <-errChan
	case err := <-listenErr:
		logger.Error(err.Error(), "component", "node")
		runCancel()
		<-errChan
		runErr = err
	case err := <-errChan:
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", "component", "node", "error", err)
	}
	if err := n.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "component", "node", "error", err)
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		return runErr
	}
	logger.Info("shutdown complete", "component", "node")
	return nil
}

// redacted returns a copy of cfg that is safe to log
func redacted(cfg *config.Config) config.Config {
	ret := *cfg
	if ret.APIKey != "" {
		ret.APIKey = "REDACTED"
	}
	if ret.Postgres.Password != "" {
		ret.Postgres.Password = "REDACTED"
	}
	if ret.Postgres.DSN != "" {
		ret.Postgres.DSN = "REDACTED"
	}
	return ret
}
