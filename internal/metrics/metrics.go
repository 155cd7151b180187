package metrics

// Package metrics provides Prometheus metrics collection for the transfer
// construction services.
//
// This package includes:
// - Construction metrics (count, latency, failures by error kind)
// - Fee-asset resolution metrics (dropped candidates by reason)
// - Metrics HTTP server on configurable port
//
// Usage:
//   import "github.com/vultisig/xtransfer/internal/metrics"
//
//   // Start metrics server
//   metricsServer := metrics.StartMetricsServer(cfg.Metrics, []string{metrics.ServiceConstruction}, logger)
//   defer metricsServer.Stop(context.Background())
//
//   // Hand the recorder to the components
//   recorder := metrics.NewConstructionMetrics()
