package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vultisig/xtransfer/internal/graceful"
	"github.com/vultisig/xtransfer/internal/logging"
	"github.com/vultisig/xtransfer/internal/metrics"
	"github.com/vultisig/xtransfer/internal/registry"
	"github.com/vultisig/xtransfer/internal/reqid"
	"github.com/vultisig/xtransfer/internal/util"
)

var (
	mode        = flag.String("mode", "", "what to construct: xcm, utxo, utxo-all or fee-assets")
	assetSlug   = flag.String("asset", "", "asset slug")
	originSlug  = flag.String("from", "", "origin chain slug")
	destSlug    = flag.String("to", "", "destination chain slug")
	sender      = flag.String("sender", "", "sender address")
	recipient   = flag.String("recipient", "", "recipient address")
	amount      = flag.String("amount", "", "amount in whole units, e.g. 1.5")
	feeCurrency = flag.String("fee-asset", "", "asset slug to pay xcm fees with")
	feeAmount   = flag.String("fee", "", "fee in whole native units, for fee-assets")
	balances    = flag.String("balances", "", "fee-assets balances as slug=amount,slug=amount")
)

var modes = map[string]func(context.Context, *app) (any, error){
	"xcm":        buildXcm,
	"utxo":       buildUtxo,
	"utxo-all":   buildUtxoAll,
	"fee-assets": resolveFeeAssets,
}

// app carries what every mode needs.
type app struct {
	cfg      config
	logger   *logrus.Logger
	registry *registry.Registry
	metrics  *metrics.ConstructionMetrics
	ids      reqid.Generator
}

func main() {
	flag.Parse()

	ctx, stop := graceful.Context(context.Background())
	defer stop()

	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	logger := logging.NewLogger(cfg.LogFormat, cfg.LogLevel)

	run, ok := modes[*mode]
	if !ok {
		logger.Fatalf("unknown mode %q", *mode)
	}

	metricsServer := metrics.StartMetricsServer(
		cfg.Metrics,
		[]string{metrics.ServiceConstruction, metrics.ServiceFeeAsset},
		logger,
	)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			logger.Errorf("failed to stop metrics server: %v", err)
		}
	}()

	reg, err := loadRegistry(cfg.RegistryPath)
	if err != nil {
		logger.Fatalf("failed to load registry: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"mode":     *mode,
		"registry": util.IfEmptyElse(cfg.RegistryPath, "built-in"),
	}).Debug("constructor ready")

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  metrics.NewConstructionMetrics(),
		ids:      reqid.NewUUIDGenerator(),
	}

	out, err := run(ctx, a)
	if err != nil {
		logger.WithError(err).Error("construction failed")
		stop()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatalf("failed to write output: %v", err)
	}
}

func loadRegistry(path string) (*registry.Registry, error) {
	if path == "" {
		return registry.Default()
	}
	return registry.LoadFile(path)
}
