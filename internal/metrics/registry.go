package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const (
	ServiceConstruction = "construction"
	ServiceFeeAsset     = "fee_asset"
)

// RegisterMetrics registers metrics for the specified services
func RegisterMetrics(services []string, logger logrus.FieldLogger) {
	// Always register Go and process metrics
	registerIfNotExists(collectors.NewGoCollector(), "go_collector", logger)
	registerIfNotExists(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), "process_collector", logger)

	for _, service := range services {
		switch service {
		case ServiceConstruction:
			registerConstructionMetrics(logger)
		case ServiceFeeAsset:
			registerFeeAssetMetrics(logger)
		default:
			logger.Warnf("Unknown service type for metrics registration: %s", service)
		}
	}
}

// registerIfNotExists registers a collector if it's not already registered
func registerIfNotExists(collector prometheus.Collector, name string, logger logrus.FieldLogger) {
	if err := prometheus.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegErr) {
			// This is expected on restart/reload - just debug log
			logger.Debugf("%s already registered", name)
		} else {
			logger.Errorf("Failed to register %s: %v", name, err)
		}
	}
}

func registerConstructionMetrics(logger logrus.FieldLogger) {
	registerIfNotExists(constructionsTotal, "constructions_total", logger)
	registerIfNotExists(constructionDuration, "construction_duration", logger)
	registerIfNotExists(constructionErrorsTotal, "construction_errors_total", logger)
	registerIfNotExists(constructionFeeTotal, "construction_fee_total", logger)
}

func registerFeeAssetMetrics(logger logrus.FieldLogger) {
	registerIfNotExists(feeAssetResolutionsTotal, "fee_asset_resolutions_total", logger)
	registerIfNotExists(feeAssetCandidatesDropped, "fee_asset_candidates_dropped_total", logger)
}
