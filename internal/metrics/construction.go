package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vultisig/xtransfer/internal/types"
)

var (
	constructionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xtransfer",
			Subsystem: "construction",
			Name:      "total",
			Help:      "Total number of constructed transfer artifacts",
		},
		[]string{"kind", "chain", "status"}, // success, error
	)

	constructionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "xtransfer",
			Subsystem: "construction",
			Name:      "duration_seconds",
			Help:      "Time taken to construct a transfer artifact",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind", "chain"},
	)

	constructionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xtransfer",
			Subsystem: "construction",
			Name:      "errors_total",
			Help:      "Construction failures by error kind",
		},
		[]string{"kind", "error_kind"},
	)

	constructionFeeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xtransfer",
			Subsystem: "construction",
			Name:      "fee_smallest_units_total",
			Help:      "Sum of fees of constructed UTXO transactions, in smallest units",
		},
		[]string{"chain"},
	)

	feeAssetResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xtransfer",
			Subsystem: "fee_asset",
			Name:      "resolutions_total",
			Help:      "Total number of fee-asset resolutions",
		},
		[]string{"chain", "strategy"},
	)

	feeAssetCandidatesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xtransfer",
			Subsystem: "fee_asset",
			Name:      "candidates_dropped_total",
			Help:      "Fee-asset candidates excluded from the payable list",
		},
		[]string{"strategy", "reason"},
	)
)

// Construction kinds for consistent labeling
const (
	KindXcmTransfer   = "xcm_transfer"
	KindFeeEstimation = "xcm_fee_estimation"
	KindUtxoSend      = "utxo_send"
	KindUtxoSendAll   = "utxo_send_all"
)

// Recorder is what the components report to.
type Recorder interface {
	RecordConstruction(kind, chain string, err error, duration time.Duration)
	RecordFee(chain string, fee uint64)
	RecordResolution(chain, strategy string)
	RecordCandidateDropped(strategy string, err error)
}

// ConstructionMetrics records to the process-wide Prometheus registry.
type ConstructionMetrics struct{}

func NewConstructionMetrics() *ConstructionMetrics {
	return &ConstructionMetrics{}
}

// RecordConstruction records one construction attempt
func (m *ConstructionMetrics) RecordConstruction(kind, chain string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
		constructionErrorsTotal.WithLabelValues(kind, string(types.KindOf(err))).Inc()
	}

	constructionsTotal.WithLabelValues(kind, chain, status).Inc()
	constructionDuration.WithLabelValues(kind, chain).Observe(duration.Seconds())
}

func (m *ConstructionMetrics) RecordFee(chain string, fee uint64) {
	constructionFeeTotal.WithLabelValues(chain).Add(float64(fee))
}

func (m *ConstructionMetrics) RecordResolution(chain, strategy string) {
	feeAssetResolutionsTotal.WithLabelValues(chain, strategy).Inc()
}

// RecordCandidateDropped records why a fee candidate was excluded
func (m *ConstructionMetrics) RecordCandidateDropped(strategy string, err error) {
	feeAssetCandidatesDropped.WithLabelValues(strategy, string(types.KindOf(err))).Inc()
}

// Noop discards everything. It is the default when no recorder is wired.
type Noop struct{}

func (Noop) RecordConstruction(string, string, error, time.Duration) {}
func (Noop) RecordFee(string, uint64)                                {}
func (Noop) RecordResolution(string, string)                         {}
func (Noop) RecordCandidateDropped(string, error)                    {}

// OrNoop returns r, or Noop when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return Noop{}
	}
	return r
}
