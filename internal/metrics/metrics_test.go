package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vultisig/xtransfer/internal/types"
)

func TestRecordConstruction(t *testing.T) {
	m := NewConstructionMetrics()

	before := testutil.ToFloat64(constructionErrorsTotal.WithLabelValues(KindUtxoSend, string(types.KindInsufficientFunds)))
	m.RecordConstruction(KindUtxoSend, "bitcoin", fmt.Errorf("select: %w", types.ErrInsufficientFunds), time.Millisecond)
	after := testutil.ToFloat64(constructionErrorsTotal.WithLabelValues(KindUtxoSend, string(types.KindInsufficientFunds)))
	assert.Equal(t, before+1, after)

	okBefore := testutil.ToFloat64(constructionsTotal.WithLabelValues(KindXcmTransfer, "polkadot", "success"))
	m.RecordConstruction(KindXcmTransfer, "polkadot", nil, time.Millisecond)
	assert.Equal(t, okBefore+1, testutil.ToFloat64(constructionsTotal.WithLabelValues(KindXcmTransfer, "polkadot", "success")))
}

func TestRecordCandidateDropped(t *testing.T) {
	m := NewConstructionMetrics()
	label := string(types.KindNoLiquidity)

	before := testutil.ToFloat64(feeAssetCandidatesDropped.WithLabelValues("amm-reserve", label))
	m.RecordCandidateDropped("amm-reserve", types.ErrNoLiquidity)
	assert.Equal(t, before+1, testutil.ToFloat64(feeAssetCandidatesDropped.WithLabelValues("amm-reserve", label)))
}

func TestOrNoop(t *testing.T) {
	r := OrNoop(nil)
	_, ok := r.(Noop)
	require.True(t, ok)
	r.RecordConstruction("x", "y", errors.New("z"), 0)

	m := NewConstructionMetrics()
	assert.Same(t, m, OrNoop(m))
}

func TestStartMetricsServer_Disabled(t *testing.T) {
	logger := logrus.New()
	s := StartMetricsServer(Config{Enabled: false}, []string{ServiceConstruction}, logger)
	assert.Nil(t, s)
	assert.NoError(t, s.Stop(context.Background()))
}
