package utxo

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vultisig/xtransfer/internal/blockchair"
	"github.com/vultisig/xtransfer/internal/metrics"
	"github.com/vultisig/xtransfer/internal/types"
)

// ChainSource is the read-only view of a UTXO chain the Network needs.
type ChainSource interface {
	FeeProvider
	PrevTxFetcher
	GetAllUnspent(ctx context.Context, address string) ([]blockchair.Utxo, error)
}

// Network builds unsigned sends for one UTXO chain. It never broadcasts.
type Network struct {
	params    ChainParams
	source    ChainSource
	send      *SendService
	selector  *CoinSelector
	assembler *Assembler
	metrics   metrics.Recorder
	logger    logrus.FieldLogger
}

func NewNetwork(
	network types.BitcoinNetwork,
	source ChainSource,
	estimator SizeEstimator,
	recorder metrics.Recorder,
	logger logrus.FieldLogger,
) (*Network, error) {
	params, err := ParamsFor(network)
	if err != nil {
		return nil, err
	}
	logger = logger.WithField("network", network)

	return &Network{
		params:    params,
		source:    source,
		send:      NewSendService(network),
		selector:  NewCoinSelector(params, estimator),
		assembler: NewAssembler(params, source, logger),
		metrics:   metrics.OrNoop(recorder),
		logger:    logger,
	}, nil
}

// SendRequest describes a send. Available and FeeRate are fetched when
// left empty.
type SendRequest struct {
	From      string
	To        string
	Amount    uint64
	FeeRate   uint64
	Available []Utxo
}

// BuildSend builds a PSBT paying req.Amount to req.To with change back to
// req.From.
func (n *Network) BuildSend(ctx context.Context, req SendRequest) (_ *Artifact, err error) {
	start := time.Now()
	defer func() {
		n.metrics.RecordConstruction(metrics.KindUtxoSend, string(n.params.Network), err, time.Since(start))
	}()

	return n.build(ctx, req, func(spend SpendRequest) (*CoinSelectionResult, error) {
		return n.selector.SelectForSpend(spend)
	})
}

// BuildSendAll builds a PSBT sweeping every available UTXO to req.To.
// req.Amount is ignored.
func (n *Network) BuildSendAll(ctx context.Context, req SendRequest) (_ *Artifact, err error) {
	start := time.Now()
	defer func() {
		n.metrics.RecordConstruction(metrics.KindUtxoSendAll, string(n.params.Network), err, time.Since(start))
	}()

	return n.build(ctx, req, func(spend SpendRequest) (*CoinSelectionResult, error) {
		return n.selector.SelectForSpendAll(spend)
	})
}

func (n *Network) build(
	ctx context.Context,
	req SendRequest,
	selectFn func(SpendRequest) (*CoinSelectionResult, error),
) (*Artifact, error) {
	recipientScript, changeScript, err := n.send.BuildTransfer(req.To, req.From)
	if err != nil {
		return nil, err
	}

	available := req.Available
	if available == nil {
		available, err = n.FetchUTXOs(ctx, req.From, changeScript)
		if err != nil {
			return nil, err
		}
	}

	feeRate := req.FeeRate
	if feeRate == 0 {
		feeRate, err = n.source.SatsPerByte(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: fee rate: %v", types.ErrRPCFailure, err)
		}
	}

	sel, err := selectFn(SpendRequest{
		Utxos:           available,
		Amount:          req.Amount,
		FeeRate:         feeRate,
		RecipientScript: recipientScript,
		ChangeScript:    changeScript,
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] coin selection: %w", n.params.Network, err)
	}

	artifact, err := n.assembler.Assemble(ctx, sel, recipientScript)
	if err != nil {
		return nil, fmt.Errorf("[%s] failed to build psbt: %w", n.params.Network, err)
	}
	n.metrics.RecordFee(string(n.params.Network), artifact.Fee)

	n.logger.WithFields(logrus.Fields{
		"txid":     artifact.TxID,
		"fee":      artifact.Fee,
		"fee_rate": feeRate,
		"inputs":   len(artifact.Inputs),
	}).Info("built unsigned send")

	return artifact, nil
}

// FetchUTXOs fetches all unspent outputs for an address. Every output of a
// single address shares its script.
func (n *Network) FetchUTXOs(ctx context.Context, address string, script []byte) ([]Utxo, error) {
	blockchairUtxos, err := n.source.GetAllUnspent(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get UTXOs: %v", types.ErrRPCFailure, err)
	}

	witness := IsWitnessScript(script)
	utxos := make([]Utxo, len(blockchairUtxos))
	for i, u := range blockchairUtxos {
		utxos[i] = Utxo{
			TxID:    u.TransactionHash,
			Vout:    u.Index,
			Value:   u.Value,
			Address: address,
			Script:  script,
			Witness: witness,
		}
	}
	return utxos, nil
}

// UpdateAvailableUTXOs removes used UTXOs and adds the change UTXO (if any) to the available list.
func UpdateAvailableUTXOs(available, used []Utxo, change *Utxo) []Utxo {
	usedSet := make(map[string]struct{}, len(used))
	for _, u := range used {
		usedSet[u.Outpoint()] = struct{}{}
	}

	result := make([]Utxo, 0, len(available)+1)
	for _, u := range available {
		if _, ok := usedSet[u.Outpoint()]; !ok {
			result = append(result, u)
		}
	}

	// Add change UTXO if present (allows spending unconfirmed change)
	if change != nil {
		result = append(result, *change)
	}

	return result
}
