package main

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/xtransfer/internal/blockchair"
	"github.com/vultisig/xtransfer/internal/evm"
	"github.com/vultisig/xtransfer/internal/feeasset"
	"github.com/vultisig/xtransfer/internal/metrics"
	"github.com/vultisig/xtransfer/internal/substrate"
	"github.com/vultisig/xtransfer/internal/types"
	"github.com/vultisig/xtransfer/internal/util"
	"github.com/vultisig/xtransfer/internal/utxo"
	"github.com/vultisig/xtransfer/internal/xcm"
)

type xcmOutput struct {
	Decision      xcm.ProtocolDecision `json:"decision"`
	Call          *xcm.CallDescriptor  `json:"call"`
	FeeEstimation *xcm.FeeEstimation   `json:"feeEstimation,omitempty"`
	Gas           *evm.GasQuote        `json:"gas,omitempty"`
	Approve       hexutil.Bytes        `json:"approve,omitempty"`
}

func buildXcm(ctx context.Context, a *app) (_ any, err error) {
	start := time.Now()
	defer func() {
		a.metrics.RecordConstruction(metrics.KindXcmTransfer, *originSlug, err, time.Since(start))
	}()

	asset, err := a.registry.Asset(*assetSlug)
	if err != nil {
		return nil, err
	}
	base, err := util.ToBaseUnits(*amount, asset.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidIntent, err)
	}
	intent := types.TransferIntent{
		Asset:            *assetSlug,
		OriginChain:      *originSlug,
		DestinationChain: *destSlug,
		Sender:           *sender,
		Recipient:        *recipient,
		Amount:           base.String(),
	}
	if err := intent.Validate(); err != nil {
		return nil, err
	}
	asset, origin, dest, err := a.registry.Resolve(intent)
	if err != nil {
		return nil, err
	}

	decision, err := xcm.SelectProtocol(asset, origin, dest)
	if err != nil {
		return nil, err
	}
	destFee, ok := new(big.Int).SetString(a.cfg.Bridge.DestinationFee, 10)
	if !ok {
		return nil, fmt.Errorf("invalid bridge destination fee %q", a.cfg.Bridge.DestinationFee)
	}
	builder := xcm.NewBuilder(a.ids, xcm.WithBridgeDestinationFee(destFee))

	call, err := builder.BuildTransferCall(asset, origin, dest, intent.Recipient, base, decision)
	if err != nil {
		return nil, err
	}
	out := &xcmOutput{Decision: decision, Call: call}

	if call.IsEVM() {
		if err := a.quoteGateway(ctx, intent, out); err != nil {
			return nil, err
		}
		return out, nil
	}

	if decision.AssetPath == xcm.AssetPathCurrencyID {
		// The fee program names assets by location; currency ids have none.
		a.logger.WithField("asset", asset.Slug).Info("skipping fee estimation for currency-id transfer")
	} else {
		out.FeeEstimation, err = builder.BuildFeeEstimationMessage(asset, origin, dest, intent.Recipient, base, decision)
		if err != nil {
			return nil, err
		}
		a.metrics.RecordConstruction(metrics.KindFeeEstimation, origin.Slug, nil, time.Since(start))
	}

	if *feeCurrency != "" {
		feeAsset, err := a.registry.Asset(*feeCurrency)
		if err != nil {
			return nil, err
		}
		native, err := a.registry.NativeAsset(origin.Slug)
		if err != nil {
			return nil, err
		}
		out.Call, err = builder.WrapWithFeeCurrency(call, origin, feeAsset, native)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// quoteGateway checks the token allowance of the gateway and, when no
// approval is pending, estimates the bridge gas.
func (a *app) quoteGateway(ctx context.Context, intent types.TransferIntent, out *xcmOutput) error {
	if a.cfg.Rpc.Ethereum.URL == "" {
		a.logger.Warn("RPC_ETHEREUM_URL not set, skipping gas estimation")
		return nil
	}
	if !common.IsHexAddress(intent.Sender) {
		return fmt.Errorf("%w: sender %q is not an evm address", types.ErrInvalidIntent, intent.Sender)
	}
	rpc, err := evm.Dial(ctx, a.cfg.Rpc.Ethereum.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrRPCFailure, err)
	}
	defer rpc.Close()

	params, err := evm.DecodeSendToken(out.Call.Calldata)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrEncodingMismatch, err)
	}
	from := common.HexToAddress(intent.Sender)
	gateway := common.HexToAddress(out.Call.To)

	needsApprove, approve, err := evm.NewApproveService(rpc).CheckAllowance(ctx, params.Token, from, gateway, params.Amount)
	if err != nil {
		return err
	}
	if needsApprove {
		a.logger.WithFields(logrus.Fields{
			"token":   params.Token.Hex(),
			"spender": gateway.Hex(),
		}).Info("allowance too low, approve first")
		out.Approve = approve
		return nil
	}

	out.Gas, err = evm.NewGasEstimator(rpc, a.logger).EstimateBridge(ctx, from, gateway, out.Call.Calldata)
	return err
}

type utxoOutput struct {
	TxID        string     `json:"txid"`
	PSBT        string     `json:"psbt"`
	Inputs      []string   `json:"inputs"`
	Fee         uint64     `json:"fee"`
	FeeDisplay  string     `json:"feeDisplay"`
	Transferred uint64     `json:"transferred"`
	Change      *utxo.Utxo `json:"change,omitempty"`
}

func buildUtxo(ctx context.Context, a *app) (any, error) {
	return a.buildUtxo(ctx, false)
}

func buildUtxoAll(ctx context.Context, a *app) (any, error) {
	return a.buildUtxo(ctx, true)
}

func (a *app) buildUtxo(ctx context.Context, all bool) (any, error) {
	chain, err := a.registry.Chain(*originSlug)
	if err != nil {
		return nil, err
	}
	if chain.Family != types.FamilyBitcoin {
		return nil, fmt.Errorf("%w: %s is not a utxo chain", types.ErrUnsupportedProtocol, chain.Slug)
	}
	native, err := a.registry.NativeAsset(chain.Slug)
	if err != nil {
		return nil, err
	}

	req := utxo.SendRequest{
		From:    *sender,
		To:      *recipient,
		FeeRate: a.cfg.Blockchair.FeeRate,
	}
	if !all {
		base, err := util.ToBaseUnits(*amount, native.Decimals)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidIntent, err)
		}
		if !base.IsUint64() {
			return nil, fmt.Errorf("%w: amount %s out of range", types.ErrInvalidIntent, *amount)
		}
		req.Amount = base.Uint64()
	}

	source, err := blockchair.NewClient(a.cfg.Blockchair.URL, chain.BitcoinNetwork, a.cfg.Blockchair.APIKey)
	if err != nil {
		return nil, err
	}
	network, err := utxo.NewNetwork(chain.BitcoinNetwork, source, utxo.TxSizeEstimator{}, a.metrics, a.logger)
	if err != nil {
		return nil, err
	}

	var artifact *utxo.Artifact
	if all {
		artifact, err = network.BuildSendAll(ctx, req)
	} else {
		artifact, err = network.BuildSend(ctx, req)
	}
	if err != nil {
		a.logger.WithError(err).Warn(utxo.UserMessage(err))
		return nil, err
	}

	b64, err := artifact.Base64()
	if err != nil {
		return nil, err
	}
	out := &utxoOutput{
		TxID:        artifact.TxID,
		PSBT:        b64,
		Fee:         artifact.Fee,
		FeeDisplay:  util.FromBaseUnits(new(big.Int).SetUint64(artifact.Fee), native.Decimals) + " " + native.Symbol,
		Transferred: artifact.Transferred,
		Change:      artifact.Change(),
	}
	for _, in := range artifact.Inputs {
		out.Inputs = append(out.Inputs, in.Outpoint())
	}
	return out, nil
}

type rejectionOutput struct {
	Slug   string     `json:"slug"`
	Kind   types.Kind `json:"kind"`
	Reason string     `json:"reason"`
}

type feeAssetsOutput struct {
	Strategy types.FeeAssetStrategy    `json:"strategy"`
	Assets   []feeasset.FeePayableAsset `json:"assets"`
	Rejected []rejectionOutput          `json:"rejected"`
}

func resolveFeeAssets(ctx context.Context, a *app) (any, error) {
	chain, err := a.registry.Chain(*originSlug)
	if err != nil {
		return nil, err
	}
	native, err := a.registry.NativeAsset(chain.Slug)
	if err != nil {
		return nil, err
	}

	req := feeasset.Request{
		Chain:  chain,
		Native: feeasset.Balance{Asset: native, Amount: big.NewInt(0)},
		Prices: feeasset.PriceMap{},
	}
	held, err := a.parseBalances(*balances)
	if err != nil {
		return nil, err
	}
	for _, b := range held {
		if b.Asset.Slug == native.Slug {
			req.Native = b
			continue
		}
		req.Candidates = append(req.Candidates, b)
	}
	if *feeAmount != "" {
		req.FeeAmount, err = util.ToBaseUnits(*feeAmount, native.Decimals)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidIntent, err)
		}
	}
	for id, quote := range a.cfg.FeeAsset.Prices {
		price, err := decimal.NewFromString(quote)
		if err != nil {
			return nil, fmt.Errorf("invalid price for %s: %w", id, err)
		}
		req.Prices[id] = price
	}

	opts := []feeasset.Option{
		feeasset.WithSafeFractionBips(a.cfg.FeeAsset.SafeFractionBips),
		feeasset.WithMetrics(a.metrics),
	}
	if url, ok := a.cfg.Rpc.substrate()[chain.Slug]; ok {
		cl, err := substrate.Dial(url)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrRPCFailure, err)
		}
		defer substrate.Close(cl)
		callers := map[string]substrate.Caller{chain.Slug: cl}
		opts = append(opts,
			feeasset.WithReserveSource(substrate.NewPoolReserves(callers, a.logger)),
			feeasset.WithCurrencyRegistry(substrate.NewAcceptedCurrencies(callers)),
		)
	}

	report, err := feeasset.NewResolver(a.logger, opts...).Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &feeAssetsOutput{
		Strategy: report.Strategy,
		Assets:   report.Assets,
		Rejected: []rejectionOutput{},
	}
	for _, r := range report.Rejected {
		out.Rejected = append(out.Rejected, rejectionOutput{Slug: r.Slug, Kind: r.Kind(), Reason: r.Err.Error()})
	}
	return out, nil
}

// parseBalances parses "slug=amount,slug=amount" with amounts in whole
// units of each asset.
func (a *app) parseBalances(s string) ([]feeasset.Balance, error) {
	var out []feeasset.Balance
	if s == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		slug, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("%w: balance %q is not slug=amount", types.ErrInvalidIntent, pair)
		}
		asset, err := a.registry.Asset(slug)
		if err != nil {
			return nil, err
		}
		if asset.OriginChain != *originSlug {
			return nil, fmt.Errorf("%w: %s is not held on %s", types.ErrInvalidIntent, slug, *originSlug)
		}
		base, err := util.ToBaseUnits(value, asset.Decimals)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidIntent, err)
		}
		out = append(out, feeasset.Balance{Asset: asset, Amount: base})
	}
	return out, nil
}
