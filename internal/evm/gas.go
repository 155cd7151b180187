package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/xtransfer/internal/types"
)

// Gas limits get this much headroom over the node's estimate, in percent.
const defaultGasHeadroom = 20

type GasQuote struct {
	GasLimit uint64   `json:"gasLimit"`
	GasPrice *big.Int `json:"gasPrice"`
	// Value is the native amount the call must carry.
	Value *big.Int `json:"value"`
	// Fee is GasLimit * GasPrice + Value.
	Fee *big.Int `json:"fee"`
}

type GasEstimator struct {
	rpc      Client
	headroom uint64
	logger   logrus.FieldLogger
}

func NewGasEstimator(rpc Client, logger logrus.FieldLogger) *GasEstimator {
	return &GasEstimator{
		rpc:      rpc,
		headroom: defaultGasHeadroom,
		logger:   logger,
	}
}

// Estimate prices an arbitrary call from from to to.
func (g *GasEstimator) Estimate(ctx context.Context, from, to common.Address, data []byte, value *big.Int) (*GasQuote, error) {
	if value == nil {
		value = big.NewInt(0)
	}

	gasLimit, err := g.rpc.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Value: value, Data: data})
	if err != nil {
		return nil, fmt.Errorf("%w: estimate gas failed: %v", types.ErrRPCFailure, err)
	}
	gasLimit += gasLimit * g.headroom / 100

	gasPrice, err := g.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: suggest gas price failed: %v", types.ErrRPCFailure, err)
	}

	fee := new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), gasPrice)
	fee.Add(fee, value)

	return &GasQuote{
		GasLimit: gasLimit,
		GasPrice: gasPrice,
		Value:    value,
		Fee:      fee,
	}, nil
}

// QuoteSendTokenFee asks the gateway for the native fee sendToken charges.
func (g *GasEstimator) QuoteSendTokenFee(
	ctx context.Context,
	gateway, token common.Address,
	paraID uint32,
	destinationFee *big.Int,
) (*big.Int, error) {
	if destinationFee == nil {
		destinationFee = big.NewInt(0)
	}
	data, err := gatewayABI.Pack("quoteSendTokenFee", token, paraID, destinationFee)
	if err != nil {
		return nil, fmt.Errorf("failed to pack quoteSendTokenFee: %w", err)
	}
	out, err := g.rpc.CallContract(ctx, ethereum.CallMsg{To: &gateway, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: quote send token fee: %v", types.ErrRPCFailure, err)
	}
	fee, err := unpackUint256(gatewayABI, "quoteSendTokenFee", out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrRPCFailure, err)
	}
	return fee, nil
}

// EstimateBridge prices a sendToken call built for gateway. The gateway fee
// is quoted first since the call must carry it as value.
func (g *GasEstimator) EstimateBridge(ctx context.Context, from, gateway common.Address, calldata []byte) (*GasQuote, error) {
	params, err := DecodeSendToken(calldata)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEncodingMismatch, err)
	}

	value, err := g.QuoteSendTokenFee(ctx, gateway, params.Token, params.ParaID, params.DestinationFee)
	if err != nil {
		return nil, err
	}

	quote, err := g.Estimate(ctx, from, gateway, calldata, value)
	if err != nil {
		return nil, err
	}

	g.logger.WithFields(logrus.Fields{
		"gateway":   gateway.Hex(),
		"token":     params.Token.Hex(),
		"para_id":   params.ParaID,
		"gas_limit": quote.GasLimit,
		"fee":       quote.Fee.String(),
	}).Debug("estimated bridge transfer")

	return quote, nil
}
