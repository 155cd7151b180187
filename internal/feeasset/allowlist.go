package feeasset

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/vultisig/xtransfer/internal/types"
)

// PriceRate converts prices into candidate smallest units per native
// smallest unit.
func PriceRate(nativePrice, candidatePrice decimal.Decimal, nativeDecimals, candidateDecimals int) (decimal.Decimal, error) {
	if !nativePrice.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: native price", types.ErrPriceUnavailable)
	}
	if !candidatePrice.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: candidate price", types.ErrPriceUnavailable)
	}
	rate := nativePrice.DivRound(candidatePrice, rateDecimals)
	return rate.Shift(int32(candidateDecimals - nativeDecimals)), nil
}

func convertFee(fee *big.Int, rate decimal.Decimal) *big.Int {
	return decimal.NewFromBigInt(fee, 0).Mul(rate).Ceil().BigInt()
}

func (r *Resolver) resolveAllowListed(ctx context.Context, req Request, candidate Balance) (*FeePayableAsset, error) {
	accepted, err := r.registry.IsAccepted(ctx, req.Chain, candidate.Asset)
	if err != nil {
		return nil, fmt.Errorf("%w: registry lookup of %s: %v", types.ErrRPCFailure, candidate.Asset.Slug, err)
	}
	if !accepted {
		return nil, fmt.Errorf("%w: %s on %s", types.ErrNotAccepted, candidate.Asset.Slug, req.Chain.Slug)
	}

	nativePrice, ok := req.Prices[req.Native.Asset.PriceKey()]
	if !ok {
		return nil, fmt.Errorf("%w: no price for %s", types.ErrPriceUnavailable, req.Native.Asset.PriceKey())
	}
	candidatePrice, ok := req.Prices[candidate.Asset.PriceKey()]
	if !ok {
		return nil, fmt.Errorf("%w: no price for %s", types.ErrPriceUnavailable, candidate.Asset.PriceKey())
	}
	rate, err := PriceRate(nativePrice, candidatePrice, req.Native.Asset.Decimals, candidate.Asset.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", candidate.Asset.Slug, err)
	}

	asset := &FeePayableAsset{
		Slug:          candidate.Asset.Slug,
		Balance:       candidate.Amount,
		Rate:          rate,
		LiquiditySafe: true,
	}
	if req.FeeAmount != nil {
		asset.FeeAmount = convertFee(req.FeeAmount, rate)
	}
	asset.CoversFee = covers(candidate.Amount, asset.FeeAmount)
	return asset, nil
}
