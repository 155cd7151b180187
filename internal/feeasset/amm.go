package feeasset

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/vultisig/xtransfer/internal/types"
)

const (
	// Constant-product pools keep 0.3% of the input as LP fee.
	lpFeeNumerator   = 997
	lpFeeDenominator = 1000

	bipsDenominator = 10_000
	// DefaultSafeFractionBips caps the fee conversion at 1% of the
	// candidate reserve.
	DefaultSafeFractionBips = 100

	rateDecimals = 18
)

// GetAmountIn returns the candidate input needed to take amountOut native
// units out of a constant-product pool with the given reserves.
func GetAmountIn(amountOut, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, fmt.Errorf("%w: empty reserve", types.ErrNoLiquidity)
	}
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: pool holds %s, fee needs %s", types.ErrNoLiquidity, reserveOut, amountOut)
	}

	numerator, overflow := new(uint256.Int).MulOverflow(reserveIn, amountOut)
	if !overflow {
		numerator, overflow = numerator.MulOverflow(numerator, uint256.NewInt(lpFeeDenominator))
	}
	if overflow {
		return nil, fmt.Errorf("%w: amount overflows pool math", types.ErrExcessiveSlippage)
	}
	denominator := new(uint256.Int).Sub(reserveOut, amountOut)
	denominator.Mul(denominator, uint256.NewInt(lpFeeNumerator))

	amountIn := new(uint256.Int).Div(numerator, denominator)
	return amountIn.AddUint64(amountIn, 1), nil
}

// withinSafeFraction reports amount <= reserve * bips / 10000.
func withinSafeFraction(amount, reserve *uint256.Int, bips uint64) bool {
	lhs := new(uint256.Int).Mul(amount, uint256.NewInt(bipsDenominator))
	rhs, overflow := new(uint256.Int).MulOverflow(reserve, uint256.NewInt(bips))
	if overflow {
		return true
	}
	return lhs.Cmp(rhs) <= 0
}

func reserveRate(r *AmmReserve) decimal.Decimal {
	native := decimal.NewFromBigInt(r.Native.ToBig(), 0)
	candidate := decimal.NewFromBigInt(r.Candidate.ToBig(), 0)
	return native.DivRound(candidate, rateDecimals)
}

func (r *Resolver) resolveAMM(ctx context.Context, req Request, candidate Balance) (*FeePayableAsset, error) {
	if !candidate.Asset.HasMultiLocation() {
		return nil, fmt.Errorf("%w: %s has no multilocation", types.ErrEncodingMismatch, candidate.Asset.Slug)
	}

	reserve, err := r.reserves.GetReserves(ctx, req.Chain, req.Native.Asset, candidate.Asset)
	if err != nil {
		return nil, fmt.Errorf("%w: reserves of %s: %v", types.ErrRPCFailure, candidate.Asset.Slug, err)
	}
	if reserve == nil || reserve.Native == nil || reserve.Candidate == nil {
		return nil, fmt.Errorf("%w: no pool for %s", types.ErrNoLiquidity, candidate.Asset.Slug)
	}
	if reserve.Native.IsZero() || reserve.Candidate.IsZero() {
		return nil, fmt.Errorf("%w: pool for %s has an empty side", types.ErrNoLiquidity, candidate.Asset.Slug)
	}

	asset := &FeePayableAsset{
		Slug:    candidate.Asset.Slug,
		Balance: candidate.Amount,
		Rate:    reserveRate(reserve),
	}
	if req.FeeAmount == nil {
		asset.CoversFee = true
		return asset, nil
	}

	fee, overflow := uint256.FromBig(req.FeeAmount)
	if overflow {
		return nil, fmt.Errorf("%w: fee amount overflows", types.ErrExcessiveSlippage)
	}
	amountIn, err := GetAmountIn(fee, reserve.Candidate, reserve.Native)
	if err != nil {
		return nil, err
	}
	if !withinSafeFraction(amountIn, reserve.Candidate, r.safeBips) {
		return nil, fmt.Errorf("%w: %s needs %s of reserve %s", types.ErrExcessiveSlippage,
			candidate.Asset.Slug, amountIn, reserve.Candidate)
	}

	asset.FeeAmount = amountIn.ToBig()
	asset.LiquiditySafe = true
	asset.CoversFee = covers(candidate.Amount, asset.FeeAmount)
	return asset, nil
}

