package feeasset

import (
	"context"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/vultisig/xtransfer/internal/types"
)

// Balance is an account's holding of one asset, in smallest units.
type Balance struct {
	Asset  types.ChainAsset
	Amount *big.Int
}

// AmmReserve is the reserve pair of a native/candidate pool.
type AmmReserve struct {
	Native    *uint256.Int
	Candidate *uint256.Int
}

// PriceMap maps an asset price key to its price in a common quote currency.
type PriceMap map[string]decimal.Decimal

// ReserveSource returns the pool reserves between native and candidate on
// chain. A nil reserve with a nil error means the pool does not exist.
type ReserveSource interface {
	GetReserves(ctx context.Context, chain types.ChainInfo, native, candidate types.ChainAsset) (*AmmReserve, error)
}

// CurrencyRegistry answers whether chain accepts asset as a fee currency.
type CurrencyRegistry interface {
	IsAccepted(ctx context.Context, chain types.ChainInfo, asset types.ChainAsset) (bool, error)
}

// Request is the input to Resolve. FeeAmount is optional and in native
// smallest units.
type Request struct {
	Chain      types.ChainInfo
	Native     Balance
	Candidates []Balance
	FeeAmount  *big.Int
	Prices     PriceMap
}

// FeePayableAsset is an asset the account can pay the fee with.
type FeePayableAsset struct {
	Slug    string   `json:"slug"`
	Balance *big.Int `json:"balance"`
	// Rate is quoted in opposite directions per strategy. For pools it is
	// nativeReserve/candidateReserve: native smallest units per candidate
	// smallest unit. For allow-listed currencies it is
	// nativePrice/candidatePrice shifted by the decimal difference:
	// candidate smallest units per native smallest unit, so
	// FeeAmount = fee * Rate. The native asset has rate 1.
	Rate decimal.Decimal `json:"rate"`
	// FeeAmount is the requested fee converted to this asset's smallest
	// units. Nil when no fee amount was requested.
	FeeAmount *big.Int `json:"feeAmount,omitempty"`
	// LiquiditySafe is set once the conversion is known not to move the
	// price beyond the safe fraction. Pool assets resolved without a fee
	// amount have only a spot rate and stay unset.
	LiquiditySafe bool `json:"liquiditySafe"`
	CoversFee     bool `json:"coversFee"`
	Native        bool `json:"native"`
}

// Rejection records why a candidate was dropped.
type Rejection struct {
	Slug string `json:"slug"`
	Err  error  `json:"-"`
}

func (r Rejection) Kind() types.Kind {
	return types.KindOf(r.Err)
}

// Report is the outcome of a resolution. Assets always starts with the
// native asset.
type Report struct {
	Strategy types.FeeAssetStrategy `json:"strategy"`
	Assets   []FeePayableAsset      `json:"assets"`
	Rejected []Rejection            `json:"rejected"`
}

// Rejection returns the rejection of slug, if any.
func (r *Report) Rejection(slug string) (Rejection, bool) {
	for _, rej := range r.Rejected {
		if rej.Slug == slug {
			return rej, true
		}
	}
	return Rejection{}, false
}

func covers(balance, fee *big.Int) bool {
	if fee == nil {
		return true
	}
	if balance == nil {
		return false
	}
	return balance.Cmp(fee) >= 0
}
