package types

import "errors"

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrNoLiquidity         = errors.New("no liquidity")
	ErrExcessiveSlippage   = errors.New("excessive slippage")
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrEncodingMismatch    = errors.New("encoding mismatch")
	ErrRPCFailure          = errors.New("rpc failure")
	ErrNotAccepted         = errors.New("currency not accepted")
	ErrPriceUnavailable    = errors.New("price unavailable")
	ErrInvalidIntent       = errors.New("invalid transfer intent")
)

// Kind is the stable label of an error class.
type Kind string

const (
	KindInsufficientFunds   Kind = "INSUFFICIENT_FUNDS"
	KindNoLiquidity         Kind = "NO_LIQUIDITY"
	KindExcessiveSlippage   Kind = "EXCESSIVE_SLIPPAGE"
	KindUnsupportedProtocol Kind = "UNSUPPORTED_PROTOCOL"
	KindEncodingMismatch    Kind = "ENCODING_MISMATCH"
	KindRPCFailure          Kind = "RPC_FAILURE"
	KindNotAccepted         Kind = "NOT_ACCEPTED"
	KindPriceUnavailable    Kind = "PRICE_UNAVAILABLE"
	KindInvalidIntent       Kind = "INVALID_INTENT"
	KindUnknown             Kind = "UNKNOWN"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInsufficientFunds, KindInsufficientFunds},
	{ErrNoLiquidity, KindNoLiquidity},
	{ErrExcessiveSlippage, KindExcessiveSlippage},
	{ErrUnsupportedProtocol, KindUnsupportedProtocol},
	{ErrEncodingMismatch, KindEncodingMismatch},
	{ErrRPCFailure, KindRPCFailure},
	{ErrNotAccepted, KindNotAccepted},
	{ErrPriceUnavailable, KindPriceUnavailable},
	{ErrInvalidIntent, KindInvalidIntent},
}

// KindOf returns the Kind of the first sentinel err wraps.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}
