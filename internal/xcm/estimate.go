package xcm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vultisig/xtransfer/internal/types"
)

// FeeEstimation is an XCM program built only to query delivery and
// execution fees. It is never submitted.
type FeeEstimation struct {
	RequestID   string        `json:"requestId"`
	Destination string        `json:"destination"`
	Message     Message       `json:"-"`
	Encoded     hexutil.Bytes `json:"encoded"`
}

// BuildFeeEstimationMessage builds the program dest would execute for the
// transfer, in the order fee queries expect.
func (b *Builder) BuildFeeEstimationMessage(
	asset types.ChainAsset,
	origin, dest types.ChainInfo,
	recipient string,
	amount *big.Int,
	decision ProtocolDecision,
) (*FeeEstimation, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", types.ErrInvalidIntent)
	}
	if err := checkVersion(decision.Version); err != nil {
		return nil, err
	}

	loc, err := assetLocation(asset, origin, dest)
	if err != nil {
		return nil, err
	}
	account, err := accountJunction(dest, recipient)
	if err != nil {
		return nil, err
	}
	reserve, err := originIsReserve(asset, origin)
	if err != nil {
		return nil, err
	}

	assets := []Asset{{ID: loc, Amount: new(big.Int).Set(amount)}}
	var first Instruction
	switch {
	case decision.Protocol == ProtocolTeleport:
		first = ReceiveTeleportedAsset{Assets: assets}
	case decision.Protocol == ProtocolBridgeTransfer, reserve:
		first = ReserveAssetDeposited{Assets: assets}
	default:
		first = WithdrawAsset{Assets: assets}
	}

	msg := Message{
		Version: decision.Version,
		Instructions: []Instruction{
			first,
			ClearOrigin{},
			BuyExecution{Fees: assets[0], WeightLimit: Unlimited},
			DepositAsset{MaxAssets: 1, Beneficiary: types.NewLocation(0, account)},
		},
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	encoded, err := msg.Bytes()
	if err != nil {
		return nil, err
	}

	return &FeeEstimation{
		RequestID:   b.ids.Next(),
		Destination: dest.Slug,
		Message:     msg,
		Encoded:     encoded,
	}, nil
}

// originIsReserve reports whether origin holds the reserve of asset.
func originIsReserve(asset types.ChainAsset, origin types.ChainInfo) (bool, error) {
	if asset.IsNative() && !asset.HasMultiLocation() {
		return true, nil
	}
	loc, err := assetLocation(asset, origin, origin)
	if err != nil {
		return false, err
	}
	return loc.Parents == 0, nil
}
