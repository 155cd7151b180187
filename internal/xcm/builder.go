package xcm

import (
	"bytes"
	"fmt"
	"math/big"
	"strconv"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vultisig/xtransfer/internal/evm"
	"github.com/vultisig/xtransfer/internal/reqid"
	"github.com/vultisig/xtransfer/internal/types"
)

// Currency id variants for the multi-currency pallet.
const (
	currencyToken        byte = 0
	currencyForeignAsset byte = 1
)

type Builder struct {
	ids                  reqid.Generator
	bridgeDestinationFee *big.Int
}

type BuilderOption func(*Builder)

// WithBridgeDestinationFee sets the fee paid on the Polkadot side of
// gateway transfers, in the transferred token.
func WithBridgeDestinationFee(fee *big.Int) BuilderOption {
	return func(b *Builder) {
		b.bridgeDestinationFee = new(big.Int).Set(fee)
	}
}

func NewBuilder(ids reqid.Generator, opts ...BuilderOption) *Builder {
	b := &Builder{
		ids:                  ids,
		bridgeDestinationFee: big.NewInt(0),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// TransferPayloads are the three version-tagged payloads of a transfer.
// Assets is nil on the currency-id path.
type TransferPayloads struct {
	Destination VersionedLocation
	Beneficiary VersionedLocation
	Assets      *VersionedAssets
}

// Version returns the shared version tag of the payloads, or
// ErrEncodingMismatch if they disagree.
func (p TransferPayloads) Version() (types.XcmVersion, error) {
	payloads := []payload{
		{label: "destination", value: p.Destination},
		{label: "beneficiary", value: p.Beneficiary},
	}
	if p.Assets != nil {
		payloads = append(payloads, payload{label: "assets", value: *p.Assets})
	}
	return uniformVersion(payloads...)
}

// Payloads builds the destination, beneficiary and asset payloads of a
// transfer under decision.
func (b *Builder) Payloads(
	asset types.ChainAsset,
	origin, dest types.ChainInfo,
	recipient string,
	amount *big.Int,
	decision ProtocolDecision,
) (TransferPayloads, error) {
	v := decision.Version
	if err := checkVersion(v); err != nil {
		return TransferPayloads{}, err
	}

	destLoc, err := destinationLocation(origin, dest, decision.Protocol)
	if err != nil {
		return TransferPayloads{}, err
	}
	account, err := accountJunction(dest, recipient)
	if err != nil {
		return TransferPayloads{}, err
	}

	p := TransferPayloads{
		Destination: VersionedLocation{Version: v, Location: destLoc},
		Beneficiary: VersionedLocation{Version: v, Location: types.NewLocation(0, account)},
	}
	if decision.AssetPath != AssetPathCurrencyID {
		loc, err := assetLocation(asset, origin, origin)
		if err != nil {
			return TransferPayloads{}, err
		}
		p.Assets = &VersionedAssets{
			Version: v,
			Assets:  []Asset{{ID: loc, Amount: new(big.Int).Set(amount)}},
		}
	}
	return p, nil
}

// BuildTransferCall builds the unsigned call moving amount of asset from
// origin to recipient on dest along decision.
func (b *Builder) BuildTransferCall(
	asset types.ChainAsset,
	origin, dest types.ChainInfo,
	recipient string,
	amount *big.Int,
	decision ProtocolDecision,
) (*CallDescriptor, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", types.ErrInvalidIntent)
	}
	if decision.Pallet == PalletSnowbridgeGateway {
		return b.buildGatewayCall(asset, origin, dest, recipient, amount, decision)
	}

	p, err := b.Payloads(asset, origin, dest, recipient, amount, decision)
	if err != nil {
		return nil, err
	}
	v, err := p.Version()
	if err != nil {
		return nil, err
	}

	call := &CallDescriptor{
		RequestID: b.ids.Next(),
		Chain:     origin.Slug,
		Protocol:  decision.Protocol,
		Pallet:    decision.Pallet,
		Method:    decision.Method,
		Version:   v,
	}

	var args argList
	if decision.Method != MethodTransfer && p.Assets == nil {
		return nil, fmt.Errorf("%w: %s.%s needs a located asset", types.ErrEncodingMismatch, decision.Pallet, decision.Method)
	}
	switch decision.Method {
	case MethodLimitedTeleportAssets, MethodLimitedReserveTransferAssets, MethodTransferAssets:
		args.add("dest", p.Destination.Encode)
		args.add("beneficiary", p.Beneficiary.Encode)
		args.add("assets", p.Assets.Encode)
		args.add("fee_asset_item", encodeU32(0))
		args.add("weight_limit", unlimitedWeight)
	case MethodTransferMultiassets:
		args.add("assets", p.Assets.Encode)
		args.add("fee_item", encodeU32(0))
		args.add("dest", accountDestination(p).Encode)
		args.add("dest_weight_limit", unlimitedWeight)
	case MethodTransfer:
		id, err := currencyID(asset)
		if err != nil {
			return nil, err
		}
		args.add("currency_id", func(enc scale.Encoder) error { return enc.Write(id) })
		args.add("amount", func(enc scale.Encoder) error { return encodeU128(enc, amount) })
		args.add("dest", accountDestination(p).Encode)
		args.add("dest_weight_limit", unlimitedWeight)
	default:
		return nil, fmt.Errorf("%w: no encoding for %s.%s", types.ErrUnsupportedProtocol, decision.Pallet, decision.Method)
	}
	if args.err != nil {
		return nil, args.err
	}
	call.Args = args.args
	return call, nil
}

// accountDestination merges destination and beneficiary into the single
// location the multi-currency pallet expects.
func accountDestination(p TransferPayloads) VersionedLocation {
	return VersionedLocation{
		Version:  p.Destination.Version,
		Location: p.Destination.Location.Append(p.Beneficiary.Location.Interior...),
	}
}

func (b *Builder) buildGatewayCall(
	asset types.ChainAsset,
	origin, dest types.ChainInfo,
	recipient string,
	amount *big.Int,
	decision ProtocolDecision,
) (*CallDescriptor, error) {
	if !common.IsHexAddress(origin.BridgeGateway) {
		return nil, fmt.Errorf("%w: %s has no bridge gateway", types.ErrUnsupportedProtocol, origin.Slug)
	}
	if !common.IsHexAddress(asset.AssetID) {
		return nil, fmt.Errorf("%w: %s has no token contract", types.ErrEncodingMismatch, asset.Slug)
	}
	if dest.ParaID == nil {
		return nil, fmt.Errorf("%w: %s has no para id", types.ErrUnsupportedProtocol, dest.Slug)
	}

	account, err := accountJunction(dest, recipient)
	if err != nil {
		return nil, err
	}
	to := evm.MultiAddress{Kind: evm.AddressKindAddress32, Data: account.AccountID[:]}
	if account.Kind == types.JunctionAccountKey20 {
		to = evm.MultiAddress{Kind: evm.AddressKindAddress20, Data: account.Key[:]}
	}

	data, err := evm.PackSendToken(evm.SendTokenParams{
		Token:          common.HexToAddress(asset.AssetID),
		ParaID:         *dest.ParaID,
		Recipient:      to,
		DestinationFee: b.bridgeDestinationFee,
		Amount:         amount,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEncodingMismatch, err)
	}

	return &CallDescriptor{
		RequestID: b.ids.Next(),
		Chain:     origin.Slug,
		Protocol:  decision.Protocol,
		Pallet:    decision.Pallet,
		Method:    decision.Method,
		Version:   decision.Version,
		To:        common.HexToAddress(origin.BridgeGateway).Hex(),
		Calldata:  data,
	}, nil
}

// currencyID returns the opaque currency identifier of an asset that has
// no location.
func currencyID(asset types.ChainAsset) ([]byte, error) {
	if len(asset.Metadata.CurrencyID) > 0 {
		return bytes.Clone(asset.Metadata.CurrencyID), nil
	}
	if asset.AssetID != "" {
		id, err := strconv.ParseUint(asset.AssetID, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: asset id %q of %s is not a u32", types.ErrEncodingMismatch, asset.AssetID, asset.Slug)
		}
		return encodeWith(func(enc scale.Encoder) error {
			if err := enc.PushByte(currencyForeignAsset); err != nil {
				return err
			}
			return encodeU32(uint32(id))(enc)
		})
	}
	if asset.Symbol != "" {
		return encodeWith(func(enc scale.Encoder) error {
			if err := enc.PushByte(currencyToken); err != nil {
				return err
			}
			if err := encodeCompactUint(enc, uint64(len(asset.Symbol))); err != nil {
				return err
			}
			return enc.Write([]byte(asset.Symbol))
		})
	}
	return nil, fmt.Errorf("%w: %s has neither location nor currency id", types.ErrEncodingMismatch, asset.Slug)
}

// argList collects encoded arguments, keeping the first error.
type argList struct {
	args []Arg
	err  error
}

func (l *argList) add(name string, fn func(enc scale.Encoder) error) {
	if l.err != nil {
		return
	}
	raw, err := encodeWith(fn)
	if err != nil {
		l.err = fmt.Errorf("encode %s: %w", name, err)
		return
	}
	l.args = append(l.args, Arg{Name: name, Value: raw})
}

func encodeU32(v uint32) func(enc scale.Encoder) error {
	return func(enc scale.Encoder) error {
		return enc.Encode(v)
	}
}

// unlimitedWeight encodes WeightLimit::Unlimited, which pallets take in
// their own version regardless of the message version.
func unlimitedWeight(enc scale.Encoder) error {
	return encodeWeightLimit(enc, Unlimited, types.XcmV3)
}
