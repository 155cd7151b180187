package xcm

import (
	"fmt"
	"strconv"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/vultisig/xtransfer/internal/types"
)

const (
	PalletUtility                 = "utility"
	MethodBatchAll                = "batchAll"
	PalletMultiTransactionPayment = "multiTransactionPayment"
	MethodSetCurrency             = "setCurrency"
)

// WrapWithFeeCurrency batches call between two setCurrency calls so chain
// charges fees in feeAsset and switches back to nativeAsset after. Only
// allow-listed-currency chains have the setCurrency step.
func (b *Builder) WrapWithFeeCurrency(
	call *CallDescriptor,
	chain types.ChainInfo,
	feeAsset, nativeAsset types.ChainAsset,
) (*CallDescriptor, error) {
	if call == nil || call.IsEVM() {
		return nil, fmt.Errorf("%w: only pallet calls take a fee currency", types.ErrUnsupportedProtocol)
	}
	if call.Chain != chain.Slug {
		return nil, fmt.Errorf("%w: call is for %s, not %s", types.ErrInvalidIntent, call.Chain, chain.Slug)
	}
	if chain.FeeAssets != types.FeeAssetAllowList {
		return nil, fmt.Errorf("%w: %s has no active fee currency to set", types.ErrUnsupportedProtocol, chain.Slug)
	}
	setFee, err := b.setCurrency(call.Chain, feeAsset)
	if err != nil {
		return nil, err
	}
	setNative, err := b.setCurrency(call.Chain, nativeAsset)
	if err != nil {
		return nil, err
	}

	return &CallDescriptor{
		RequestID: b.ids.Next(),
		Chain:     call.Chain,
		Protocol:  call.Protocol,
		Pallet:    PalletUtility,
		Method:    MethodBatchAll,
		Version:   call.Version,
		Calls:     []*CallDescriptor{setFee, call, setNative},
	}, nil
}

func (b *Builder) setCurrency(chain string, asset types.ChainAsset) (*CallDescriptor, error) {
	var id uint64
	if asset.AssetID != "" {
		var err error
		id, err = strconv.ParseUint(asset.AssetID, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: fee currency %s has asset id %q", types.ErrEncodingMismatch, asset.Slug, asset.AssetID)
		}
	} else if !asset.IsNative() {
		return nil, fmt.Errorf("%w: fee currency %s has no asset id", types.ErrEncodingMismatch, asset.Slug)
	}

	raw, err := encodeWith(func(enc scale.Encoder) error {
		return encodeU32(uint32(id))(enc)
	})
	if err != nil {
		return nil, err
	}
	return &CallDescriptor{
		RequestID: b.ids.Next(),
		Chain:     chain,
		Pallet:    PalletMultiTransactionPayment,
		Method:    MethodSetCurrency,
		Args:      []Arg{{Name: "currency", Value: raw}},
	}, nil
}
