package substrate

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/vultisig/xtransfer/internal/feeasset"
	"github.com/vultisig/xtransfer/internal/types"
)

const (
	palletMultiTransactionPayment = "MultiTransactionPayment"
	storageAcceptedCurrencies     = "AcceptedCurrencies"
)

// AcceptedCurrencies reads the multi-currency fee allow-list from chain
// storage. Callers are keyed by chain slug.
type AcceptedCurrencies struct {
	callers map[string]Caller
}

var _ feeasset.CurrencyRegistry = (*AcceptedCurrencies)(nil)

func NewAcceptedCurrencies(callers map[string]Caller) *AcceptedCurrencies {
	return &AcceptedCurrencies{callers: callers}
}

func (a *AcceptedCurrencies) IsAccepted(ctx context.Context, chain types.ChainInfo, asset types.ChainAsset) (bool, error) {
	c, ok := a.callers[chain.Slug]
	if !ok {
		return false, fmt.Errorf("no rpc for %s", chain.Slug)
	}
	id, err := strconv.ParseUint(asset.AssetID, 10, 32)
	if err != nil {
		return false, fmt.Errorf("asset %s has no numeric asset id", asset.Slug)
	}

	key := make([]byte, 4)
	binary.LittleEndian.PutUint32(key, uint32(id))
	value, err := storage(ctx, c, mapKey(palletMultiTransactionPayment, storageAcceptedCurrencies, key))
	if err != nil {
		return false, fmt.Errorf("%s.%s: %w", palletMultiTransactionPayment, storageAcceptedCurrencies, err)
	}
	return value != nil, nil
}
