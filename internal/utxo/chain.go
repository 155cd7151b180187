package utxo

import (
	"fmt"

	"github.com/vultisig/xtransfer/internal/types"
)

// ChainParams are the per-network relay rules the selector honours.
type ChainParams struct {
	Network types.BitcoinNetwork
	// DustLimit is the smallest output value the network relays.
	DustLimit uint64
	// ForkID marks networks signing with SIGHASH_FORKID.
	ForkID bool
}

var chainParams = map[types.BitcoinNetwork]ChainParams{
	types.BitcoinMainnet: {Network: types.BitcoinMainnet, DustLimit: 546},
	types.BitcoinTestnet: {Network: types.BitcoinTestnet, DustLimit: 546},
	// Litecoin SegWit dust limit (P2WPKH)
	types.Litecoin: {Network: types.Litecoin, DustLimit: 5460},
	// Dogecoin dust limit (1 DOGE minimum to avoid spam)
	types.Dogecoin:    {Network: types.Dogecoin, DustLimit: 100000000},
	types.BitcoinCash: {Network: types.BitcoinCash, DustLimit: 546, ForkID: true},
}

func ParamsFor(network types.BitcoinNetwork) (ChainParams, error) {
	p, ok := chainParams[network]
	if !ok {
		return ChainParams{}, fmt.Errorf("%w: unsupported UTXO network %q", types.ErrUnsupportedProtocol, network)
	}
	return p, nil
}
