package registry

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vultisig/xtransfer/internal/types"
)

func TestDefault(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	usdt, err := reg.Asset("statemint-LOCAL-USDT")
	require.NoError(t, err)
	want := types.NewLocation(1, types.Parachain(1000), types.PalletInstance(50), types.GeneralIndex(big.NewInt(1984)))
	require.NotNil(t, usdt.Metadata.MultiLocation)
	assert.Equal(t, want, *usdt.Metadata.MultiLocation)

	weth, err := reg.Asset("ethereum-ERC20-WETH")
	require.NoError(t, err)
	interior := weth.Metadata.MultiLocation.Interior
	require.Len(t, interior, 2)
	assert.Equal(t, types.NetworkID{Kind: types.NetworkEthereum, ChainID: 1}, interior[0].Global)
	assert.Equal(t, byte(0xc2), interior[1].Key[19])

	statemint, err := reg.Chain("statemint")
	require.NoError(t, err)
	require.NotNil(t, statemint.ParaID)
	assert.Equal(t, uint32(1000), *statemint.ParaID)
	assert.Equal(t, types.FeeAssetAMM, statemint.FeeAssets)

	hdx, err := reg.NativeAsset("hydradx_main")
	require.NoError(t, err)
	assert.Equal(t, "HDX", hdx.Symbol)
}

func TestResolve(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	asset, origin, dest, err := reg.Resolve(types.TransferIntent{
		Asset:            "polkadot-NATIVE-DOT",
		OriginChain:      "polkadot",
		DestinationChain: "statemint",
	})
	require.NoError(t, err)
	assert.Equal(t, "DOT", asset.Symbol)
	assert.Equal(t, types.FamilySubstrateRelay, origin.Family)
	assert.Equal(t, types.FamilySubstratePara, dest.Family)

	tests := []struct {
		name   string
		intent types.TransferIntent
	}{
		{"unknown asset", types.TransferIntent{Asset: "nope", OriginChain: "polkadot", DestinationChain: "statemint"}},
		{"unknown origin", types.TransferIntent{Asset: "polkadot-NATIVE-DOT", OriginChain: "kusama", DestinationChain: "statemint"}},
		{"unknown destination", types.TransferIntent{Asset: "polkadot-NATIVE-DOT", OriginChain: "polkadot", DestinationChain: "kusama"}},
		{"asset elsewhere", types.TransferIntent{Asset: "statemint-LOCAL-USDT", OriginChain: "polkadot", DestinationChain: "statemint"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := reg.Resolve(tt.intent)
			require.ErrorIs(t, err, types.ErrInvalidIntent)
		})
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"unknown field", `{"chains": [], "assets": [], "extra": 1}`},
		{"chain without slug", `{"chains": [{"family": "evm"}]}`},
		{"chain without family", `{"chains": [{"slug": "a"}]}`},
		{"unknown family", `{"chains": [{"slug": "a", "family": "solana"}]}`},
		{"duplicate chain", `{"chains": [{"slug": "a", "family": "evm"}, {"slug": "a", "family": "evm"}]}`},
		{"asset on unknown chain", `{"chains": [], "assets": [{"slug": "x", "originChain": "a", "symbol": "X", "assetType": "native"}]}`},
		{"asset missing symbol", `{"chains": [{"slug": "a", "family": "evm"}], "assets": [{"slug": "x", "originChain": "a", "assetType": "native"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
		})
	}

	t.Run("invalid chain wraps invalid intent", func(t *testing.T) {
		_, err := Load(strings.NewReader(`{"chains": [{"slug": "a"}]}`))
		require.ErrorIs(t, err, types.ErrInvalidIntent)
	})
}
