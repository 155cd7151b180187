package xcm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vultisig/xtransfer/internal/types"
)

const (
	aliceSS58 = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	aliceHex  = "0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
	evmUser   = "0x1111111111111111111111111111111111111111"
	wethAddr  = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	gateway   = "0xEDa338E4dC46038493b885327842fD3E301CaB39"
)

func u32p(v uint32) *uint32 { return &v }
func u64p(v uint64) *uint64 { return &v }

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func alice() []byte {
	return hexutil.MustDecode(aliceHex)
}

var (
	polkadot = types.ChainInfo{
		Slug:       "polkadot",
		Family:     types.FamilySubstrateRelay,
		Network:    types.NetworkPolkadot,
		XcmPallets: []types.XcmPallet{types.PalletXcm},
		XcmVersion: types.XcmV3,
	}
	statemint = types.ChainInfo{
		Slug:       "statemint",
		Family:     types.FamilySubstratePara,
		Network:    types.NetworkPolkadot,
		ParaID:     u32p(1000),
		XcmPallets: []types.XcmPallet{types.PalletPolkadotXcm},
		XcmVersion: types.XcmV3,
	}
	hydradx = types.ChainInfo{
		Slug:       "hydradx_main",
		Family:     types.FamilySubstratePara,
		Network:    types.NetworkPolkadot,
		ParaID:     u32p(2034),
		XcmPallets: []types.XcmPallet{types.PalletPolkadotXcm, types.PalletXTokens},
		XcmVersion: types.XcmV3,
		FeeAssets:  types.FeeAssetAllowList,
	}
	moonbeam = types.ChainInfo{
		Slug:       "moonbeam",
		Family:     types.FamilySubstratePara,
		Network:    types.NetworkPolkadot,
		ParaID:     u32p(2004),
		EVMChainID: u64p(1284),
		XcmPallets: []types.XcmPallet{types.PalletPolkadotXcm, types.PalletXTokens},
		XcmVersion: types.XcmV3,
	}
	bifrost = types.ChainInfo{
		Slug:       "bifrost_dot",
		Family:     types.FamilySubstratePara,
		Network:    types.NetworkPolkadot,
		ParaID:     u32p(2030),
		XcmPallets: []types.XcmPallet{types.PalletXTokens},
		XcmVersion: types.XcmV2,
	}
	ethereum = types.ChainInfo{
		Slug:          "ethereum",
		Family:        types.FamilyEVM,
		Network:       types.NetworkEthereum,
		EVMChainID:    u64p(1),
		BridgeGateway: gateway,
	}
)

var ethereumNetwork = types.NetworkID{Kind: types.NetworkEthereum, ChainID: 1}

func dotNative() types.ChainAsset {
	return types.ChainAsset{
		Slug:        "polkadot-NATIVE-DOT",
		OriginChain: "polkadot",
		Symbol:      "DOT",
		Decimals:    10,
		Type:        types.AssetNative,
		Metadata:    types.AssetMetadata{TeleportTo: []string{"statemint"}},
	}
}

func usdtOnStatemint() types.ChainAsset {
	loc := types.NewLocation(1,
		types.Parachain(1000),
		types.PalletInstance(50),
		types.GeneralIndex(big.NewInt(1984)),
	)
	return types.ChainAsset{
		Slug:        "statemint-LOCAL-USDT",
		OriginChain: "statemint",
		Symbol:      "USDT",
		Decimals:    6,
		Type:        types.AssetLocal,
		Metadata:    types.AssetMetadata{MultiLocation: &loc},
		AssetID:     "1984",
	}
}

func wethLocation() types.MultiLocation {
	return types.NewLocation(2,
		types.GlobalConsensus(ethereumNetwork),
		types.AccountKey20(common.HexToAddress(wethAddr)),
	)
}

func wethOnStatemint() types.ChainAsset {
	loc := wethLocation()
	return types.ChainAsset{
		Slug:        "statemint-FOREIGN-WETH",
		OriginChain: "statemint",
		Symbol:      "WETH",
		Decimals:    18,
		Type:        types.AssetBridged,
		Metadata: types.AssetMetadata{
			MultiLocation: &loc,
			TeleportTo:    []string{"ethereum"},
		},
	}
}

func wethOnEthereum() types.ChainAsset {
	loc := wethLocation()
	return types.ChainAsset{
		Slug:        "ethereum-ERC20-WETH",
		OriginChain: "ethereum",
		Symbol:      "WETH",
		Decimals:    18,
		Type:        types.AssetBridged,
		Metadata:    types.AssetMetadata{MultiLocation: &loc},
		AssetID:     wethAddr,
	}
}

func bncOnHydra() types.ChainAsset {
	return types.ChainAsset{
		Slug:        "hydradx_main-LOCAL-BNC",
		OriginChain: "hydradx_main",
		Symbol:      "BNC",
		Decimals:    12,
		Type:        types.AssetForeign,
		AssetID:     "14",
	}
}
