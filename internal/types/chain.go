package types

import "slices"

// ConsensusFamily is the VM / consensus family a chain belongs to.
type ConsensusFamily string

const (
	FamilySubstrateRelay ConsensusFamily = "substrate-relay"
	FamilySubstratePara  ConsensusFamily = "substrate-para"
	FamilyEVM            ConsensusFamily = "evm"
	FamilyBitcoin        ConsensusFamily = "bitcoin"
	FamilyTON            ConsensusFamily = "ton"
	FamilyCardano        ConsensusFamily = "cardano"
)

func (f ConsensusFamily) IsSubstrate() bool {
	return f == FamilySubstrateRelay || f == FamilySubstratePara
}

// NetworkKind names a consensus system. Two chains share consensus when
// they report the same NetworkKind (a relay chain and all its parachains).
type NetworkKind string

const (
	NetworkPolkadot    NetworkKind = "polkadot"
	NetworkKusama      NetworkKind = "kusama"
	NetworkWestend     NetworkKind = "westend"
	NetworkRococo      NetworkKind = "rococo"
	NetworkEthereum    NetworkKind = "ethereum"
	NetworkBitcoinCore NetworkKind = "bitcoin-core"
)

// BitcoinNetwork tags a Bitcoin-family chain.
type BitcoinNetwork string

const (
	BitcoinMainnet BitcoinNetwork = "bitcoin"
	BitcoinTestnet BitcoinNetwork = "bitcoin-testnet"
	Litecoin       BitcoinNetwork = "litecoin"
	Dogecoin       BitcoinNetwork = "dogecoin"
	BitcoinCash    BitcoinNetwork = "bitcoin-cash"
)

// XcmPallet is a runtime pallet exposing a cross-chain transfer entry point.
type XcmPallet string

const (
	PalletXcm         XcmPallet = "xcmPallet"
	PalletPolkadotXcm XcmPallet = "polkadotXcm"
	PalletXTokens     XcmPallet = "xTokens"
)

// XcmVersion is an XCM wire version.
type XcmVersion uint8

const (
	XcmV2 XcmVersion = 2
	XcmV3 XcmVersion = 3
	XcmV4 XcmVersion = 4

	// DefaultXcmVersion is used when neither side of a transfer declares one.
	DefaultXcmVersion = XcmV3
	// BridgeXcmVersion is the version the bridge hubs require.
	BridgeXcmVersion = XcmV4
)

// FeeAssetStrategy is how a chain lets accounts pay fees in non-native assets.
type FeeAssetStrategy string

const (
	FeeAssetNone      FeeAssetStrategy = ""
	FeeAssetAMM       FeeAssetStrategy = "amm-reserve"
	FeeAssetAllowList FeeAssetStrategy = "allow-listed-currency"
)

type ChainInfo struct {
	Slug           string           `json:"slug" validate:"required"`
	Family         ConsensusFamily  `json:"family" validate:"required,oneof=substrate-relay substrate-para evm bitcoin ton cardano"`
	Network        NetworkKind      `json:"network,omitempty"`
	ParaID         *uint32          `json:"paraId,omitempty"`
	EVMChainID     *uint64          `json:"evmChainId,omitempty"`
	BitcoinNetwork BitcoinNetwork   `json:"bitcoinNetwork,omitempty"`
	XcmPallets     []XcmPallet      `json:"xcmPallets,omitempty"`
	XcmVersion     XcmVersion       `json:"xcmVersion,omitempty"`
	FeeAssets      FeeAssetStrategy `json:"feeAssets,omitempty"`
	IsTestnet      bool             `json:"isTestnet"`
	// BridgeGateway is the bridge contract on an EVM chain.
	BridgeGateway string `json:"bridgeGateway,omitempty"`
}

func (c ChainInfo) SupportsXcm() bool {
	return len(c.XcmPallets) > 0
}

func (c ChainInfo) HasPallet(p XcmPallet) bool {
	return slices.Contains(c.XcmPallets, p)
}

// UsesAccountKey20 reports whether accounts on the chain are 20-byte keys.
func (c ChainInfo) UsesAccountKey20() bool {
	return c.Family == FamilyEVM || c.EVMChainID != nil
}

// SameConsensus reports whether both chains live under one consensus system.
func SameConsensus(a, b ChainInfo) bool {
	if a.Network == "" || b.Network == "" {
		return a.Slug == b.Slug
	}
	return a.Network == b.Network
}
