package xcm

import (
	"fmt"

	"github.com/vultisig/xtransfer/internal/types"
)

// Protocol is the cross-chain transfer model chosen for a transfer.
type Protocol string

const (
	ProtocolTeleport        Protocol = "TELEPORT"
	ProtocolReserveTransfer Protocol = "RESERVE_TRANSFER"
	ProtocolBridgeTransfer  Protocol = "BRIDGE_TRANSFER"
)

// Entry points.
const (
	MethodLimitedTeleportAssets        = "limitedTeleportAssets"
	MethodLimitedReserveTransferAssets = "limitedReserveTransferAssets"
	MethodTransferAssets               = "transferAssets"
	MethodTransferMultiassets          = "transferMultiassets"
	MethodTransfer                     = "transfer"
	MethodSendToken                    = "sendToken"

	// PalletSnowbridgeGateway is the gateway contract on the Ethereum side
	// of the Polkadot bridge.
	PalletSnowbridgeGateway = "snowbridgeGateway"
)

// AssetPath is how the builder identifies the asset on the wire.
type AssetPath string

const (
	AssetPathLocation   AssetPath = "multilocation"
	AssetPathCurrencyID AssetPath = "currency-id"
)

// ProtocolDecision is the single transfer route for an
// (asset, origin, destination) triple.
type ProtocolDecision struct {
	Protocol  Protocol         `json:"protocol"`
	Pallet    string           `json:"pallet"`
	Method    string           `json:"method"`
	Version   types.XcmVersion `json:"version"`
	AssetPath AssetPath        `json:"assetPath"`
}

// routeFacts captures the three facts protocol precedence depends on.
type routeFacts uint8

const (
	factBridged routeFacts = 1 << iota
	factTeleportTrusted
	factSameConsensus
)

// protocolTable maps every combination of routeFacts to its protocol.
// Bridged assets leaving their consensus system always bridge, even when a
// teleport trust exists; otherwise a trusted pair teleports and everything
// else is a reserve transfer.
var protocolTable = [8]Protocol{
	0:                                                    ProtocolReserveTransfer,
	factBridged:                                          ProtocolBridgeTransfer,
	factTeleportTrusted:                                  ProtocolTeleport,
	factBridged | factTeleportTrusted:                    ProtocolBridgeTransfer,
	factSameConsensus:                                    ProtocolReserveTransfer,
	factBridged | factSameConsensus:                      ProtocolReserveTransfer,
	factTeleportTrusted | factSameConsensus:              ProtocolTeleport,
	factBridged | factTeleportTrusted | factSameConsensus: ProtocolTeleport,
}

func factsOf(asset types.ChainAsset, origin, dest types.ChainInfo) routeFacts {
	var f routeFacts
	if asset.Type == types.AssetBridged {
		f |= factBridged
	}
	if asset.CanTeleportTo(origin.Slug, dest.Slug) {
		f |= factTeleportTrusted
	}
	if types.SameConsensus(origin, dest) {
		f |= factSameConsensus
	}
	return f
}

// SelectProtocol decides the transfer protocol and pallet entry point. It is
// a pure function of its arguments.
func SelectProtocol(asset types.ChainAsset, origin, dest types.ChainInfo) (ProtocolDecision, error) {
	if origin.Slug == dest.Slug {
		return ProtocolDecision{}, fmt.Errorf("%w: %s to itself is not cross-chain", types.ErrUnsupportedProtocol, origin.Slug)
	}

	protocol := protocolTable[factsOf(asset, origin, dest)]
	if protocol == ProtocolBridgeTransfer {
		return selectBridge(asset, origin, dest)
	}

	if !dest.SupportsXcm() {
		return ProtocolDecision{}, fmt.Errorf("%w: %s declares no xcm support", types.ErrUnsupportedProtocol, dest.Slug)
	}

	version := negotiateVersion(origin, dest)

	switch origin.Family {
	case types.FamilySubstrateRelay:
		return selectOnRelay(asset, origin, protocol, version)
	case types.FamilySubstratePara:
		return selectOnPara(asset, origin, protocol, version)
	default:
		return ProtocolDecision{}, fmt.Errorf("%w: %s origin %s cannot send xcm", types.ErrUnsupportedProtocol, origin.Family, origin.Slug)
	}
}

func selectBridge(asset types.ChainAsset, origin, dest types.ChainInfo) (ProtocolDecision, error) {
	d := ProtocolDecision{
		Protocol:  ProtocolBridgeTransfer,
		Version:   types.BridgeXcmVersion,
		AssetPath: AssetPathLocation,
	}
	if !asset.HasMultiLocation() {
		return ProtocolDecision{}, fmt.Errorf("%w: bridged asset %s has no multilocation", types.ErrEncodingMismatch, asset.Slug)
	}

	switch {
	case origin.Family == types.FamilyEVM:
		if dest.ParaID == nil {
			return ProtocolDecision{}, fmt.Errorf("%w: bridge destination %s has no para id", types.ErrUnsupportedProtocol, dest.Slug)
		}
		d.Pallet = PalletSnowbridgeGateway
		d.Method = MethodSendToken
	case origin.Family.IsSubstrate() && origin.HasPallet(types.PalletPolkadotXcm):
		d.Pallet = string(types.PalletPolkadotXcm)
		d.Method = MethodTransferAssets
	case origin.Family.IsSubstrate() && origin.HasPallet(types.PalletXcm):
		d.Pallet = string(types.PalletXcm)
		d.Method = MethodTransferAssets
	default:
		return ProtocolDecision{}, fmt.Errorf("%w: %s exposes no bridge gateway", types.ErrUnsupportedProtocol, origin.Slug)
	}
	return d, nil
}

func selectOnRelay(asset types.ChainAsset, origin types.ChainInfo, protocol Protocol, version types.XcmVersion) (ProtocolDecision, error) {
	if !origin.HasPallet(types.PalletXcm) {
		return ProtocolDecision{}, fmt.Errorf("%w: relay %s has no %s", types.ErrUnsupportedProtocol, origin.Slug, types.PalletXcm)
	}
	if !locatable(asset) {
		return ProtocolDecision{}, fmt.Errorf("%w: asset %s has no multilocation", types.ErrEncodingMismatch, asset.Slug)
	}
	return ProtocolDecision{
		Protocol:  protocol,
		Pallet:    string(types.PalletXcm),
		Method:    limitedMethod(protocol),
		Version:   version,
		AssetPath: AssetPathLocation,
	}, nil
}

func selectOnPara(asset types.ChainAsset, origin types.ChainInfo, protocol Protocol, version types.XcmVersion) (ProtocolDecision, error) {
	d := ProtocolDecision{Protocol: protocol, Version: version, AssetPath: AssetPathLocation}

	switch {
	case protocol == ProtocolTeleport:
		// Only the general xcm pallet can teleport.
		if !origin.HasPallet(types.PalletPolkadotXcm) {
			return ProtocolDecision{}, fmt.Errorf("%w: %s cannot teleport without %s", types.ErrUnsupportedProtocol, origin.Slug, types.PalletPolkadotXcm)
		}
		if !locatable(asset) {
			return ProtocolDecision{}, fmt.Errorf("%w: asset %s has no multilocation", types.ErrEncodingMismatch, asset.Slug)
		}
		d.Pallet = string(types.PalletPolkadotXcm)
		d.Method = MethodLimitedTeleportAssets
	case !locatable(asset):
		if !origin.HasPallet(types.PalletXTokens) {
			return ProtocolDecision{}, fmt.Errorf("%w: asset %s has no multilocation and %s has no %s",
				types.ErrEncodingMismatch, asset.Slug, origin.Slug, types.PalletXTokens)
		}
		d.Pallet = string(types.PalletXTokens)
		d.Method = MethodTransfer
		d.AssetPath = AssetPathCurrencyID
	case origin.HasPallet(types.PalletXTokens):
		d.Pallet = string(types.PalletXTokens)
		d.Method = MethodTransferMultiassets
	case origin.HasPallet(types.PalletPolkadotXcm):
		d.Pallet = string(types.PalletPolkadotXcm)
		d.Method = MethodLimitedReserveTransferAssets
	default:
		return ProtocolDecision{}, fmt.Errorf("%w: %s exposes no xcm transfer pallet", types.ErrUnsupportedProtocol, origin.Slug)
	}
	return d, nil
}

func limitedMethod(p Protocol) string {
	if p == ProtocolTeleport {
		return MethodLimitedTeleportAssets
	}
	return MethodLimitedReserveTransferAssets
}

// locatable reports whether the asset can be named by a location: either it
// carries one, or it is a native token whose location is implied.
func locatable(asset types.ChainAsset) bool {
	return asset.HasMultiLocation() || asset.IsNative()
}

// negotiateVersion picks the highest version both chains understand.
func negotiateVersion(origin, dest types.ChainInfo) types.XcmVersion {
	v := origin.XcmVersion
	if v == 0 || (dest.XcmVersion != 0 && dest.XcmVersion < v) {
		v = dest.XcmVersion
	}
	if v == 0 {
		return types.DefaultXcmVersion
	}
	if v > types.XcmV4 {
		return types.XcmV4
	}
	return v
}
