package xcm

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/vultisig/xtransfer/internal/types"
)

// chainLocation is the location of chain as seen from any parachain.
func chainLocation(c types.ChainInfo) (types.MultiLocation, error) {
	switch c.Family {
	case types.FamilySubstrateRelay:
		return types.NewLocation(1), nil
	case types.FamilySubstratePara:
		if c.ParaID == nil {
			return types.MultiLocation{}, fmt.Errorf("%w: parachain %s has no para id", types.ErrUnsupportedProtocol, c.Slug)
		}
		return types.NewLocation(1, types.Parachain(*c.ParaID)), nil
	default:
		return types.MultiLocation{}, fmt.Errorf("%w: %s is not addressable by xcm", types.ErrUnsupportedProtocol, c.Slug)
	}
}

// reanchor rewrites a parachain-relative location so it is seen from ctx.
func reanchor(l types.MultiLocation, ctx types.ChainInfo) types.MultiLocation {
	switch ctx.Family {
	case types.FamilySubstrateRelay:
		if l.Parents > 0 {
			return types.MultiLocation{Parents: l.Parents - 1, Interior: l.Interior}
		}
	case types.FamilySubstratePara:
		if ctx.ParaID != nil && l.Parents == 1 && len(l.Interior) > 0 &&
			l.Interior[0].Kind == types.JunctionParachain && l.Interior[0].ParaID == *ctx.ParaID {
			return types.Here().Append(l.Interior[1:]...)
		}
	}
	return l
}

// canonicalAssetLocation returns the asset location as seen from a
// parachain, filling in native tokens whose location is implied by their
// chain.
func canonicalAssetLocation(asset types.ChainAsset, origin types.ChainInfo) (types.MultiLocation, error) {
	if !asset.HasMultiLocation() {
		if !asset.IsNative() {
			return types.MultiLocation{}, fmt.Errorf("%w: asset %s has no multilocation", types.ErrEncodingMismatch, asset.Slug)
		}
		return chainLocation(origin)
	}

	l := *asset.Metadata.MultiLocation
	if l.Parents > 0 {
		return l, nil
	}
	home, err := chainLocation(origin)
	if err != nil {
		return types.MultiLocation{}, err
	}
	return home.Append(l.Interior...), nil
}

// assetLocation is the asset location as seen from ctx.
func assetLocation(asset types.ChainAsset, origin, ctx types.ChainInfo) (types.MultiLocation, error) {
	l, err := canonicalAssetLocation(asset, origin)
	if err != nil {
		return types.MultiLocation{}, err
	}
	return reanchor(l, ctx), nil
}

// destinationLocation is dest as seen from origin.
func destinationLocation(origin, dest types.ChainInfo, protocol Protocol) (types.MultiLocation, error) {
	if protocol == ProtocolBridgeTransfer {
		return bridgeDestination(origin, dest)
	}
	l, err := chainLocation(dest)
	if err != nil {
		return types.MultiLocation{}, err
	}
	return reanchor(l, origin), nil
}

func bridgeDestination(origin, dest types.ChainInfo) (types.MultiLocation, error) {
	if dest.Network == "" {
		return types.MultiLocation{}, fmt.Errorf("%w: bridge destination %s has no network", types.ErrUnsupportedProtocol, dest.Slug)
	}
	network := types.NetworkID{Kind: dest.Network}
	if dest.Network == types.NetworkEthereum {
		if dest.EVMChainID == nil {
			return types.MultiLocation{}, fmt.Errorf("%w: ethereum destination %s has no chain id", types.ErrUnsupportedProtocol, dest.Slug)
		}
		network.ChainID = *dest.EVMChainID
	}

	parents := uint8(2)
	if origin.Family == types.FamilySubstrateRelay {
		parents = 1
	}
	l := types.NewLocation(parents, types.GlobalConsensus(network))
	if dest.Family.IsSubstrate() && dest.ParaID != nil {
		l = l.Append(types.Parachain(*dest.ParaID))
	}
	return l, nil
}

// AssetLocationOn returns the location of an asset held on chain as chain
// itself sees it.
func AssetLocationOn(asset types.ChainAsset, chain types.ChainInfo) (types.MultiLocation, error) {
	return assetLocation(asset, chain, chain)
}

// LocationBytes returns the SCALE encoding of an unversioned location.
func LocationBytes(l types.MultiLocation, v types.XcmVersion) ([]byte, error) {
	if err := checkVersion(v); err != nil {
		return nil, err
	}
	return encodeWith(func(enc scale.Encoder) error {
		return encodeLocation(enc, l, v)
	})
}
