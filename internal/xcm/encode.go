package xcm

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/vultisig/xtransfer/internal/types"
)

// maxJunctions is the longest interior a Junctions enum can carry (X8).
const maxJunctions = 8

var maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Discriminants of the Versioned* wrappers.
var (
	versionedLocationIndex = map[types.XcmVersion]byte{types.XcmV2: 1, types.XcmV3: 3, types.XcmV4: 4}
	versionedAssetsIndex   = map[types.XcmVersion]byte{types.XcmV2: 1, types.XcmV3: 3, types.XcmV4: 4}
	versionedXcmIndex      = map[types.XcmVersion]byte{types.XcmV2: 2, types.XcmV3: 3, types.XcmV4: 4}
)

// networkIndex holds NetworkId discriminants for V3 and V4.
var networkIndex = map[types.NetworkKind]byte{
	types.NetworkPolkadot:    2,
	types.NetworkKusama:      3,
	types.NetworkWestend:     4,
	types.NetworkRococo:      5,
	types.NetworkEthereum:    7,
	types.NetworkBitcoinCore: 8,
}

// networkIndexV2 holds NetworkId discriminants for V2, which only knows
// Any/Named/Polkadot/Kusama.
var networkIndexV2 = map[types.NetworkKind]byte{
	types.NetworkPolkadot: 2,
	types.NetworkKusama:   3,
}

func checkVersion(v types.XcmVersion) error {
	if _, ok := versionedLocationIndex[v]; !ok {
		return fmt.Errorf("%w: unsupported xcm version %d", types.ErrEncodingMismatch, v)
	}
	return nil
}

// encodeWith runs fn against a fresh encoder and returns the bytes written.
func encodeWith(fn func(enc scale.Encoder) error) ([]byte, error) {
	var buf bytes.Buffer
	enc := scale.NewEncoder(&buf)
	if err := fn(*enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeCompact(enc scale.Encoder, v *big.Int) error {
	if v == nil || v.Sign() < 0 {
		return fmt.Errorf("%w: compact value must be non-negative", types.ErrEncodingMismatch)
	}
	return enc.EncodeUintCompact(*v)
}

func encodeCompactUint(enc scale.Encoder, v uint64) error {
	return enc.EncodeUintCompact(*new(big.Int).SetUint64(v))
}

// encodeU128 writes v as a fixed 16-byte little-endian integer.
func encodeU128(enc scale.Encoder, v *big.Int) error {
	if v == nil || v.Sign() < 0 || v.Cmp(maxU128) > 0 {
		return fmt.Errorf("%w: value %v does not fit u128", types.ErrEncodingMismatch, v)
	}
	be := v.FillBytes(make([]byte, 16))
	le := make([]byte, 16)
	for i := range be {
		le[15-i] = be[i]
	}
	return enc.Write(le)
}

func encodeNetwork(enc scale.Encoder, n types.NetworkID, v types.XcmVersion) error {
	if v == types.XcmV2 {
		idx, ok := networkIndexV2[n.Kind]
		if !ok {
			return fmt.Errorf("%w: network %s has no v2 encoding", types.ErrEncodingMismatch, n.Kind)
		}
		return enc.PushByte(idx)
	}

	idx, ok := networkIndex[n.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown network %q", types.ErrEncodingMismatch, n.Kind)
	}
	if err := enc.PushByte(idx); err != nil {
		return err
	}
	if n.Kind == types.NetworkEthereum {
		return encodeCompactUint(enc, n.ChainID)
	}
	return nil
}

// encodeJunctionNetwork writes the optional network of an account junction.
// V2 has no Option here and uses NetworkId::Any (0) instead of None.
func encodeJunctionNetwork(enc scale.Encoder, n *types.NetworkID, v types.XcmVersion) error {
	if v == types.XcmV2 {
		if n == nil {
			return enc.PushByte(0)
		}
		return encodeNetwork(enc, *n, v)
	}
	if n == nil {
		return enc.PushByte(0)
	}
	if err := enc.PushByte(1); err != nil {
		return err
	}
	return encodeNetwork(enc, *n, v)
}

func encodeJunction(enc scale.Encoder, j types.Junction, v types.XcmVersion) error {
	var err error
	switch j.Kind {
	case types.JunctionParachain:
		if err = enc.PushByte(0); err != nil {
			return err
		}
		return encodeCompactUint(enc, uint64(j.ParaID))
	case types.JunctionAccountID32:
		if err = enc.PushByte(1); err != nil {
			return err
		}
		if err = encodeJunctionNetwork(enc, j.Network, v); err != nil {
			return err
		}
		return enc.Write(j.AccountID[:])
	case types.JunctionAccountKey20:
		if err = enc.PushByte(3); err != nil {
			return err
		}
		if err = encodeJunctionNetwork(enc, j.Network, v); err != nil {
			return err
		}
		return enc.Write(j.Key[:])
	case types.JunctionPalletInstance:
		if err = enc.PushByte(4); err != nil {
			return err
		}
		return enc.PushByte(j.PalletInstance)
	case types.JunctionGeneralIndex:
		if err = enc.PushByte(5); err != nil {
			return err
		}
		return encodeCompact(enc, j.GeneralIndex)
	case types.JunctionGlobalConsensus:
		if v == types.XcmV2 {
			return fmt.Errorf("%w: GlobalConsensus requires xcm v3 or later", types.ErrEncodingMismatch)
		}
		if err = enc.PushByte(9); err != nil {
			return err
		}
		return encodeNetwork(enc, j.Global, v)
	default:
		return fmt.Errorf("%w: unknown junction %q", types.ErrEncodingMismatch, j.Kind)
	}
}

func encodeLocation(enc scale.Encoder, l types.MultiLocation, v types.XcmVersion) error {
	if len(l.Interior) > maxJunctions {
		return fmt.Errorf("%w: location has %d junctions, max %d", types.ErrEncodingMismatch, len(l.Interior), maxJunctions)
	}
	if err := enc.PushByte(l.Parents); err != nil {
		return err
	}
	// Here is 0, X1..X8 are 1..8 in every version.
	if err := enc.PushByte(byte(len(l.Interior))); err != nil {
		return err
	}
	for _, j := range l.Interior {
		if err := encodeJunction(enc, j, v); err != nil {
			return err
		}
	}
	return nil
}

func encodeAsset(enc scale.Encoder, a Asset, v types.XcmVersion) error {
	if v != types.XcmV4 {
		// AssetId::Concrete
		if err := enc.PushByte(0); err != nil {
			return err
		}
	}
	if err := encodeLocation(enc, a.ID, v); err != nil {
		return err
	}
	// Fungibility::Fungible
	if err := enc.PushByte(0); err != nil {
		return err
	}
	return encodeCompact(enc, a.Amount)
}

func encodeAssets(enc scale.Encoder, assets []Asset, v types.XcmVersion) error {
	if err := encodeCompactUint(enc, uint64(len(assets))); err != nil {
		return err
	}
	for _, a := range assets {
		if err := encodeAsset(enc, a, v); err != nil {
			return err
		}
	}
	return nil
}

func encodeWeightLimit(enc scale.Encoder, w WeightLimit, v types.XcmVersion) error {
	if w.Unlimited {
		return enc.PushByte(0)
	}
	if err := enc.PushByte(1); err != nil {
		return err
	}
	if v == types.XcmV2 {
		return encodeCompactUint(enc, w.RefTime)
	}
	if err := encodeCompactUint(enc, w.RefTime); err != nil {
		return err
	}
	return encodeCompactUint(enc, w.ProofSize)
}
