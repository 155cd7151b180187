package xcm

import (
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/vultisig/xtransfer/internal/types"
)

// Asset is a fungible amount of the asset identified by ID.
type Asset struct {
	ID     types.MultiLocation
	Amount *big.Int
}

// WeightLimit bounds the execution weight bought on the destination.
type WeightLimit struct {
	Unlimited bool
	RefTime   uint64
	ProofSize uint64
}

var Unlimited = WeightLimit{Unlimited: true}

// VersionedLocation is a MultiLocation tagged with the version it is
// encoded under.
type VersionedLocation struct {
	Version  types.XcmVersion
	Location types.MultiLocation
}

func (l VersionedLocation) Encode(enc scale.Encoder) error {
	if err := checkVersion(l.Version); err != nil {
		return err
	}
	if err := enc.PushByte(versionedLocationIndex[l.Version]); err != nil {
		return err
	}
	return encodeLocation(enc, l.Location, l.Version)
}

// VersionedAssets is an asset list tagged with its encoding version.
type VersionedAssets struct {
	Version types.XcmVersion
	Assets  []Asset
}

func (a VersionedAssets) Encode(enc scale.Encoder) error {
	if err := checkVersion(a.Version); err != nil {
		return err
	}
	if err := enc.PushByte(versionedAssetsIndex[a.Version]); err != nil {
		return err
	}
	return encodeAssets(enc, a.Assets, a.Version)
}

type versioned interface {
	version() types.XcmVersion
}

func (l VersionedLocation) version() types.XcmVersion { return l.Version }
func (a VersionedAssets) version() types.XcmVersion   { return a.Version }

type payload struct {
	label string
	value versioned
}

// uniformVersion fails with ErrEncodingMismatch unless every payload carries
// the same version tag.
func uniformVersion(payloads ...payload) (types.XcmVersion, error) {
	if len(payloads) == 0 {
		return 0, fmt.Errorf("%w: no payloads", types.ErrEncodingMismatch)
	}
	want := payloads[0].value.version()
	for _, p := range payloads[1:] {
		if got := p.value.version(); got != want {
			return 0, fmt.Errorf("%w: %s is v%d, %s is v%d",
				types.ErrEncodingMismatch, payloads[0].label, want, p.label, got)
		}
	}
	return want, checkVersion(want)
}
