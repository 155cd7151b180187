package substrate

import (
	"context"
	"fmt"
	"slices"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/xtransfer/internal/feeasset"
	"github.com/vultisig/xtransfer/internal/types"
	"github.com/vultisig/xtransfer/internal/xcm"
)

const getReservesMethod = "AssetConversionApi_get_reserves"

// PoolReserves reads asset-conversion pool reserves through the runtime
// API. Callers are keyed by chain slug.
type PoolReserves struct {
	callers map[string]Caller
	logger  logrus.FieldLogger
}

var _ feeasset.ReserveSource = (*PoolReserves)(nil)

func NewPoolReserves(callers map[string]Caller, logger logrus.FieldLogger) *PoolReserves {
	return &PoolReserves{
		callers: callers,
		logger:  logger,
	}
}

func (p *PoolReserves) GetReserves(
	ctx context.Context,
	chain types.ChainInfo,
	native, candidate types.ChainAsset,
) (*feeasset.AmmReserve, error) {
	c, ok := p.callers[chain.Slug]
	if !ok {
		return nil, fmt.Errorf("no rpc for %s", chain.Slug)
	}

	version := chain.XcmVersion
	if version == 0 {
		version = types.DefaultXcmVersion
	}
	args, err := p.locationArgs(chain, version, native, candidate)
	if err != nil {
		return nil, err
	}

	out, err := stateCall(ctx, c, getReservesMethod, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", getReservesMethod, err)
	}
	reserve, err := decodeReserves(out)
	if err != nil {
		return nil, err
	}

	p.logger.WithFields(logrus.Fields{
		"chain":     chain.Slug,
		"candidate": candidate.Slug,
		"found":     reserve != nil,
	}).Debug("fetched pool reserves")
	return reserve, nil
}

func (p *PoolReserves) locationArgs(chain types.ChainInfo, v types.XcmVersion, assets ...types.ChainAsset) ([]byte, error) {
	var args []byte
	for _, a := range assets {
		loc, err := xcm.AssetLocationOn(a, chain)
		if err != nil {
			return nil, err
		}
		enc, err := xcm.LocationBytes(loc, v)
		if err != nil {
			return nil, err
		}
		args = append(args, enc...)
	}
	return args, nil
}

// decodeReserves decodes Option<(u128, u128)>. None yields nil.
func decodeReserves(b []byte) (*feeasset.AmmReserve, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("empty reserves result")
	}
	switch b[0] {
	case 0:
		return nil, nil
	case 1:
		if len(b) != 33 {
			return nil, fmt.Errorf("reserves result is %d bytes, want 33", len(b))
		}
		return &feeasset.AmmReserve{
			Native:    leUint(b[1:17]),
			Candidate: leUint(b[17:33]),
		}, nil
	default:
		return nil, fmt.Errorf("bad option tag %d", b[0])
	}
}

func leUint(le []byte) *uint256.Int {
	be := slices.Clone(le)
	slices.Reverse(be)
	return new(uint256.Int).SetBytes(be)
}
