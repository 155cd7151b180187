package feeasset

import (
	"context"
	"fmt"
	"math/big"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vultisig/xtransfer/internal/metrics"
	"github.com/vultisig/xtransfer/internal/types"
)

const defaultConcurrency = 8

// Resolver lists the assets an account can pay network fees with.
type Resolver struct {
	reserves    ReserveSource
	registry    CurrencyRegistry
	safeBips    uint64
	concurrency int
	metrics     metrics.Recorder
	logger      logrus.FieldLogger
}

type Option func(*Resolver)

func WithReserveSource(s ReserveSource) Option {
	return func(r *Resolver) { r.reserves = s }
}

func WithCurrencyRegistry(c CurrencyRegistry) Option {
	return func(r *Resolver) { r.registry = c }
}

// WithSafeFractionBips sets the share of a pool's candidate reserve a fee
// conversion may take, in basis points.
func WithSafeFractionBips(bips uint64) Option {
	return func(r *Resolver) {
		if bips > 0 {
			r.safeBips = bips
		}
	}
}

func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithMetrics(m metrics.Recorder) Option {
	return func(r *Resolver) { r.metrics = metrics.OrNoop(m) }
}

func NewResolver(logger logrus.FieldLogger, opts ...Option) *Resolver {
	r := &Resolver{
		safeBips:    DefaultSafeFractionBips,
		concurrency: defaultConcurrency,
		metrics:     metrics.Noop{},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type candidateFunc func(ctx context.Context, req Request, candidate Balance) (*FeePayableAsset, error)

func (r *Resolver) strategy(chain types.ChainInfo) (candidateFunc, error) {
	switch chain.FeeAssets {
	case types.FeeAssetNone:
		return nil, nil
	case types.FeeAssetAMM:
		if r.reserves == nil {
			return nil, fmt.Errorf("%w: no reserve source for %s", types.ErrUnsupportedProtocol, chain.Slug)
		}
		return r.resolveAMM, nil
	case types.FeeAssetAllowList:
		if r.registry == nil {
			return nil, fmt.Errorf("%w: no currency registry for %s", types.ErrUnsupportedProtocol, chain.Slug)
		}
		return r.resolveAllowListed, nil
	default:
		return nil, fmt.Errorf("%w: fee asset strategy %q", types.ErrUnsupportedProtocol, chain.FeeAssets)
	}
}

// Resolve returns the native asset followed by every candidate that can pay
// the fee on req.Chain. Candidate lookups run concurrently and a failed
// lookup only drops that candidate; the reason is kept in Report.Rejected.
// Candidates that cover the fee are listed before those that do not.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Report, error) {
	if !req.Native.Asset.IsNative() {
		return nil, fmt.Errorf("%w: %s is not a native asset", types.ErrInvalidIntent, req.Native.Asset.Slug)
	}
	if req.FeeAmount != nil && req.FeeAmount.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative fee amount", types.ErrInvalidIntent)
	}
	resolve, err := r.strategy(req.Chain)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Strategy: req.Chain.FeeAssets,
		Assets:   []FeePayableAsset{nativeAsset(req)},
	}
	r.metrics.RecordResolution(req.Chain.Slug, string(req.Chain.FeeAssets))
	if resolve == nil {
		return report, nil
	}

	candidates := make([]Balance, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		if c.Asset.Slug == req.Native.Asset.Slug {
			continue
		}
		candidates = append(candidates, c)
	}

	type candidateResult struct {
		asset *FeePayableAsset
		err   error
	}
	results := make([]candidateResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _i, _candidate := range candidates {
		i, candidate := _i, _candidate
		g.Go(func() error {
			asset, err := resolve(gctx, req, candidate)
			results[i] = candidateResult{asset: asset, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("errgroup failed: %w", err)
	}

	var payable []FeePayableAsset
	for i, result := range results {
		slug := candidates[i].Asset.Slug
		if result.err != nil {
			report.Rejected = append(report.Rejected, Rejection{Slug: slug, Err: result.err})
			r.metrics.RecordCandidateDropped(string(req.Chain.FeeAssets), result.err)
			r.logger.WithFields(logrus.Fields{
				"chain":     req.Chain.Slug,
				"candidate": slug,
				"reason":    types.KindOf(result.err),
			}).WithError(result.err).Debug("fee asset candidate dropped")
			continue
		}
		payable = append(payable, *result.asset)
	}
	slices.SortStableFunc(payable, func(a, b FeePayableAsset) int {
		switch {
		case a.CoversFee == b.CoversFee:
			return 0
		case a.CoversFee:
			return -1
		default:
			return 1
		}
	})
	report.Assets = append(report.Assets, payable...)

	r.logger.WithFields(logrus.Fields{
		"chain":    req.Chain.Slug,
		"strategy": req.Chain.FeeAssets,
		"payable":  len(report.Assets),
		"rejected": len(report.Rejected),
	}).Debug("resolved fee assets")

	return report, nil
}

func nativeAsset(req Request) FeePayableAsset {
	asset := FeePayableAsset{
		Slug:          req.Native.Asset.Slug,
		Balance:       req.Native.Amount,
		Rate:          decimal.NewFromInt(1),
		LiquiditySafe: true,
		Native:        true,
	}
	if req.FeeAmount != nil {
		asset.FeeAmount = new(big.Int).Set(req.FeeAmount)
	}
	asset.CoversFee = covers(req.Native.Amount, asset.FeeAmount)
	return asset
}
