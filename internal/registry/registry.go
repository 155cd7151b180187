// Package registry loads the chain and asset metadata the constructor works
// from.
package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vultisig/xtransfer/internal/types"
)

type Registry struct {
	chains map[string]types.ChainInfo
	assets map[string]types.ChainAsset
}

type document struct {
	Chains []types.ChainInfo  `json:"chains"`
	Assets []types.ChainAsset `json:"assets"`
}

// Load reads a JSON document of the form {"chains": [...], "assets": [...]}.
func Load(r io.Reader) (*Registry, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode registry: %w", err)
	}

	reg := &Registry{
		chains: make(map[string]types.ChainInfo, len(doc.Chains)),
		assets: make(map[string]types.ChainAsset, len(doc.Assets)),
	}
	for _, c := range doc.Chains {
		if err := types.ValidateChainInfo(c); err != nil {
			return nil, err
		}
		if _, ok := reg.chains[c.Slug]; ok {
			return nil, fmt.Errorf("duplicate chain %s", c.Slug)
		}
		reg.chains[c.Slug] = c
	}
	for _, a := range doc.Assets {
		if err := types.ValidateChainAsset(a); err != nil {
			return nil, err
		}
		if _, ok := reg.chains[a.OriginChain]; !ok {
			return nil, fmt.Errorf("asset %s: unknown chain %s", a.Slug, a.OriginChain)
		}
		if _, ok := reg.assets[a.Slug]; ok {
			return nil, fmt.Errorf("duplicate asset %s", a.Slug)
		}
		reg.assets[a.Slug] = a
	}
	return reg, nil
}

func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f)
}

func (r *Registry) Chain(slug string) (types.ChainInfo, error) {
	c, ok := r.chains[slug]
	if !ok {
		return types.ChainInfo{}, fmt.Errorf("%w: unknown chain %s", types.ErrInvalidIntent, slug)
	}
	return c, nil
}

func (r *Registry) Asset(slug string) (types.ChainAsset, error) {
	a, ok := r.assets[slug]
	if !ok {
		return types.ChainAsset{}, fmt.Errorf("%w: unknown asset %s", types.ErrInvalidIntent, slug)
	}
	return a, nil
}

// NativeAsset returns the native asset of chain.
func (r *Registry) NativeAsset(chain string) (types.ChainAsset, error) {
	for _, a := range r.assets {
		if a.OriginChain == chain && a.IsNative() {
			return a, nil
		}
	}
	return types.ChainAsset{}, fmt.Errorf("%w: no native asset on %s", types.ErrInvalidIntent, chain)
}

// Resolve looks up the asset and chains an intent refers to.
func (r *Registry) Resolve(intent types.TransferIntent) (types.ChainAsset, types.ChainInfo, types.ChainInfo, error) {
	asset, err := r.Asset(intent.Asset)
	if err != nil {
		return types.ChainAsset{}, types.ChainInfo{}, types.ChainInfo{}, err
	}
	origin, err := r.Chain(intent.OriginChain)
	if err != nil {
		return types.ChainAsset{}, types.ChainInfo{}, types.ChainInfo{}, err
	}
	dest, err := r.Chain(intent.DestinationChain)
	if err != nil {
		return types.ChainAsset{}, types.ChainInfo{}, types.ChainInfo{}, err
	}
	if asset.OriginChain != origin.Slug {
		return types.ChainAsset{}, types.ChainInfo{}, types.ChainInfo{}, fmt.Errorf("%w: asset %s lives on %s, not %s",
			types.ErrInvalidIntent, asset.Slug, asset.OriginChain, origin.Slug)
	}
	return asset, origin, dest, nil
}

//go:embed default.json
var defaultRegistry []byte

// Default returns the built-in registry.
func Default() (*Registry, error) {
	return Load(bytes.NewReader(defaultRegistry))
}
