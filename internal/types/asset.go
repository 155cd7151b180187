package types

import "slices"

type AssetType string

const (
	AssetNative  AssetType = "native"
	AssetLocal   AssetType = "local"
	AssetForeign AssetType = "foreign"
	AssetBridged AssetType = "bridged"
)

// AssetMetadata carries the optional cross-chain identifiers of an asset.
type AssetMetadata struct {
	// MultiLocation locates the asset as seen from a parachain, so parents 1
	// reaches the relay chain. Parents 0 is relative to the asset's own chain.
	MultiLocation *MultiLocation `json:"multilocation,omitempty"`
	// CurrencyID is a pre-encoded on-chain currency identifier. When present
	// it is used verbatim on the currency-id transfer path.
	CurrencyID []byte `json:"currencyId,omitempty"`
	// TeleportTo lists destination chain slugs trusted for teleports.
	TeleportTo []string `json:"teleportTo,omitempty"`
}

type ChainAsset struct {
	Slug        string        `json:"slug" validate:"required"`
	OriginChain string        `json:"originChain" validate:"required"`
	Symbol      string        `json:"symbol" validate:"required"`
	Decimals    int           `json:"decimals" validate:"gte=0,lte=36"`
	Type        AssetType     `json:"assetType" validate:"required"`
	Metadata    AssetMetadata `json:"metadata"`
	AssetID     string        `json:"assetId,omitempty"`
	PriceID     string        `json:"priceId,omitempty"`
}

func (a ChainAsset) IsNative() bool {
	return a.Type == AssetNative
}

func (a ChainAsset) HasMultiLocation() bool {
	return a.Metadata.MultiLocation != nil
}

// CanTeleportTo reports whether origin and dest are a trusted teleport pair
// for this asset.
func (a ChainAsset) CanTeleportTo(origin, dest string) bool {
	return a.OriginChain == origin && slices.Contains(a.Metadata.TeleportTo, dest)
}

// PriceKey is the key used against a price map.
func (a ChainAsset) PriceKey() string {
	if a.PriceID != "" {
		return a.PriceID
	}
	return a.Slug
}
