package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/vultisig/xtransfer/internal/metrics"
)

type config struct {
	LogFormat    string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	RegistryPath string `envconfig:"REGISTRY_PATH"`
	Metrics      metrics.Config
	Blockchair   blockchairConfig
	Rpc          rpc
	FeeAsset     feeAssetConfig
	Bridge       bridgeConfig
}

type blockchairConfig struct {
	URL    string `envconfig:"BLOCKCHAIR_URL" default:"https://api.blockchair.com"`
	APIKey string `envconfig:"BLOCKCHAIR_API_KEY"`
	// FeeRate overrides the suggested sat/vB rate when non-zero.
	FeeRate uint64 `envconfig:"UTXO_FEE_RATE"`
}

type rpc struct {
	Ethereum  rpcItem
	Statemint rpcItem
	Hydration rpcItem
}

type rpcItem struct {
	URL string
}

// substrate returns the configured Substrate endpoints keyed by chain slug.
func (r rpc) substrate() map[string]string {
	urls := map[string]string{}
	if r.Statemint.URL != "" {
		urls["statemint"] = r.Statemint.URL
	}
	if r.Hydration.URL != "" {
		urls["hydradx_main"] = r.Hydration.URL
	}
	return urls
}

type feeAssetConfig struct {
	SafeFractionBips uint64 `envconfig:"FEE_ASSET_SAFE_BIPS" default:"100"`
	// Prices maps a price id to a quote, e.g. "polkadot:4.1,hydradx:0.012".
	Prices map[string]string `envconfig:"FEE_ASSET_PRICES"`
}

type bridgeConfig struct {
	// DestinationFee is paid on the destination parachain, in the bridged
	// asset's smallest units.
	DestinationFee string `envconfig:"BRIDGE_DESTINATION_FEE" default:"0"`
}

func newConfig() (config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}
