package blockchair

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/vultisig/xtransfer/internal/libhttp"
	"github.com/vultisig/xtransfer/internal/types"
)

const requestTimeout = 30 * time.Second

// chainPaths maps a network to its Blockchair path segment.
var chainPaths = map[types.BitcoinNetwork]string{
	types.BitcoinMainnet: "bitcoin",
	types.BitcoinTestnet: "bitcoin/testnet",
	types.Litecoin:       "litecoin",
	types.Dogecoin:       "dogecoin",
	types.BitcoinCash:    "bitcoin-cash",
}

type Client struct {
	url    string
	chain  string
	apiKey string
}

func NewClient(url string, network types.BitcoinNetwork, apiKey string) (*Client, error) {
	chain, ok := chainPaths[network]
	if !ok {
		return nil, fmt.Errorf("blockchair does not serve %q", network)
	}
	return &Client{
		url:    strings.TrimRight(url, "/"),
		chain:  chain,
		apiKey: apiKey,
	}, nil
}

func (c *Client) query(extra map[string]string) map[string]string {
	q := make(map[string]string, len(extra)+1)
	for k, v := range extra {
		q[k] = v
	}
	if c.apiKey != "" {
		q["key"] = c.apiKey
	}
	return q
}

type Utxo struct {
	BlockId         int    `json:"block_id"`
	TransactionHash string `json:"transaction_hash"`
	Index           uint32 `json:"index"`
	Value           uint64 `json:"value"`
}

// GetAllUnspent fetches all UTXOs for an address.
func (c *Client) GetAllUnspent(ctx context.Context, address string) ([]Utxo, error) {
	var allUtxos []Utxo
	offset := 0
	const limit = 50

	for {
		batch, err := libhttp.Call[addrInfoResponse](
			ctx,
			http.MethodGet,
			c.url+"/"+c.chain+"/dashboards/address/"+address,
			nil,
			nil,
			c.query(map[string]string{
				"offset": fmt.Sprintf("0,%d", offset),
				"limit":  fmt.Sprintf("0,%d", limit),
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch address info: %w", err)
		}

		val, ok := batch.Data[address]
		if !ok {
			break
		}

		allUtxos = append(allUtxos, val.Utxo...)
		if len(val.Utxo) < limit {
			break
		}
		offset += limit
	}

	return allUtxos, nil
}

// GetRawTransaction returns the serialized transaction txHash.
func (c *Client) GetRawTransaction(ctx context.Context, txHash string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	type dataItem struct {
		RawTx string `json:"raw_transaction"`
	}

	type res struct {
		Data map[string]dataItem `json:"data"`
	}

	r, err := libhttp.Call[res](
		ctx,
		http.MethodGet,
		c.url+"/"+c.chain+"/raw/transaction/"+txHash,
		nil,
		nil,
		c.query(nil),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get raw tx: %w", err)
	}

	data, ok := r.Data[txHash]
	if !ok {
		return nil, fmt.Errorf("failed to get tx from response, hash=%s", txHash)
	}

	return hex.DecodeString(data.RawTx)
}

type statsResponse struct {
	Data struct {
		SuggestedFeePerByte float64 `json:"suggested_transaction_fee_per_byte_sat"`
		Blocks              int64   `json:"blocks"`
		MempoolTransactions int64   `json:"mempool_transactions"`
	} `json:"data"`
}

// SatsPerByte returns the suggested fee rate, never below 1 sat/vB.
func (c *Client) SatsPerByte(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	r, err := libhttp.Call[statsResponse](
		ctx,
		http.MethodGet,
		c.url+"/"+c.chain+"/stats",
		nil,
		nil,
		c.query(nil),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to get stats: %w", err)
	}

	rate := uint64(math.Ceil(r.Data.SuggestedFeePerByte))
	if rate == 0 {
		rate = 1
	}
	return rate, nil
}

type addrInfoResponse struct {
	Data map[string]struct {
		Address struct {
			Type               string `json:"type"`
			ScriptHex          string `json:"script_hex"`
			Balance            int64  `json:"balance"`
			UnspentOutputCount int    `json:"unspent_output_count"`
		} `json:"address"`
		Utxo []Utxo `json:"utxo"`
	} `json:"data"`
	Context struct {
		Code    int    `json:"code"`
		Limit   string `json:"limit"`
		Offset  string `json:"offset"`
		Results int    `json:"results"`
		State   int    `json:"state"`
	} `json:"context"`
}
