package blockchair

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vultisig/xtransfer/internal/types"
)

const testAddress = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"

func TestNewClient(t *testing.T) {
	_, err := NewClient("https://api.blockchair.com", types.BitcoinNetwork("zcash"), "")
	require.Error(t, err)

	c, err := NewClient("https://api.blockchair.com/", types.BitcoinCash, "")
	require.NoError(t, err)
	assert.Equal(t, "https://api.blockchair.com", c.url)
	assert.Equal(t, "bitcoin-cash", c.chain)
}

func TestGetAllUnspent_Paginates(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/litecoin/dashboards/address/"+testAddress, r.URL.Path)
		require.Equal(t, "secret", r.URL.Query().Get("key"))
		calls++

		count := 50
		if r.URL.Query().Get("offset") == "0,50" {
			count = 3
		}
		utxos := make([]string, count)
		for i := range utxos {
			utxos[i] = fmt.Sprintf(`{"block_id":1,"transaction_hash":"%064x","index":%d,"value":%d}`, i, i, 1000+i)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":{%q:{"address":{"type":"witness_v0_keyhash"},"utxo":[%s]}}}`,
			testAddress, strings.Join(utxos, ","))
	}))
	defer server.Close()

	c, err := NewClient(server.URL, types.Litecoin, "secret")
	require.NoError(t, err)

	utxos, err := c.GetAllUnspent(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Len(t, utxos, 53)
	assert.Equal(t, 2, calls)
	assert.Equal(t, uint64(1002), utxos[52].Value)
}

func TestGetRawTransaction(t *testing.T) {
	hash := strings.Repeat("ab", 32)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bitcoin/raw/transaction/"+hash, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"data":{%q:{"raw_transaction":"0102ff"}}}`, hash)
	}))
	defer server.Close()

	c, err := NewClient(server.URL, types.BitcoinMainnet, "")
	require.NoError(t, err)

	raw, err := c.GetRawTransaction(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0xff}, raw)

	_, err = c.GetRawTransaction(context.Background(), strings.Repeat("cd", 32))
	require.Error(t, err)
}

func TestGetRawTransaction_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := NewClient(server.URL, types.Dogecoin, "")
	require.NoError(t, err)

	_, err = c.GetRawTransaction(context.Background(), "00")
	require.Error(t, err)
}

func TestSatsPerByte(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected uint64
	}{
		{"rounds up", `{"data":{"suggested_transaction_fee_per_byte_sat":12.2}}`, 13},
		{"floors at one", `{"data":{"suggested_transaction_fee_per_byte_sat":0}}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/bitcoin/testnet/stats", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, err := NewClient(server.URL, types.BitcoinTestnet, "")
			require.NoError(t, err)

			rate, err := c.SatsPerByte(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rate)
		})
	}
}
