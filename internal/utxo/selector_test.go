package utxo

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vultisig/xtransfer/internal/types"
)

// perInputEstimator sizes a transaction by its input count only.
type perInputEstimator int

func (e perInputEstimator) VSize(inputs []Utxo, _ []*wire.TxOut) int {
	return int(e) * len(inputs)
}

var (
	recipientScript = append([]byte{0x00, 0x14}, bytes.Repeat([]byte{0x11}, 20)...)
	changeScript    = append([]byte{0x00, 0x14}, bytes.Repeat([]byte{0x22}, 20)...)
)

func witnessUtxos(values ...uint64) []Utxo {
	utxos := make([]Utxo, len(values))
	for i, v := range values {
		utxos[i] = Utxo{
			TxID:    fmt.Sprintf("%064x", i+1),
			Vout:    uint32(i),
			Value:   v,
			Script:  changeScript,
			Witness: true,
		}
	}
	return utxos
}

func newTestSelector(t *testing.T, vbytesPerInput int) *CoinSelector {
	t.Helper()
	params, err := ParamsFor(types.BitcoinMainnet)
	require.NoError(t, err)
	return NewCoinSelector(params, perInputEstimator(vbytesPerInput))
}

func values(utxos []Utxo) []uint64 {
	out := make([]uint64, len(utxos))
	for i, u := range utxos {
		out[i] = u.Value
	}
	return out
}

func TestSelectForSpend_LargestFirstWithChange(t *testing.T) {
	s := newTestSelector(t, 500)

	res, err := s.SelectForSpend(SpendRequest{
		Utxos:           witnessUtxos(2000, 5000, 3000),
		Amount:          6000,
		FeeRate:         1,
		RecipientScript: recipientScript,
		ChangeScript:    changeScript,
	})
	require.NoError(t, err)

	assert.Equal(t, []uint64{5000, 3000}, values(res.Inputs))
	require.Len(t, res.Outputs, 2)
	assert.Equal(t, uint64(6000), res.Outputs[0].Value)
	assert.Equal(t, recipientScript, res.Outputs[0].Script)
	assert.True(t, res.Outputs[1].IsChange)
	assert.Equal(t, uint64(1000), res.Outputs[1].Value)
	assert.Equal(t, uint64(1000), res.Fee)
	assert.Equal(t, 1, res.ChangeIndex)
	assert.Equal(t, uint64(6000), res.Transferred)
	assert.True(t, res.Balanced())
}

func TestSelectForSpend_DustChangeGoesToFee(t *testing.T) {
	s := newTestSelector(t, 500)

	res, err := s.SelectForSpend(SpendRequest{
		Utxos:           witnessUtxos(7000),
		Amount:          6000,
		FeeRate:         1,
		RecipientScript: recipientScript,
		ChangeScript:    changeScript,
	})
	require.NoError(t, err)

	require.Len(t, res.Outputs, 1)
	assert.Equal(t, -1, res.ChangeIndex)
	assert.Equal(t, uint64(1000), res.Fee)
	assert.True(t, res.Balanced())
}

func TestSelectForSpend_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     SpendRequest
		wantErr error
	}{
		{
			name: "shortfall",
			req: SpendRequest{
				Utxos:           witnessUtxos(1000, 2000),
				Amount:          6000,
				FeeRate:         1,
				RecipientScript: recipientScript,
				ChangeScript:    changeScript,
			},
			wantErr: types.ErrInsufficientFunds,
		},
		{
			name: "covers amount but not fee",
			req: SpendRequest{
				Utxos:           witnessUtxos(6200),
				Amount:          6000,
				FeeRate:         1,
				RecipientScript: recipientScript,
				ChangeScript:    changeScript,
			},
			wantErr: types.ErrInsufficientFunds,
		},
		{
			name: "no utxos",
			req: SpendRequest{
				Amount:          6000,
				FeeRate:         1,
				RecipientScript: recipientScript,
				ChangeScript:    changeScript,
			},
			wantErr: types.ErrInsufficientFunds,
		},
		{
			name: "dust amount",
			req: SpendRequest{
				Utxos:           witnessUtxos(5000),
				Amount:          100,
				FeeRate:         1,
				RecipientScript: recipientScript,
				ChangeScript:    changeScript,
			},
			wantErr: types.ErrInvalidIntent,
		},
		{
			name: "zero fee rate",
			req: SpendRequest{
				Utxos:           witnessUtxos(5000),
				Amount:          1000,
				RecipientScript: recipientScript,
				ChangeScript:    changeScript,
			},
			wantErr: types.ErrInvalidIntent,
		},
		{
			name: "missing change script",
			req: SpendRequest{
				Utxos:           witnessUtxos(5000),
				Amount:          1000,
				FeeRate:         1,
				RecipientScript: recipientScript,
			},
			wantErr: types.ErrInvalidIntent,
		},
	}

	s := newTestSelector(t, 500)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.SelectForSpend(tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)
		})
	}
}

func TestSelectForSpend_AlwaysBalances(t *testing.T) {
	s := newTestSelector(t, 140)
	utxos := witnessUtxos(900, 12000, 4500, 700, 30000, 2600)

	for amount := uint64(600); amount < 50000; amount += 733 {
		res, err := s.SelectForSpend(SpendRequest{
			Utxos:           utxos,
			Amount:          amount,
			FeeRate:         3,
			RecipientScript: recipientScript,
			ChangeScript:    changeScript,
		})
		if err != nil {
			require.ErrorIs(t, err, types.ErrInsufficientFunds, "amount %d", amount)
			continue
		}
		require.True(t, res.Balanced(), "amount %d", amount)
		require.Equal(t, amount, res.Transferred)
		if res.ChangeIndex >= 0 {
			require.GreaterOrEqual(t, res.Outputs[res.ChangeIndex].Value, uint64(546))
		}
	}
}

func TestSelectForSpendAll(t *testing.T) {
	s := newTestSelector(t, 150)

	t.Run("sweeps everything", func(t *testing.T) {
		res, err := s.SelectForSpendAll(SpendRequest{
			Utxos:           witnessUtxos(1000, 1000),
			FeeRate:         1,
			RecipientScript: recipientScript,
		})
		require.NoError(t, err)

		assert.Len(t, res.Inputs, 2)
		require.Len(t, res.Outputs, 1)
		assert.Equal(t, uint64(1700), res.Outputs[0].Value)
		assert.Equal(t, uint64(300), res.Fee)
		assert.Equal(t, uint64(1700), res.Transferred)
		assert.Equal(t, -1, res.ChangeIndex)
		assert.True(t, res.Balanced())
	})

	t.Run("fee eats the balance", func(t *testing.T) {
		_, err := s.SelectForSpendAll(SpendRequest{
			Utxos:           witnessUtxos(400, 400),
			FeeRate:         1,
			RecipientScript: recipientScript,
		})
		require.ErrorIs(t, err, types.ErrInsufficientFunds)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := s.SelectForSpendAll(SpendRequest{
			FeeRate:         1,
			RecipientScript: recipientScript,
		})
		require.ErrorIs(t, err, types.ErrInsufficientFunds)
	})
}

func TestLargestFirst_Deterministic(t *testing.T) {
	utxos := []Utxo{
		{TxID: "bb", Vout: 0, Value: 10},
		{TxID: "aa", Vout: 1, Value: 10},
		{TxID: "aa", Vout: 0, Value: 10},
		{TxID: "cc", Vout: 0, Value: 20},
	}
	sorted := largestFirst(utxos)

	var got []string
	for _, u := range sorted {
		got = append(got, u.Outpoint())
	}
	assert.Equal(t, []string{"cc:0", "aa:0", "aa:1", "bb:0"}, got)
	assert.Equal(t, "bb", utxos[0].TxID, "input slice must not be reordered")
}

func TestTxSizeEstimator(t *testing.T) {
	p2pkh := append(append([]byte{0x76, 0xa9, 0x14}, bytes.Repeat([]byte{0x33}, 20)...), 0x88, 0xac)
	out := []*wire.TxOut{wire.NewTxOut(1000, recipientScript)}

	witness := TxSizeEstimator{}.VSize(witnessUtxos(1000), out)
	legacy := TxSizeEstimator{}.VSize([]Utxo{{Script: p2pkh}}, out)

	assert.Greater(t, witness, 0)
	assert.Greater(t, legacy, witness)
	assert.True(t, IsWitnessScript(recipientScript))
	assert.False(t, IsWitnessScript(p2pkh))
}

// outputAwareEstimator sizes a transaction by its input and output counts.
type outputAwareEstimator struct {
	base, perInput, perOutput int
}

func (e outputAwareEstimator) VSize(inputs []Utxo, outputs []*wire.TxOut) int {
	return e.base + e.perInput*len(inputs) + e.perOutput*len(outputs)
}

func TestSelectForSpend_ChangeOutputRaisesFee(t *testing.T) {
	params, err := ParamsFor(types.BitcoinMainnet)
	require.NoError(t, err)
	s := NewCoinSelector(params, outputAwareEstimator{base: 10, perInput: 100, perOutput: 50})

	res, err := s.SelectForSpend(SpendRequest{
		Utxos:           witnessUtxos(10000, 10000, 10000),
		Amount:          15000,
		FeeRate:         1,
		RecipientScript: recipientScript,
		ChangeScript:    changeScript,
	})
	require.NoError(t, err)

	require.Len(t, res.Inputs, 2)
	require.Equal(t, 1, res.ChangeIndex)
	// 10 + 2*100 + 2*50, against 260 without the change output.
	assert.Equal(t, uint64(310), res.Fee)
	assert.Equal(t, 310, res.VSize)
	assert.Equal(t, uint64(20000-15000-310), res.Outputs[1].Value)
	assert.True(t, res.Balanced())

	noChange, _ := s.fee(1, res.Inputs, res.Outputs[0])
	assert.Greater(t, res.Fee, noChange)
}

func TestSelectForSpend_FeeGrowsWithInputs(t *testing.T) {
	params, err := ParamsFor(types.BitcoinMainnet)
	require.NoError(t, err)
	s := NewCoinSelector(params, TxSizeEstimator{})
	utxos := witnessUtxos(50000, 40000, 30000, 20000, 10000)

	var prev uint64
	for i, amount := range []uint64{30000, 60000, 100000, 130000, 145000} {
		res, err := s.SelectForSpend(SpendRequest{
			Utxos:           utxos,
			Amount:          amount,
			FeeRate:         2,
			RecipientScript: recipientScript,
			ChangeScript:    changeScript,
		})
		require.NoError(t, err)
		require.Len(t, res.Inputs, i+1)
		require.Equal(t, 1, res.ChangeIndex)
		assert.True(t, res.Balanced())

		noChange, _ := s.fee(2, res.Inputs, res.Outputs[0])
		assert.Greater(t, res.Fee, noChange, "change output adds to the fee")
		assert.GreaterOrEqual(t, res.Fee, prev, "fee with %d inputs", i+1)
		prev = res.Fee
	}

	t.Run("each added input", func(t *testing.T) {
		sorted := largestFirst(utxos)
		recipient := Output{Script: recipientScript, Value: 1000}
		change := Output{Script: changeScript, Value: 1000, IsChange: true}
		var last uint64
		for n := 1; n <= len(sorted); n++ {
			fee, _ := s.fee(2, sorted[:n], recipient, change)
			assert.Greater(t, fee, last)
			last = fee
		}
	})
}
