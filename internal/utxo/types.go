package utxo

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

// Utxo is an unspent output owned by the sender.
type Utxo struct {
	TxID    string `json:"txid"`
	Vout    uint32 `json:"vout"`
	Value   uint64 `json:"value"`
	Address string `json:"address"`
	Script  []byte `json:"script"`
	// Witness marks outputs whose spend can commit to a witness UTXO
	// instead of the full previous transaction.
	Witness bool `json:"witness"`
}

func (u Utxo) Outpoint() string {
	return fmt.Sprintf("%s:%d", u.TxID, u.Vout)
}

// Output is a transaction output of a selection.
type Output struct {
	Script   []byte `json:"script"`
	Value    uint64 `json:"value"`
	IsChange bool   `json:"isChange"`
}

func (o Output) TxOut() *wire.TxOut {
	return wire.NewTxOut(int64(o.Value), o.Script)
}

// CoinSelectionResult is the outcome of coin selection. Inputs, outputs and
// fee always balance.
type CoinSelectionResult struct {
	Inputs  []Utxo   `json:"inputs"`
	Outputs []Output `json:"outputs"`
	Fee     uint64   `json:"fee"`
	// Transferred is what the recipient receives. In spend-all mode it is
	// the input total less the fee.
	Transferred uint64 `json:"transferred"`
	// ChangeIndex is the position of the change output, or -1.
	ChangeIndex int    `json:"changeIndex"`
	FeeRate     uint64 `json:"feeRate"`
	VSize       int    `json:"vsize"`
}

func (r *CoinSelectionResult) InputTotal() uint64 {
	var total uint64
	for _, in := range r.Inputs {
		total += in.Value
	}
	return total
}

func (r *CoinSelectionResult) OutputTotal() uint64 {
	var total uint64
	for _, out := range r.Outputs {
		total += out.Value
	}
	return total
}

// Balanced reports whether inputs equal outputs plus fee.
func (r *CoinSelectionResult) Balanced() bool {
	return r.InputTotal() == r.OutputTotal()+r.Fee
}

// FeeProvider provides fee rate information for a UTXO chain.
type FeeProvider interface {
	SatsPerByte(ctx context.Context) (uint64, error)
}

// PrevTxFetcher returns the serialized transaction with the given hash.
type PrevTxFetcher interface {
	GetRawTransaction(ctx context.Context, txHash string) ([]byte, error)
}
