package utxo

import (
	"bytes"
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	bchtxscript "github.com/gcash/bchd/txscript"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/xtransfer/internal/types"
)

// Artifact is an unsigned PSBT plus what the caller needs to present and
// track it.
type Artifact struct {
	Packet      *psbt.Packet
	TxID        string
	Inputs      []Utxo
	Fee         uint64
	Transferred uint64
	ChangeIndex int
	ChangeValue uint64
}

func (a *Artifact) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Packet.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize psbt: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *Artifact) Base64() (string, error) {
	return a.Packet.B64Encode()
}

// Change returns the change output as a spendable UTXO. The unsigned tx id
// is only final when every input is a witness input, so nil is returned
// otherwise.
func (a *Artifact) Change() *Utxo {
	if a.ChangeIndex < 0 {
		return nil
	}
	for _, in := range a.Inputs {
		if !in.Witness {
			return nil
		}
	}
	out := a.Packet.UnsignedTx.TxOut[a.ChangeIndex]
	return &Utxo{
		TxID:    a.TxID,
		Vout:    uint32(a.ChangeIndex),
		Value:   uint64(out.Value),
		Script:  out.PkScript,
		Witness: IsWitnessScript(out.PkScript),
	}
}

// Assembler turns a coin selection into an unsigned PSBT.
type Assembler struct {
	params ChainParams
	prevTx PrevTxFetcher
	logger logrus.FieldLogger
}

func NewAssembler(params ChainParams, prevTx PrevTxFetcher, logger logrus.FieldLogger) *Assembler {
	return &Assembler{
		params: params,
		prevTx: prevTx,
		logger: logger,
	}
}

func (a *Assembler) sighash() txscript.SigHashType {
	if a.params.ForkID {
		return txscript.SigHashType(bchtxscript.SigHashAll | bchtxscript.SigHashForkID)
	}
	return txscript.SigHashAll
}

// Assemble builds the PSBT for sel. Witness inputs carry their previous
// output; legacy inputs carry the full previous transaction, fetched and
// checked against the selection. Transferred is the total paid to
// recipientScript.
func (a *Assembler) Assemble(ctx context.Context, sel *CoinSelectionResult, recipientScript []byte) (*Artifact, error) {
	if sel == nil || len(sel.Inputs) == 0 {
		return nil, fmt.Errorf("%w: empty selection", types.ErrInvalidIntent)
	}
	if !sel.Balanced() {
		return nil, fmt.Errorf("%w: inputs %d do not equal outputs %d plus fee %d",
			types.ErrInvalidIntent, sel.InputTotal(), sel.OutputTotal(), sel.Fee)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	for _, in := range sel.Inputs {
		hash, err := chainhash.NewHashFromStr(in.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad txid %q: %v", types.ErrInvalidIntent, in.TxID, err)
		}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, in.Vout), nil, nil))
	}
	var transferred uint64
	for _, out := range sel.Outputs {
		tx.AddTxOut(out.TxOut())
		if !out.IsChange && bytes.Equal(out.Script, recipientScript) {
			transferred += out.Value
		}
	}
	if transferred == 0 {
		return nil, fmt.Errorf("%w: no output pays the recipient", types.ErrInvalidIntent)
	}

	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to create psbt: %w", err)
	}

	for i, in := range sel.Inputs {
		if err := a.decorateInput(ctx, &packet.Inputs[i], in); err != nil {
			return nil, err
		}
	}
	if err := packet.SanityCheck(); err != nil {
		return nil, fmt.Errorf("%w: psbt sanity check: %v", types.ErrEncodingMismatch, err)
	}

	artifact := &Artifact{
		Packet:      packet,
		TxID:        tx.TxHash().String(),
		Inputs:      sel.Inputs,
		Fee:         sel.Fee,
		Transferred: transferred,
		ChangeIndex: sel.ChangeIndex,
	}
	if sel.ChangeIndex >= 0 {
		artifact.ChangeValue = sel.Outputs[sel.ChangeIndex].Value
	}

	a.logger.WithFields(logrus.Fields{
		"network":     a.params.Network,
		"txid":        artifact.TxID,
		"inputs":      len(sel.Inputs),
		"fee":         sel.Fee,
		"transferred": transferred,
	}).Debug("assembled psbt")

	return artifact, nil
}

func (a *Assembler) decorateInput(ctx context.Context, pInput *psbt.PInput, in Utxo) error {
	pInput.SighashType = a.sighash()

	if in.Witness {
		if len(in.Script) == 0 {
			return fmt.Errorf("%w: witness input %s has no script", types.ErrInvalidIntent, in.Outpoint())
		}
		pInput.WitnessUtxo = wire.NewTxOut(int64(in.Value), in.Script)
		return nil
	}

	raw, err := a.prevTx.GetRawTransaction(ctx, in.TxID)
	if err != nil {
		return fmt.Errorf("%w: fetch previous tx %s: %v", types.ErrRPCFailure, in.TxID, err)
	}
	prev := wire.NewMsgTx(wire.TxVersion)
	if err := prev.Deserialize(bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("%w: decode previous tx %s: %v", types.ErrRPCFailure, in.TxID, err)
	}
	if got := prev.TxHash().String(); got != in.TxID {
		return fmt.Errorf("%w: previous tx hash %s, want %s", types.ErrRPCFailure, got, in.TxID)
	}
	if int(in.Vout) >= len(prev.TxOut) {
		return fmt.Errorf("%w: previous tx %s has no output %d", types.ErrRPCFailure, in.TxID, in.Vout)
	}
	if out := prev.TxOut[in.Vout]; uint64(out.Value) != in.Value {
		return fmt.Errorf("%w: output %s is worth %d, selection says %d", types.ErrRPCFailure, in.Outpoint(), out.Value, in.Value)
	}

	pInput.NonWitnessUtxo = prev
	return nil
}
