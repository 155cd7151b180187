package utxo

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
)

// SizeEstimator predicts the virtual size of a signed transaction.
type SizeEstimator interface {
	VSize(inputs []Utxo, outputs []*wire.TxOut) int
}

// TxSizeEstimator estimates from the input script types.
type TxSizeEstimator struct{}

func (TxSizeEstimator) VSize(inputs []Utxo, outputs []*wire.TxOut) int {
	var p2pkh, p2tr, p2wpkh, nested int
	for _, in := range inputs {
		switch txscript.GetScriptClass(in.Script) {
		case txscript.WitnessV0PubKeyHashTy:
			p2wpkh++
		case txscript.WitnessV1TaprootTy:
			p2tr++
		case txscript.ScriptHashTy:
			nested++
		default:
			// Legacy inputs carry the largest signature script, so unknown
			// scripts are sized as P2PKH.
			p2pkh++
		}
	}
	return txsizes.EstimateVirtualSize(p2pkh, p2tr, p2wpkh, nested, outputs, 0)
}

// IsWitnessScript reports whether script is a native witness program.
func IsWitnessScript(script []byte) bool {
	return txscript.IsWitnessProgram(script)
}
