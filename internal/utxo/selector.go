package utxo

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/btcsuite/btcd/wire"

	"github.com/vultisig/xtransfer/internal/types"
)

// SpendRequest is the input to coin selection. FeeRate is in sat/vB.
type SpendRequest struct {
	Utxos           []Utxo
	Amount          uint64
	FeeRate         uint64
	RecipientScript []byte
	ChangeScript    []byte
}

// CoinSelector picks inputs largest first, which keeps the input count and
// therefore the fee low.
type CoinSelector struct {
	params    ChainParams
	estimator SizeEstimator
}

func NewCoinSelector(params ChainParams, estimator SizeEstimator) *CoinSelector {
	if estimator == nil {
		estimator = TxSizeEstimator{}
	}
	return &CoinSelector{
		params:    params,
		estimator: estimator,
	}
}

func (s *CoinSelector) validate(req SpendRequest, needChange bool) error {
	if req.FeeRate == 0 {
		return fmt.Errorf("%w: fee rate must be positive", types.ErrInvalidIntent)
	}
	if len(req.RecipientScript) == 0 {
		return fmt.Errorf("%w: missing recipient script", types.ErrInvalidIntent)
	}
	if needChange && len(req.ChangeScript) == 0 {
		return fmt.Errorf("%w: missing change script", types.ErrInvalidIntent)
	}
	return nil
}

func (s *CoinSelector) fee(rate uint64, inputs []Utxo, outputs ...Output) (uint64, int) {
	txOuts := make([]*wire.TxOut, len(outputs))
	for i, o := range outputs {
		txOuts[i] = o.TxOut()
	}
	vsize := s.estimator.VSize(inputs, txOuts)
	return rate * uint64(vsize), vsize
}

// SelectForSpend selects inputs covering req.Amount plus fee. Change below
// the dust limit is left to the fee rather than emitted.
func (s *CoinSelector) SelectForSpend(req SpendRequest) (*CoinSelectionResult, error) {
	if err := s.validate(req, true); err != nil {
		return nil, err
	}
	if req.Amount < s.params.DustLimit {
		return nil, fmt.Errorf("%w: amount %d is below the dust limit %d", types.ErrInvalidIntent, req.Amount, s.params.DustLimit)
	}

	recipient := Output{Script: req.RecipientScript, Value: req.Amount}
	change := Output{Script: req.ChangeScript, IsChange: true}

	var (
		selected []Utxo
		total    uint64
		required = req.Amount
	)
	for _, u := range largestFirst(req.Utxos) {
		selected = append(selected, u)
		total += u.Value

		feeNoChange, vsizeNoChange := s.fee(req.FeeRate, selected, recipient)
		required = req.Amount + feeNoChange
		if total < required {
			continue
		}

		feeWithChange, vsizeWithChange := s.fee(req.FeeRate, selected, recipient, change)
		if total >= req.Amount+feeWithChange {
			if left := total - req.Amount - feeWithChange; left >= s.params.DustLimit {
				change.Value = left
				return &CoinSelectionResult{
					Inputs:      selected,
					Outputs:     []Output{recipient, change},
					Fee:         feeWithChange,
					Transferred: req.Amount,
					ChangeIndex: 1,
					FeeRate:     req.FeeRate,
					VSize:       vsizeWithChange,
				}, nil
			}
		}

		return &CoinSelectionResult{
			Inputs:      selected,
			Outputs:     []Output{recipient},
			Fee:         total - req.Amount,
			Transferred: req.Amount,
			ChangeIndex: -1,
			FeeRate:     req.FeeRate,
			VSize:       vsizeNoChange,
		}, nil
	}

	return nil, fmt.Errorf("%w: need %d, have %d", types.ErrInsufficientFunds, required, total)
}

// SelectForSpendAll spends every UTXO to the recipient, who receives the
// total less the fee.
func (s *CoinSelector) SelectForSpendAll(req SpendRequest) (*CoinSelectionResult, error) {
	if err := s.validate(req, false); err != nil {
		return nil, err
	}
	if len(req.Utxos) == 0 {
		return nil, fmt.Errorf("%w: no spendable outputs", types.ErrInsufficientFunds)
	}

	inputs := largestFirst(req.Utxos)
	var total uint64
	for _, u := range inputs {
		total += u.Value
	}

	fee, vsize := s.fee(req.FeeRate, inputs, Output{Script: req.RecipientScript})
	if total <= fee || total-fee < s.params.DustLimit {
		return nil, fmt.Errorf("%w: balance %d does not cover fee %d plus dust %d",
			types.ErrInsufficientFunds, total, fee, s.params.DustLimit)
	}

	return &CoinSelectionResult{
		Inputs:      inputs,
		Outputs:     []Output{{Script: req.RecipientScript, Value: total - fee}},
		Fee:         fee,
		Transferred: total - fee,
		ChangeIndex: -1,
		FeeRate:     req.FeeRate,
		VSize:       vsize,
	}, nil
}

// largestFirst returns a copy of utxos ordered by value, descending. Ties
// are broken by outpoint so the order is deterministic.
func largestFirst(utxos []Utxo) []Utxo {
	sorted := slices.Clone(utxos)
	slices.SortFunc(sorted, func(a, b Utxo) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		if c := strings.Compare(a.TxID, b.TxID); c != 0 {
			return c
		}
		return cmp.Compare(a.Vout, b.Vout)
	})
	return sorted
}
