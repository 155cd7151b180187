package utxo

import (
	"errors"

	"github.com/vultisig/xtransfer/internal/types"
)

const (
	MessageInsufficientFunds = "Insufficient funds. Reduce the amount and try again."
	MessageUnavailable       = "Unable to load your coins right now. Please try again."
	MessageGeneric           = "Unable to build the transaction."
)

// UserMessage renders a construction error for display. A balance shortfall
// asks the user to lower the amount and a failed lookup of the previous
// transactions asks them to retry.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, types.ErrInsufficientFunds):
		return MessageInsufficientFunds
	case errors.Is(err, types.ErrRPCFailure):
		return MessageUnavailable
	default:
		return MessageGeneric
	}
}

// Retryable reports whether err may succeed on a later attempt.
func Retryable(err error) bool {
	return errors.Is(err, types.ErrRPCFailure)
}
