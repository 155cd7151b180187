package types

import (
	"fmt"
	"math/big"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TransferIntent is a single transfer request. It is created per request
// and never persisted.
type TransferIntent struct {
	Asset            string `json:"asset" validate:"required"`
	OriginChain      string `json:"originChain" validate:"required"`
	DestinationChain string `json:"destinationChain" validate:"required"`
	Sender           string `json:"sender" validate:"required"`
	Recipient        string `json:"recipient" validate:"required"`
	// Amount is a decimal string in the asset's smallest unit.
	Amount string `json:"amount" validate:"required,numeric"`
}

// Validate checks the struct tags and that Amount is a positive integer.
func (t TransferIntent) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidIntent, err)
	}
	if _, err := t.AmountInt(); err != nil {
		return err
	}
	return nil
}

// AmountInt parses Amount as a positive integer.
func (t TransferIntent) AmountInt() (*big.Int, error) {
	amount, ok := new(big.Int).SetString(t.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("%w: amount %q is not an integer", ErrInvalidIntent, t.Amount)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidIntent, t.Amount)
	}
	return amount, nil
}

// ValidateChainAsset checks the struct tags of an asset.
func ValidateChainAsset(a ChainAsset) error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("%w: asset %s: %v", ErrInvalidIntent, a.Slug, err)
	}
	return nil
}

// ValidateChainInfo checks the struct tags of a chain.
func ValidateChainInfo(c ChainInfo) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: chain %s: %v", ErrInvalidIntent, c.Slug, err)
	}
	return nil
}
