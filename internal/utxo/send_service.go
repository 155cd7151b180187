package utxo

import (
	"fmt"

	"github.com/vultisig/xtransfer/internal/types"
	"github.com/vultisig/xtransfer/internal/utxo/address"
)

// SendService resolves the scripts of a transfer.
type SendService struct {
	network types.BitcoinNetwork
}

func NewSendService(network types.BitcoinNetwork) *SendService {
	return &SendService{network: network}
}

// BuildTransfer returns the recipient and change scripts for a send from
// fromAddress to toAddress.
func (s *SendService) BuildTransfer(toAddress, fromAddress string) (recipient, change []byte, err error) {
	to, err := address.Decode(s.network, toAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: recipient address: %v", types.ErrInvalidIntent, err)
	}
	from, err := address.Decode(s.network, fromAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: sender address: %v", types.ErrInvalidIntent, err)
	}
	return to.Script, from.Script, nil
}
