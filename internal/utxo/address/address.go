// Package address decodes the addresses of the supported UTXO networks into
// output scripts.
package address

import (
	"fmt"

	"github.com/vultisig/xtransfer/internal/types"
)

// Address is a decoded address and the script that pays it.
type Address struct {
	Network types.BitcoinNetwork
	Encoded string
	// Hash is the pubkey or script hash the address commits to.
	Hash   []byte
	Script []byte
}

func (a Address) String() string {
	return a.Encoded
}

// Decode parses s as an address of network.
func Decode(network types.BitcoinNetwork, s string) (Address, error) {
	c, err := codecFor(network)
	if err != nil {
		return Address{}, err
	}
	addr, err := c.decode(s)
	if err != nil {
		return Address{}, err
	}
	return c.finish(network, addr)
}

func codecFor(network types.BitcoinNetwork) (codec, error) {
	c, ok := codecs[network]
	if !ok {
		return codec{}, fmt.Errorf("unsupported UTXO network: %s", network)
	}
	return c, nil
}

func errWrongNetwork(addr, network string) error {
	return fmt.Errorf("address %s is not valid on %s", addr, network)
}
