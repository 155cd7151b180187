package xcm

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vultisig/xtransfer/internal/types"
)

// Arg is one SCALE-encoded extrinsic argument.
type Arg struct {
	Name  string        `json:"name"`
	Value hexutil.Bytes `json:"value"`
}

// CallDescriptor is an unsigned transfer call ready for the signer. Substrate
// calls carry Args in declaration order; EVM calls carry To and Calldata.
type CallDescriptor struct {
	RequestID string            `json:"requestId"`
	Chain     string            `json:"chain"`
	Protocol  Protocol          `json:"protocol"`
	Pallet    string            `json:"pallet"`
	Method    string            `json:"method"`
	Version   types.XcmVersion  `json:"version"`
	Args      []Arg             `json:"args,omitempty"`
	Calls     []*CallDescriptor `json:"calls,omitempty"`

	To       string        `json:"to,omitempty"`
	Calldata hexutil.Bytes `json:"calldata,omitempty"`
}

// Arg returns the encoded argument called name.
func (c *CallDescriptor) Arg(name string) ([]byte, bool) {
	for _, a := range c.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// IsEVM reports whether the call targets a contract rather than a pallet.
func (c *CallDescriptor) IsEVM() bool {
	return c.To != ""
}
