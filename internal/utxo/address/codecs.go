package address

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	bchchaincfg "github.com/gcash/bchd/chaincfg"
	bchtxscript "github.com/gcash/bchd/txscript"
	"github.com/gcash/bchutil"
	ltcchaincfg "github.com/ltcsuite/ltcd/chaincfg"
	"github.com/ltcsuite/ltcd/ltcutil"
	ltctxscript "github.com/ltcsuite/ltcd/txscript"

	"github.com/vultisig/xtransfer/internal/types"
)

// libAddress is the method set btcutil, ltcutil and bchutil addresses share.
type libAddress interface {
	String() string
	ScriptAddress() []byte
}

// codec adapts one address library.
type codec struct {
	decode func(string) (libAddress, error)
	script func(libAddress) ([]byte, error)
}

func (c codec) finish(network types.BitcoinNetwork, addr libAddress) (Address, error) {
	script, err := c.script(addr)
	if err != nil {
		return Address{}, err
	}
	return Address{
		Network: network,
		Encoded: addr.String(),
		Hash:    addr.ScriptAddress(),
		Script:  script,
	}, nil
}

// dogeMainNetParams carries only what base58 encoding needs.
var dogeMainNetParams = chaincfg.Params{
	Name:             "dogecoin",
	Net:              0xc0c0c0c0,
	PubKeyHashAddrID: 0x1E, // D prefix
	ScriptHashAddrID: 0x16, // 9 or A prefix
}

var codecs = map[types.BitcoinNetwork]codec{
	types.BitcoinMainnet: btcCodec(&chaincfg.MainNetParams),
	types.BitcoinTestnet: btcCodec(&chaincfg.TestNet3Params),
	types.Dogecoin:       btcCodec(&dogeMainNetParams),
	types.Litecoin:       ltcCodec(&ltcchaincfg.MainNetParams),
	types.BitcoinCash:    bchCodec(&bchchaincfg.MainNetParams),
}

func wrap[T libAddress](addr T, err error) (libAddress, error) {
	if err != nil {
		return nil, err
	}
	return addr, nil
}

func btcCodec(params *chaincfg.Params) codec {
	return codec{
		decode: func(s string) (libAddress, error) {
			addr, err := btcutil.DecodeAddress(s, params)
			if err != nil {
				return nil, err
			}
			if !addr.IsForNet(params) {
				return nil, errWrongNetwork(s, params.Name)
			}
			return addr, nil
		},
		script: func(a libAddress) ([]byte, error) {
			return txscript.PayToAddrScript(a.(btcutil.Address))
		},
	}
}

func ltcCodec(params *ltcchaincfg.Params) codec {
	return codec{
		decode: func(s string) (libAddress, error) {
			addr, err := ltcutil.DecodeAddress(s, params)
			if err != nil {
				return nil, err
			}
			if !addr.IsForNet(params) {
				return nil, errWrongNetwork(s, "litecoin")
			}
			return addr, nil
		},
		script: func(a libAddress) ([]byte, error) {
			return ltctxscript.PayToAddrScript(a.(ltcutil.Address))
		},
	}
}

// bchCodec accepts cashaddr and legacy encodings.
func bchCodec(params *bchchaincfg.Params) codec {
	return codec{
		decode: func(s string) (libAddress, error) {
			return wrap(bchutil.DecodeAddress(s, params))
		},
		script: func(a libAddress) ([]byte, error) {
			return bchtxscript.PayToAddrScript(a.(bchutil.Address))
		},
	}
}
