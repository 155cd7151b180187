package xcm

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vedhavyas/go-subkey/v2"

	"github.com/vultisig/xtransfer/internal/types"
)

// accountJunction encodes recipient in the account format of chain.
func accountJunction(chain types.ChainInfo, recipient string) (types.Junction, error) {
	if chain.UsesAccountKey20() {
		if !common.IsHexAddress(recipient) {
			return types.Junction{}, fmt.Errorf("%w: %q is not a 20-byte address for %s",
				types.ErrEncodingMismatch, recipient, chain.Slug)
		}
		return types.AccountKey20(common.HexToAddress(recipient)), nil
	}

	id, err := decodeAccountID32(recipient)
	if err != nil {
		return types.Junction{}, fmt.Errorf("%w: recipient for %s: %v", types.ErrEncodingMismatch, chain.Slug, err)
	}
	return types.AccountID32(id), nil
}

// decodeAccountID32 accepts an SS58 address or a 0x-prefixed 32-byte key.
func decodeAccountID32(s string) ([32]byte, error) {
	var id [32]byte
	if strings.HasPrefix(s, "0x") {
		raw, err := hexutil.Decode(s)
		if err != nil {
			return id, err
		}
		if len(raw) != 32 {
			return id, fmt.Errorf("account key is %d bytes, want 32", len(raw))
		}
		copy(id[:], raw)
		return id, nil
	}

	_, pub, err := subkey.SS58Decode(s)
	if err != nil {
		return id, fmt.Errorf("ss58 decode: %w", err)
	}
	if len(pub) != 32 {
		return id, fmt.Errorf("ss58 payload is %d bytes, want 32", len(pub))
	}
	copy(id[:], pub)
	return id, nil
}
