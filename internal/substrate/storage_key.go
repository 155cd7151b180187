package substrate

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/xxhash"
)

func twox128(data []byte) []byte {
	return xxhash.New128(data).Sum(nil)
}

// twox64Concat hashes with the first xxhash64 lane and appends the key.
func twox64Concat(key []byte) []byte {
	out := twox128(key)[:8]
	return append(out, key...)
}

// mapKey builds the storage key of a Twox64Concat map entry.
func mapKey(pallet, item string, key []byte) []byte {
	out := twox128([]byte(pallet))
	out = append(out, twox128([]byte(item))...)
	return append(out, twox64Concat(key)...)
}
