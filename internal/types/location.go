package types

import "math/big"

type JunctionKind string

const (
	JunctionParachain       JunctionKind = "Parachain"
	JunctionAccountID32     JunctionKind = "AccountId32"
	JunctionAccountKey20    JunctionKind = "AccountKey20"
	JunctionPalletInstance  JunctionKind = "PalletInstance"
	JunctionGeneralIndex    JunctionKind = "GeneralIndex"
	JunctionGlobalConsensus JunctionKind = "GlobalConsensus"
)

// NetworkID identifies a consensus system inside a junction. ChainID is only
// meaningful for NetworkEthereum.
type NetworkID struct {
	Kind    NetworkKind `json:"kind"`
	ChainID uint64      `json:"chainId,omitempty"`
}

// Junction is one step of a MultiLocation path. Only the fields relevant to
// Kind are read.
type Junction struct {
	Kind           JunctionKind `json:"kind"`
	ParaID         uint32       `json:"paraId,omitempty"`
	Network        *NetworkID   `json:"network,omitempty"`
	AccountID      [32]byte     `json:"accountId,omitempty"`
	Key            [20]byte     `json:"key,omitempty"`
	PalletInstance uint8        `json:"palletInstance,omitempty"`
	GeneralIndex   *big.Int     `json:"generalIndex,omitempty"`
	Global         NetworkID    `json:"global,omitempty"`
}

func Parachain(id uint32) Junction {
	return Junction{Kind: JunctionParachain, ParaID: id}
}

func AccountID32(id [32]byte) Junction {
	return Junction{Kind: JunctionAccountID32, AccountID: id}
}

func AccountKey20(key [20]byte) Junction {
	return Junction{Kind: JunctionAccountKey20, Key: key}
}

func PalletInstance(i uint8) Junction {
	return Junction{Kind: JunctionPalletInstance, PalletInstance: i}
}

func GeneralIndex(i *big.Int) Junction {
	return Junction{Kind: JunctionGeneralIndex, GeneralIndex: i}
}

func GlobalConsensus(n NetworkID) Junction {
	return Junction{Kind: JunctionGlobalConsensus, Global: n}
}

// MultiLocation is a relative path through the cross-consensus topology.
type MultiLocation struct {
	Parents  uint8      `json:"parents"`
	Interior []Junction `json:"interior"`
}

// Here is the location of the chain itself.
func Here() MultiLocation {
	return MultiLocation{}
}

func NewLocation(parents uint8, interior ...Junction) MultiLocation {
	return MultiLocation{Parents: parents, Interior: interior}
}

// Append returns a copy of l with js appended to the interior.
func (l MultiLocation) Append(js ...Junction) MultiLocation {
	interior := make([]Junction, 0, len(l.Interior)+len(js))
	interior = append(interior, l.Interior...)
	interior = append(interior, js...)
	return MultiLocation{Parents: l.Parents, Interior: interior}
}

