package types

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// junctionJSON is the registry form of a Junction, with keys in hex.
type junctionJSON struct {
	Kind           JunctionKind  `json:"kind"`
	ParaID         uint32        `json:"paraId,omitempty"`
	Network        *NetworkID    `json:"network,omitempty"`
	AccountID      hexutil.Bytes `json:"accountId,omitempty"`
	Key            hexutil.Bytes `json:"key,omitempty"`
	PalletInstance uint8         `json:"palletInstance,omitempty"`
	GeneralIndex   *big.Int      `json:"generalIndex,omitempty"`
	Global         *NetworkID    `json:"global,omitempty"`
}

func (j Junction) MarshalJSON() ([]byte, error) {
	out := junctionJSON{
		Kind:           j.Kind,
		ParaID:         j.ParaID,
		Network:        j.Network,
		PalletInstance: j.PalletInstance,
		GeneralIndex:   j.GeneralIndex,
	}
	switch j.Kind {
	case JunctionAccountID32:
		out.AccountID = j.AccountID[:]
	case JunctionAccountKey20:
		out.Key = j.Key[:]
	case JunctionGlobalConsensus:
		global := j.Global
		out.Global = &global
	}
	return json.Marshal(out)
}

func (j *Junction) UnmarshalJSON(data []byte) error {
	var in junctionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*j = Junction{
		Kind:           in.Kind,
		ParaID:         in.ParaID,
		Network:        in.Network,
		PalletInstance: in.PalletInstance,
		GeneralIndex:   in.GeneralIndex,
	}
	switch in.Kind {
	case JunctionParachain, JunctionPalletInstance:
	case JunctionGeneralIndex:
		if in.GeneralIndex == nil {
			return fmt.Errorf("GeneralIndex junction without index")
		}
	case JunctionAccountID32:
		if len(in.AccountID) != len(j.AccountID) {
			return fmt.Errorf("accountId must be %d bytes, got %d", len(j.AccountID), len(in.AccountID))
		}
		copy(j.AccountID[:], in.AccountID)
	case JunctionAccountKey20:
		if len(in.Key) != len(j.Key) {
			return fmt.Errorf("key must be %d bytes, got %d", len(j.Key), len(in.Key))
		}
		copy(j.Key[:], in.Key)
	case JunctionGlobalConsensus:
		if in.Global == nil {
			return fmt.Errorf("GlobalConsensus junction without network")
		}
		j.Global = *in.Global
	default:
		return fmt.Errorf("unknown junction kind %q", in.Kind)
	}
	return nil
}
