package xcm

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/vultisig/xtransfer/internal/types"
)

// Opcode is the instruction discriminant, shared by v2, v3 and v4 for the
// instructions emitted here.
type Opcode byte

const (
	OpWithdrawAsset          Opcode = 0
	OpReserveAssetDeposited  Opcode = 1
	OpReceiveTeleportedAsset Opcode = 2
	OpClearOrigin            Opcode = 10
	OpDepositAsset           Opcode = 13
	OpBuyExecution           Opcode = 19
)

func (o Opcode) String() string {
	switch o {
	case OpWithdrawAsset:
		return "WithdrawAsset"
	case OpReserveAssetDeposited:
		return "ReserveAssetDeposited"
	case OpReceiveTeleportedAsset:
		return "ReceiveTeleportedAsset"
	case OpClearOrigin:
		return "ClearOrigin"
	case OpDepositAsset:
		return "DepositAsset"
	case OpBuyExecution:
		return "BuyExecution"
	default:
		return fmt.Sprintf("Opcode(%d)", byte(o))
	}
}

// Instruction is one step of an XCM program.
type Instruction interface {
	Opcode() Opcode
	encode(enc scale.Encoder, v types.XcmVersion) error
}

type WithdrawAsset struct{ Assets []Asset }

type ReserveAssetDeposited struct{ Assets []Asset }

type ReceiveTeleportedAsset struct{ Assets []Asset }

type ClearOrigin struct{}

type BuyExecution struct {
	Fees        Asset
	WeightLimit WeightLimit
}

// DepositAsset deposits up to MaxAssets held assets into Beneficiary.
type DepositAsset struct {
	MaxAssets   uint32
	Beneficiary types.MultiLocation
}

func (WithdrawAsset) Opcode() Opcode          { return OpWithdrawAsset }
func (ReserveAssetDeposited) Opcode() Opcode  { return OpReserveAssetDeposited }
func (ReceiveTeleportedAsset) Opcode() Opcode { return OpReceiveTeleportedAsset }
func (ClearOrigin) Opcode() Opcode            { return OpClearOrigin }
func (BuyExecution) Opcode() Opcode           { return OpBuyExecution }
func (DepositAsset) Opcode() Opcode           { return OpDepositAsset }

func (i WithdrawAsset) encode(enc scale.Encoder, v types.XcmVersion) error {
	return encodeAssets(enc, i.Assets, v)
}

func (i ReserveAssetDeposited) encode(enc scale.Encoder, v types.XcmVersion) error {
	return encodeAssets(enc, i.Assets, v)
}

func (i ReceiveTeleportedAsset) encode(enc scale.Encoder, v types.XcmVersion) error {
	return encodeAssets(enc, i.Assets, v)
}

func (ClearOrigin) encode(scale.Encoder, types.XcmVersion) error { return nil }

func (i BuyExecution) encode(enc scale.Encoder, v types.XcmVersion) error {
	if err := encodeAsset(enc, i.Fees, v); err != nil {
		return err
	}
	return encodeWeightLimit(enc, i.WeightLimit, v)
}

func (i DepositAsset) encode(enc scale.Encoder, v types.XcmVersion) error {
	// Wild(All) followed by max_assets in v2, Wild(AllCounted(max_assets))
	// from v3 on. Both come out as [1, wild, compact(max)].
	wild := byte(2)
	if v == types.XcmV2 {
		wild = 0
	}
	if err := enc.PushByte(1); err != nil {
		return err
	}
	if err := enc.PushByte(wild); err != nil {
		return err
	}
	if err := encodeCompactUint(enc, uint64(i.MaxAssets)); err != nil {
		return err
	}
	return encodeLocation(enc, i.Beneficiary, v)
}

// Message is a versioned XCM program.
type Message struct {
	Version      types.XcmVersion
	Instructions []Instruction
}

// Opcodes lists the instruction opcodes in program order.
func (m Message) Opcodes() []Opcode {
	ops := make([]Opcode, len(m.Instructions))
	for i, ins := range m.Instructions {
		ops[i] = ins.Opcode()
	}
	return ops
}

// Validate enforces the canonical transfer program shape
// [Withdraw|ReserveDeposited|ReceiveTeleported, ClearOrigin, BuyExecution, DepositAsset].
// Delivery fee queries price the program as-is, so any other order yields a
// different fee.
func (m Message) Validate() error {
	ops := m.Opcodes()
	if len(ops) != 4 {
		return fmt.Errorf("%w: transfer program has %d instructions, want 4", types.ErrEncodingMismatch, len(ops))
	}
	switch ops[0] {
	case OpWithdrawAsset, OpReserveAssetDeposited, OpReceiveTeleportedAsset:
	default:
		return fmt.Errorf("%w: program starts with %s", types.ErrEncodingMismatch, ops[0])
	}
	want := []Opcode{OpClearOrigin, OpBuyExecution, OpDepositAsset}
	for i, op := range want {
		if ops[i+1] != op {
			return fmt.Errorf("%w: instruction %d is %s, want %s", types.ErrEncodingMismatch, i+1, ops[i+1], op)
		}
	}
	return nil
}

// Encode writes the message as a VersionedXcm.
func (m Message) Encode(enc scale.Encoder) error {
	if err := checkVersion(m.Version); err != nil {
		return err
	}
	if err := enc.PushByte(versionedXcmIndex[m.Version]); err != nil {
		return err
	}
	if err := encodeCompactUint(enc, uint64(len(m.Instructions))); err != nil {
		return err
	}
	for _, ins := range m.Instructions {
		if err := enc.PushByte(byte(ins.Opcode())); err != nil {
			return err
		}
		if err := ins.encode(enc, m.Version); err != nil {
			return fmt.Errorf("encode %s: %w", ins.Opcode(), err)
		}
	}
	return nil
}

// Bytes returns the SCALE encoding of the message.
func (m Message) Bytes() ([]byte, error) {
	return encodeWith(m.Encode)
}
