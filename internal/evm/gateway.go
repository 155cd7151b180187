package evm

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const gatewayABIJSON = `[{
	"type": "function",
	"name": "sendToken",
	"stateMutability": "payable",
	"inputs": [
		{"name": "token", "type": "address"},
		{"name": "destinationChain", "type": "uint32"},
		{"name": "destinationAddress", "type": "tuple", "components": [
			{"name": "kind", "type": "uint8"},
			{"name": "data", "type": "bytes"}
		]},
		{"name": "destinationFee", "type": "uint128"},
		{"name": "amount", "type": "uint128"}
	],
	"outputs": []
}, {
	"type": "function",
	"name": "quoteSendTokenFee",
	"stateMutability": "view",
	"inputs": [
		{"name": "token", "type": "address"},
		{"name": "destinationChain", "type": "uint32"},
		{"name": "destinationFee", "type": "uint128"}
	],
	"outputs": [{"name": "", "type": "uint256"}]
}]`

var gatewayABI = mustParseABI(gatewayABIJSON)

func mustParseABI(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("invalid abi: %v", err))
	}
	return a
}

// MultiAddress kinds understood by the gateway.
const (
	AddressKindIndex     uint8 = 0
	AddressKindAddress32 uint8 = 1
	AddressKindAddress20 uint8 = 2
)

// MultiAddress is the gateway's tagged recipient on the Polkadot side.
type MultiAddress struct {
	Kind uint8
	Data []byte
}

type SendTokenParams struct {
	Token          common.Address
	ParaID         uint32
	Recipient      MultiAddress
	DestinationFee *big.Int
	Amount         *big.Int
}

// PackSendToken builds calldata for the bridge gateway's sendToken.
func PackSendToken(p SendTokenParams) ([]byte, error) {
	fee := p.DestinationFee
	if fee == nil {
		fee = big.NewInt(0)
	}
	if p.Amount == nil || p.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	data, err := gatewayABI.Pack("sendToken", p.Token, p.ParaID, p.Recipient, fee, p.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack sendToken: %w", err)
	}
	return data, nil
}

// SendTokenSelector is the 4-byte method id of sendToken.
func SendTokenSelector() []byte {
	return gatewayABI.Methods["sendToken"].ID
}

// DecodeSendToken reverses PackSendToken.
func DecodeSendToken(data []byte) (SendTokenParams, error) {
	method := gatewayABI.Methods["sendToken"]
	if len(data) < 4 || !bytes.Equal(data[:4], method.ID) {
		return SendTokenParams{}, fmt.Errorf("not a sendToken call")
	}
	vals, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return SendTokenParams{}, fmt.Errorf("failed to unpack sendToken: %w", err)
	}
	if len(vals) != 5 {
		return SendTokenParams{}, fmt.Errorf("sendToken has %d arguments, want 5", len(vals))
	}

	recipient, ok := abi.ConvertType(vals[2], new(MultiAddress)).(*MultiAddress)
	if !ok {
		return SendTokenParams{}, fmt.Errorf("unexpected recipient type %T", vals[2])
	}
	p := SendTokenParams{Recipient: *recipient}
	if p.Token, ok = vals[0].(common.Address); !ok {
		return SendTokenParams{}, fmt.Errorf("unexpected token type %T", vals[0])
	}
	if p.ParaID, ok = vals[1].(uint32); !ok {
		return SendTokenParams{}, fmt.Errorf("unexpected destination type %T", vals[1])
	}
	if p.DestinationFee, ok = vals[3].(*big.Int); !ok {
		return SendTokenParams{}, fmt.Errorf("unexpected fee type %T", vals[3])
	}
	if p.Amount, ok = vals[4].(*big.Int); !ok {
		return SendTokenParams{}, fmt.Errorf("unexpected amount type %T", vals[4])
	}
	return p, nil
}
