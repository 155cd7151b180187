package evm

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vultisig/xtransfer/internal/types"
)

var (
	gateway = common.HexToAddress("0xEDa338E4dC46038493b885327842fD3E301CaB39")
	weth    = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	owner   = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

// mockClient implements Client for testing
type mockClient struct {
	callOut   []byte
	callErr   error
	gas       uint64
	gasErr    error
	gasPrice  *big.Int
	priceErr  error
	calls     []ethereum.CallMsg
	estimated []ethereum.CallMsg
}

func (m *mockClient) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	m.calls = append(m.calls, msg)
	return m.callOut, m.callErr
}

func (m *mockClient) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	m.estimated = append(m.estimated, msg)
	return m.gas, m.gasErr
}

func (m *mockClient) SuggestGasPrice(context.Context) (*big.Int, error) {
	return m.gasPrice, m.priceErr
}

func uint256Word(v int64) []byte {
	return common.LeftPadBytes(big.NewInt(v).Bytes(), 32)
}

func sendTokenCall(t *testing.T) ([]byte, SendTokenParams) {
	t.Helper()
	p := SendTokenParams{
		Token:          weth,
		ParaID:         1000,
		Recipient:      MultiAddress{Kind: AddressKindAddress32, Data: bytes.Repeat([]byte{0xd4}, 32)},
		DestinationFee: big.NewInt(0),
		Amount:         big.NewInt(1_000_000_000_000_000),
	}
	data, err := PackSendToken(p)
	require.NoError(t, err)
	return data, p
}

func TestPackSendToken(t *testing.T) {
	data, p := sendTokenCall(t)
	assert.Equal(t, SendTokenSelector(), data[:4])

	decoded, err := DecodeSendToken(data)
	require.NoError(t, err)
	assert.Equal(t, p.Token, decoded.Token)
	assert.Equal(t, p.ParaID, decoded.ParaID)
	assert.Equal(t, p.Recipient, decoded.Recipient)
	assert.Equal(t, 0, p.Amount.Cmp(decoded.Amount))
	assert.Equal(t, 0, decoded.DestinationFee.Sign())

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := PackSendToken(SendTokenParams{Token: weth, Amount: big.NewInt(0)})
		require.Error(t, err)
	})

	t.Run("foreign selector", func(t *testing.T) {
		approve, err := PackApprove(gateway, big.NewInt(1))
		require.NoError(t, err)
		_, err = DecodeSendToken(approve)
		require.Error(t, err)
	})
}

func TestGasEstimator_EstimateBridge(t *testing.T) {
	data, _ := sendTokenCall(t)
	client := &mockClient{
		callOut:  uint256Word(500_000),
		gas:      100_000,
		gasPrice: big.NewInt(30),
	}
	g := NewGasEstimator(client, logrus.New())

	quote, err := g.EstimateBridge(context.Background(), owner, gateway, data)
	require.NoError(t, err)

	assert.Equal(t, uint64(120_000), quote.GasLimit)
	assert.Equal(t, big.NewInt(500_000), quote.Value)
	assert.Equal(t, big.NewInt(120_000*30+500_000), quote.Fee)

	require.Len(t, client.calls, 1)
	assert.Equal(t, gateway, *client.calls[0].To)
	assert.Equal(t, gatewayABI.Methods["quoteSendTokenFee"].ID, client.calls[0].Data[:4])

	require.Len(t, client.estimated, 1)
	assert.Equal(t, owner, client.estimated[0].From)
	assert.Equal(t, data, client.estimated[0].Data)
	assert.Equal(t, big.NewInt(500_000), client.estimated[0].Value)
}

func TestGasEstimator_Errors(t *testing.T) {
	data, _ := sendTokenCall(t)

	tests := []struct {
		name     string
		client   *mockClient
		calldata []byte
		wantErr  error
	}{
		{
			name:     "not a sendToken call",
			client:   &mockClient{},
			calldata: []byte{0x01, 0x02, 0x03, 0x04},
			wantErr:  types.ErrEncodingMismatch,
		},
		{
			name:     "quote fails",
			client:   &mockClient{callErr: errors.New("execution reverted")},
			calldata: data,
			wantErr:  types.ErrRPCFailure,
		},
		{
			name:     "estimate fails",
			client:   &mockClient{callOut: uint256Word(1), gasErr: errors.New("insufficient funds for gas")},
			calldata: data,
			wantErr:  types.ErrRPCFailure,
		},
		{
			name:     "gas price fails",
			client:   &mockClient{callOut: uint256Word(1), gas: 1, priceErr: errors.New("timeout")},
			calldata: data,
			wantErr:  types.ErrRPCFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGasEstimator(tt.client, logrus.New()).EstimateBridge(context.Background(), owner, gateway, tt.calldata)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApproveService_CheckAllowance(t *testing.T) {
	tests := []struct {
		name      string
		allowance int64
		amount    int64
		want      bool
	}{
		{name: "enough", allowance: 1000, amount: 1000, want: false},
		{name: "short", allowance: 999, amount: 1000, want: true},
		{name: "none", allowance: 0, amount: 1, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{callOut: uint256Word(tt.allowance)}
			needs, data, err := NewApproveService(client).CheckAllowance(
				context.Background(), weth, owner, gateway, big.NewInt(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, needs)

			require.Len(t, client.calls, 1)
			assert.Equal(t, weth, *client.calls[0].To)
			if !tt.want {
				assert.Nil(t, data)
				return
			}
			want, err := PackApprove(gateway, big.NewInt(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, want, data)
		})
	}

	t.Run("rpc failure", func(t *testing.T) {
		client := &mockClient{callErr: errors.New("timeout")}
		_, _, err := NewApproveService(client).CheckAllowance(context.Background(), weth, owner, gateway, big.NewInt(1))
		require.ErrorIs(t, err, types.ErrRPCFailure)
	})
}
