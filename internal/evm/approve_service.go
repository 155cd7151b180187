package evm

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vultisig/xtransfer/internal/types"
)

// ApproveService checks whether a spender, such as the bridge gateway, may
// pull tokens from an owner.
type ApproveService struct {
	rpc Client
}

func NewApproveService(rpc Client) *ApproveService {
	return &ApproveService{
		rpc: rpc,
	}
}

// CheckAllowance returns true and approve calldata when the current
// allowance is below amount.
func (a *ApproveService) CheckAllowance(
	ctx context.Context,
	tokenAddress, owner, spender common.Address,
	amount *big.Int,
) (bool, []byte, error) {
	allowanceData, err := packAllowance(owner, spender)
	if err != nil {
		return false, nil, err
	}
	out, err := a.rpc.CallContract(ctx, ethereum.CallMsg{To: &tokenAddress, Data: allowanceData}, nil)
	if err != nil {
		return false, nil, fmt.Errorf("%w: failed to check allowance: %v", types.ErrRPCFailure, err)
	}
	currentAllowance, err := unpackUint256(erc20ABI, "allowance", out)
	if err != nil {
		return false, nil, fmt.Errorf("%w: %v", types.ErrRPCFailure, err)
	}

	if currentAllowance.Cmp(amount) >= 0 {
		return false, nil, nil
	}

	approveData, err := PackApprove(spender, amount)
	if err != nil {
		return false, nil, err
	}
	return true, approveData, nil
}
