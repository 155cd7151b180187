// Package substrate reads fee-asset state from Substrate chains over
// JSON-RPC.
package substrate

import (
	"context"
	"fmt"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4/client"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Caller issues a JSON-RPC call. The GSRPC client satisfies it. Call takes
// no context, so a cancelled context is only observed between calls and a
// call in flight runs until the client's own timeout.
type Caller interface {
	Call(result interface{}, method string, args ...interface{}) error
}

// Close releases the connection behind c, if it holds one.
func Close(c Caller) {
	if cl, ok := c.(interface{ Close() }); ok {
		cl.Close()
	}
}

func Dial(url string) (gsrpc.Client, error) {
	cl, err := gsrpc.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return cl, nil
}

// stateCall runs a runtime API method against the best block.
func stateCall(ctx context.Context, c Caller, method string, args []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var res string
	if err := c.Call(&res, "state_call", method, hexutil.Encode(args)); err != nil {
		return nil, err
	}
	out, err := hexutil.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("bad state_call result: %w", err)
	}
	return out, nil
}

// storage returns the raw value at key, or nil when nothing is stored.
func storage(ctx context.Context, c Caller, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var res *string
	if err := c.Call(&res, "state_getStorage", hexutil.Encode(key)); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	out, err := hexutil.Decode(*res)
	if err != nil {
		return nil, fmt.Errorf("bad storage value: %w", err)
	}
	return out, nil
}
