package graceful

import (
	"context"
	"os/signal"
	"syscall"
)

// Context is cancelled on SIGINT or SIGTERM so in-flight RPC calls stop.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
