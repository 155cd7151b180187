package reqid

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator hands out request identifiers for constructed artifacts.
type Generator interface {
	Next() string
}

type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) Next() string {
	return uuid.New().String()
}

// Counter yields prefix-1, prefix-2, ... and is safe for concurrent use.
type Counter struct {
	prefix string
	n      atomic.Uint64
}

func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

func (c *Counter) Next() string {
	return fmt.Sprintf("%s-%d", c.prefix, c.n.Add(1))
}
