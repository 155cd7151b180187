package reqid

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	g := NewUUIDGenerator()
	a, b := g.Next(), g.Next()

	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCounter(t *testing.T) {
	c := NewCounter("req")
	assert.Equal(t, "req-1", c.Next())
	assert.Equal(t, "req-2", c.Next())

	other := NewCounter("req")
	assert.Equal(t, "req-1", other.Next(), "counters must not share state")
}

func TestCounterConcurrent(t *testing.T) {
	c := NewCounter("x")
	seen := sync.Map{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup := seen.LoadOrStore(c.Next(), struct{}{})
			assert.False(t, dup)
		}()
	}
	wg.Wait()
	assert.Equal(t, "x-51", c.Next())
}
