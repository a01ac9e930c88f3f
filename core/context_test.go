package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := WithCommand(withSuppressHeader(context.Background()), "reports")

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			assert.True(t, shouldSuppressHeader(ctx), "goroutine %d: header should be suppressed", i)
			assert.Equal(t, "reports", commandFromContext(ctx), "goroutine %d", i)
		})
	}
	wg.Wait()
}

// TestContextIsolation tests that different contexts maintain isolation.
func TestContextIsolation(t *testing.T) {
	base := context.Background()
	suppressed := WithSuppressHeader(base)
	named := WithCommand(base, "trend")

	assert.False(t, shouldSuppressHeader(base))
	assert.True(t, shouldSuppressHeader(suppressed))
	assert.False(t, shouldSuppressHeader(named))

	assert.Equal(t, "unknown", commandFromContext(base))
	assert.Equal(t, "unknown", commandFromContext(suppressed))
	assert.Equal(t, "trend", commandFromContext(named))
	assert.Equal(t, "unknown", commandFromContext(WithCommand(base, "")), "empty command falls back")
}

func TestShouldSuppressHeaderWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), suppressHeaderKey, "yes")
	assert.False(t, shouldSuppressHeader(ctx))
}
