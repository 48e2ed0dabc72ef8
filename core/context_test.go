package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldSuppressHeader(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want bool
	}{
		{"default", context.Background(), false},
		{"suppressed", WithSuppressHeader(context.Background()), true},
		{"wrong type", context.WithValue(context.Background(), suppressHeaderKey, "yes"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldSuppressHeader(tt.ctx))
		})
	}
}

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			assert.True(t, shouldSuppressHeader(ctx))
		})
	}
	wg.Wait()
}
