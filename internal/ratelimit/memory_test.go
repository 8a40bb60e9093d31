package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Run("counts increment within a window", func(t *testing.T) {
		s := NewMemoryStore()

		for want := int64(1); want <= 3; want++ {
			count, resetAt, err := s.Incr(context.Background(), "api:1.2.3.4", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, count)
			assert.True(t, resetAt.After(time.Now()))
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := NewMemoryStore()

		count, _, err := s.Incr(context.Background(), "api:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		count, _, err = s.Incr(context.Background(), "webhook:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("window expiry resets the count", func(t *testing.T) {
		s := NewMemoryStore()

		count, _, err := s.Incr(context.Background(), "api:1.2.3.4", 10*time.Millisecond)
		require.NoError(t, err)
		require.Equal(t, int64(1), count)

		time.Sleep(20 * time.Millisecond)

		count, resetAt, err := s.Incr(context.Background(), "api:1.2.3.4", 10*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
		assert.True(t, resetAt.After(time.Now()))
	})
}
