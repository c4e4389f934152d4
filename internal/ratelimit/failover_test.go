package ratelimit

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func TestFailoverLimiter(t *testing.T) {
	primary := new(mockLimiter)
	fallback := new(mockLimiter)
	logger := zerolog.New(io.Discard)
	lim := NewFailoverLimiter(primary, fallback, &logger)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	lim.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Allow", ctx, "a").Return(true, nil).Once()

		ok, err := lim.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
		primary.AssertExpectations(t)
		fallback.AssertNotCalled(t, "Allow", mock.Anything, mock.Anything)
	})

	t.Run("PrimaryFailure", func(t *testing.T) {
		primary.On("Allow", ctx, "a").Return(false, errors.New("connection refused")).Once()
		fallback.On("Allow", ctx, "a").Return(false, nil).Once()

		ok, err := lim.Allow(ctx, "a")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, lim.isDown.Load())
	})

	t.Run("StaysOnFallback", func(t *testing.T) {
		now = now.Add(30 * time.Second)
		fallback.On("Allow", ctx, "b").Return(true, nil).Once()

		ok, err := lim.Allow(ctx, "b")
		require.NoError(t, err)
		assert.True(t, ok)
		primary.AssertNumberOfCalls(t, "Allow", 2)
	})

	t.Run("Recovers", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("Allow", ctx, "c").Return(true, nil).Once()

		ok, err := lim.Allow(ctx, "c")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, lim.isDown.Load())
	})
}
