package qos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaptiveLimiter_Clamp(t *testing.T) {
	assert.Equal(t, 4, NewAdaptiveLimiter(1, 4, 10).CurrentLimit())
	assert.Equal(t, 10, NewAdaptiveLimiter(50, 4, 10).CurrentLimit())
	assert.Equal(t, 1, NewAdaptiveLimiter(0, 0, 0).CurrentLimit())
}

func TestAdaptiveLimiter_Increase(t *testing.T) {
	l := NewAdaptiveLimiter(10, 1, 20)

	for i := 0; i < 10; i++ {
		l.OnSuccess()
	}
	assert.Equal(t, 11, l.CurrentLimit())

	for i := 0; i < 11; i++ {
		l.OnSuccess()
	}
	assert.Equal(t, 12, l.CurrentLimit())
}

func TestAdaptiveLimiter_IncreaseCappedAtMax(t *testing.T) {
	l := NewAdaptiveLimiter(2, 1, 2)
	for i := 0; i < 10; i++ {
		l.OnSuccess()
	}
	assert.Equal(t, 2, l.CurrentLimit())
}

func TestAdaptiveLimiter_Decrease(t *testing.T) {
	l := NewAdaptiveLimiter(100, 1, 200)
	l.OnFailure()
	assert.Equal(t, 70, l.CurrentLimit())

	small := NewAdaptiveLimiter(2, 1, 10)
	small.OnFailure()
	assert.Equal(t, 1, small.CurrentLimit())
	small.OnFailure()
	assert.Equal(t, 1, small.CurrentLimit())
}

func TestAdaptiveLimiter_AcquireRelease(t *testing.T) {
	l := NewAdaptiveLimiter(2, 1, 10)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))
	assert.Equal(t, 2, l.InFlight())

	timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Acquire(timeoutCtx), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() { done <- l.Acquire(ctx) }()

	l.Release()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken by Release")
	}
}

func TestAdaptiveLimiter_ShrinkWhileBusy(t *testing.T) {
	l := NewAdaptiveLimiter(3, 1, 10)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Acquire(ctx))
	}

	l.OnFailure() // 3 -> 2
	assert.Equal(t, 2, l.CurrentLimit())

	// 释放一个后仍有 2 个在用，窗口为 2，不能再借
	l.Release()
	shortCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Acquire(shortCtx))

	l.Release()
	require.NoError(t, l.Acquire(ctx))
}
