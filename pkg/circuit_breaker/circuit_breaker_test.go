package circuit_breaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookvault/borrowing-service/pkg/circuit_breaker"
)

func Test_circuitBreaker_Call(t *testing.T) {
	successfulService := func() error {
		return nil
	}
	failingService := func() error {
		return errors.New("service error")
	}

	cb := circuit_breaker.New(10, 100*time.Millisecond, 0.30, 3)

	for i := 0; i < 80; i++ {
		require.NoError(t, cb.Call(successfulService))
	}

	// trip the breaker
	sawOpen := false
	for i := 0; i < 40; i++ {
		if err := cb.Call(failingService); errors.Is(err, circuit_breaker.ErrOpenCB) {
			sawOpen = true
		}
	}
	require.True(t, sawOpen, "breaker should open after failure percentile exceeded")

	// while open, calls short-circuit
	require.ErrorIs(t, cb.Call(successfulService), circuit_breaker.ErrOpenCB)

	// wait for half-open, then recover with successes
	time.Sleep(150 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, cb.Call(successfulService))
	}
	require.NoError(t, cb.Call(successfulService))

	// a failure in half-open reopens immediately
	cb.Reset()
	for i := 0; i < 40; i++ {
		_ = cb.Call(failingService)
	}
	time.Sleep(150 * time.Millisecond)
	require.Error(t, cb.Call(failingService))
	require.ErrorIs(t, cb.Call(successfulService), circuit_breaker.ErrOpenCB)
}
