package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failing(ctx context.Context) error    { return errBoom }
func succeeding(ctx context.Context) error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := New("test", WithFailureThreshold(2))

	assert.True(t, cb.IsClosed())
	assert.Error(t, cb.Execute(context.Background(), failing))
	assert.True(t, cb.IsClosed())
	assert.Error(t, cb.Execute(context.Background(), failing))
	assert.True(t, cb.IsOpen())

	// Open circuit short-circuits without running the operation.
	ran := false
	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, ran)
}

func TestCircuitBreaker_SuccessResetsFailureStreak(t *testing.T) {
	cb := New("test", WithFailureThreshold(2))

	assert.Error(t, cb.Execute(context.Background(), failing))
	assert.NoError(t, cb.Execute(context.Background(), succeeding))
	assert.Error(t, cb.Execute(context.Background(), failing))
	assert.True(t, cb.IsClosed())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := New("test",
		WithFailureThreshold(1),
		WithSuccessThreshold(1),
		WithTimeout(10*time.Millisecond),
	)

	require.Error(t, cb.Execute(context.Background(), failing))
	require.True(t, cb.IsOpen())

	time.Sleep(20 * time.Millisecond)

	// The first probe after the timeout goes through and closes the circuit.
	assert.NoError(t, cb.Execute(context.Background(), succeeding))
	assert.True(t, cb.IsClosed())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := New("test",
		WithFailureThreshold(1),
		WithTimeout(10*time.Millisecond),
	)

	require.Error(t, cb.Execute(context.Background(), failing))
	time.Sleep(20 * time.Millisecond)

	assert.Error(t, cb.Execute(context.Background(), failing))
	assert.True(t, cb.IsOpen())
}

func TestCircuitBreaker_IsFailureFilter(t *testing.T) {
	cb := New("test",
		WithFailureThreshold(1),
		WithIsFailure(func(err error) bool { return !errors.Is(err, errBoom) }),
	)

	// Filtered errors do not trip the breaker.
	assert.Error(t, cb.Execute(context.Background(), failing))
	assert.True(t, cb.IsClosed())

	assert.Error(t, cb.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("counted")
	}))
	assert.True(t, cb.IsOpen())
}

func TestCircuitBreaker_ExecuteWithFallback(t *testing.T) {
	cb := New("test", WithFailureThreshold(1))
	require.Error(t, cb.Execute(context.Background(), failing))
	require.True(t, cb.IsOpen())

	err := cb.ExecuteWithFallback(context.Background(), failing, func(err error) error {
		assert.ErrorIs(t, err, ErrCircuitOpen)
		return nil
	})
	assert.NoError(t, err)
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	type transition struct{ from, to State }
	var transitions []transition

	cb := New("watched",
		WithFailureThreshold(1),
		WithSuccessThreshold(1),
		WithTimeout(10*time.Millisecond),
		WithOnStateChange(func(name string, from, to State) {
			assert.Equal(t, "watched", name)
			transitions = append(transitions, transition{from, to})
		}),
	)

	require.Error(t, cb.Execute(context.Background(), failing))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cb.Execute(context.Background(), succeeding))

	assert.Equal(t, []transition{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}, transitions)
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := New("test", WithFailureThreshold(1))
	require.Error(t, cb.Execute(context.Background(), failing))
	require.True(t, cb.IsOpen())

	cb.Reset()
	assert.True(t, cb.IsClosed())
	assert.NoError(t, cb.Execute(context.Background(), succeeding))
}

func TestCircuitBreaker_Counts(t *testing.T) {
	cb := New("test", WithFailureThreshold(5))

	_ = cb.Execute(context.Background(), succeeding)
	_ = cb.Execute(context.Background(), failing)
	_ = cb.Execute(context.Background(), failing)

	counts := cb.Counts()
	assert.Equal(t, 3, counts.Requests)
	assert.Equal(t, 1, counts.TotalSuccesses)
	assert.Equal(t, 2, counts.TotalFailures)
	assert.Equal(t, 2, counts.ConsecutiveFailures)
}
