package maintain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/simplesurance/depkeeper/internal/dkerr"
)

func newFastRetryer() *Retryer {
	retryer := NewRetryer()
	retryer.defTimeout = 5 * time.Second
	retryer.backoffInitialInterval = time.Millisecond
	retryer.backoffRandomizationFactor = 0

	return retryer
}

func TestRetryerRetriesUntilSuccess(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	retryer := newFastRetryer()
	t.Cleanup(retryer.Stop)

	var tries int
	err := retryer.Run(context.Background(), func(context.Context) error {
		tries++
		if tries < 3 {
			return dkerr.NewRetryableAnytimeError(errors.New("temporary failure"))
		}

		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, tries)
}

func TestRetryerDoesNotRetryPermanentErrors(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	permanentErr := errors.New("permanent failure")

	retryer := newFastRetryer()
	t.Cleanup(retryer.Stop)

	var tries int
	err := retryer.Run(context.Background(), func(context.Context) error {
		tries++
		return permanentErr
	}, nil)

	require.ErrorIs(t, err, permanentErr)
	assert.Equal(t, 1, tries)
}

func TestRetryerHonorsRetryAfterTime(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	retryer := newFastRetryer()
	t.Cleanup(retryer.Stop)

	const retryAfter = 100 * time.Millisecond

	start := time.Now()

	var tries int
	err := retryer.Run(context.Background(), func(context.Context) error {
		tries++
		if tries == 1 {
			return dkerr.NewRetryableError(errors.New("rate limited"), time.Now().Add(retryAfter))
		}

		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, tries)
	assert.GreaterOrEqual(t, time.Since(start), retryAfter)
}

func TestRetryerTimesOut(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	retryer := newFastRetryer()
	retryer.defTimeout = 50 * time.Millisecond
	t.Cleanup(retryer.Stop)

	err := retryer.Run(context.Background(), func(context.Context) error {
		return dkerr.NewRetryableAnytimeError(errors.New("temporary failure"))
	}, nil)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryerStopAbortsPendingRetries(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	retryer := NewRetryer()
	retryer.backoffInitialInterval = time.Hour

	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		var once bool
		done <- retryer.Run(context.Background(), func(context.Context) error {
			if !once {
				once = true
				close(started)
			}

			return dkerr.NewRetryableAnytimeError(errors.New("temporary failure"))
		}, nil)
	}()

	<-started
	retryer.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not terminate after Stop")
	}
}

func TestRetryerStopIsIdempotent(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	retryer := NewRetryer()
	retryer.Stop()
	retryer.Stop()
}

func TestRetryerCancelledContext(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	retryer := newFastRetryer()
	t.Cleanup(retryer.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// the first retry timer fires immediately, fn can win the race against
	// the cancelled context once and must then propagate the cancellation
	err := retryer.Run(ctx, func(ctx context.Context) error {
		return ctx.Err()
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
}
