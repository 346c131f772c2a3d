package maintain

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/simplesurance/depkeeper/internal/dkerr"
	"github.com/simplesurance/depkeeper/internal/logfields"
)

const (
	defRetryTimeout           = 10 * time.Minute
	defBackoffInitialInterval = 5 * time.Second
)

// Retryer executes a function repeatedly until it was successful or a cancel
// condition happened.
type Retryer struct {
	logger                     *zap.Logger
	defTimeout                 time.Duration
	backoffInitialInterval     time.Duration
	backoffRandomizationFactor float64
	shutdownChan               chan struct{}
}

func NewRetryer() *Retryer {
	return &Retryer{
		logger:                     zap.L().Named("retryer"),
		defTimeout:                 defRetryTimeout,
		backoffInitialInterval:     defBackoffInitialInterval,
		backoffRandomizationFactor: backoff.DefaultRandomizationFactor,
		shutdownChan:               make(chan struct{}),
	}
}

// Run executes fn until it was successful, it returned an error that does not
// wrap dkerr.RetryableError or the execution was aborted via the context.
func (r *Retryer) Run(ctx context.Context, fn func(context.Context) error, logF []zap.Field) error {
	var tryCnt uint

	ctx, cancel := context.WithTimeout(ctx, r.defTimeout)
	defer cancel()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.backoffInitialInterval
	bo.RandomizationFactor = r.backoffRandomizationFactor

	retryTimer := time.NewTimer(0)
	defer retryTimer.Stop()

	for {
		tryCnt++
		logger := r.logger.With(logF...).With(zap.Uint("try_count", tryCnt))

		select {
		case <-ctx.Done():
			logger.Info(
				"operation cancelled",
				logfields.Event("operation_cancelled"),
			)

			return ctx.Err()

		case <-r.shutdownChan:
			logger.Info(
				"retryer terminated, operation not executed",
				logfields.Event("operation_cancelled_retryer_terminated"),
			)

			return nil

		case <-retryTimer.C:
			err := fn(ctx)
			if err == nil {
				if tryCnt > 1 {
					logger.Debug(
						"operation succeeded after retry",
						logfields.Event("operation_succeeded"),
					)
				}

				return nil
			}

			logger = logger.With(zap.Error(err))

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.Info(
					"operation cancelled",
					logfields.Event("operation_cancelled"),
				)

				return err
			}

			var retryErr *dkerr.RetryableError
			if !errors.As(err, &retryErr) {
				logger.Debug(
					"operation failed, error is not retryable",
					logfields.Event("operation_failed"),
				)

				return err
			}

			retryIn := bo.NextBackOff()
			if !retryErr.After.IsZero() {
				if until := time.Until(retryErr.After); until > retryIn {
					retryIn = until
				}
			}

			retryTimer.Reset(retryIn)
			logger.Info(
				"operation failed temporarily, retry scheduled",
				logfields.Event("operation_retry_scheduled"),
				zap.Duration("retry_in", retryIn),
				zap.Duration("age", bo.GetElapsedTime()),
			)
		}
	}
}

// Stop notifies all Run() methods to terminate.
// It does not wait for their termination.
func (r *Retryer) Stop() {
	r.logger.Debug("retryer terminating", logfields.Event("retryer_terminating"))

	select {
	case <-r.shutdownChan:
		return // already closed
	default:
		close(r.shutdownChan)
	}
}
