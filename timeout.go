package daytona

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout bounds lifecycle operations unless the caller overrides it.
const DefaultTimeout = 60 * time.Second

// withTimeout runs fn under a wall-clock deadline. A zero timeout runs fn
// inline with no deadline. A negative timeout fails with an invalid-argument
// error before fn is invoked. On deadline expiry the derived context is
// cancelled and the guard returns a timeout error built by errMsg; an fn
// that does not honor its context keeps running detached and its eventual
// result is discarded.
func withTimeout[T any](ctx context.Context, timeout time.Duration, errMsg func(timeout time.Duration) string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if timeout < 0 {
		return zero, newInvalidArgument("timeout must be a non-negative duration, got %s", timeout)
	}
	if timeout == 0 {
		return fn(ctx)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := fn(runCtx)
		done <- result{value: value, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.value, res.err
	case <-timer.C:
		msg := fmt.Sprintf("operation exceeded timeout of %g seconds", timeout.Seconds())
		if errMsg != nil {
			msg = errMsg(timeout)
		}
		return zero, &Error{Kind: KindTimeout, Message: msg}
	}
}

// withTimeoutNoResult is withTimeout for operations that only return an
// error.
func withTimeoutNoResult(ctx context.Context, timeout time.Duration, errMsg func(timeout time.Duration) string, fn func(ctx context.Context) error) error {
	_, err := withTimeout(ctx, timeout, errMsg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
