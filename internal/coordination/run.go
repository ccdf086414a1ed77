package coordination

import (
	"context"

	"pgcluster/internal/cluster"
)

// Action is the work a scoped combinator runs while holding a shared lock
// on a started subject.
type Action[S Subject, T any] func(ctx context.Context, shared ResourceShared[S]) (T, error)

// runScoped is the shared implementation behind RunAndStop, RunAndDestroy,
// and their *IfExists variants: start the subject, run action, then always
// shut it down — even if action panics. A panic in action is caught, the
// cleanup still runs, and the recovered panic value is re-raised afterward
// so the caller sees the original failure value. Cleanup errors are
// logged and suppressed whenever action already failed (by error or by
// panic); they're only returned to the caller when action succeeded.
func runScoped[S Subject, T any](
	ctx context.Context,
	logger Logger,
	start func() (ResourceShared[S], error),
	mode ShutdownMode,
	action Action[S, T],
) (result T, err error) {
	if logger == nil {
		logger = nopLogger{}
	}

	shared, err := start()
	if err != nil {
		var zero T
		return zero, err
	}

	var actionErr error
	var panicked any
	func() {
		defer func() {
			if p := recover(); p != nil {
				panicked = p
			}
		}()
		result, actionErr = action(ctx, shared)
	}()

	_, shutdownErr := Shutdown(ctx, shared, mode)

	switch {
	case panicked != nil:
		if shutdownErr != nil {
			logger.Error("cleanup failed after panic in scoped action", "error", shutdownErr)
		}
		panic(panicked)
	case actionErr != nil:
		if shutdownErr != nil {
			logger.Error("cleanup failed after scoped action error", "error", shutdownErr)
		}
		var zero T
		return zero, actionErr
	case shutdownErr != nil:
		var zero T
		return zero, shutdownErr
	default:
		return result, nil
	}
}

// RunAndStop starts subject (creating it if necessary), runs action while
// it's up, and stops it afterward — unless another process is still
// holding a lock on it, in which case it's left running for them.
func RunAndStop[S Subject, T any](ctx context.Context, logger Logger, free ResourceFree[S], opts cluster.StartOptions, action Action[S, T]) (T, error) {
	return runScoped(ctx, logger, func() (ResourceShared[S], error) {
		_, shared, err := Startup(ctx, free, opts)
		return shared, err
	}, ModeStop, action)
}

// RunAndStopIfExists behaves like RunAndStop but fails with ErrDoesNotExist
// instead of creating the subject.
func RunAndStopIfExists[S Subject, T any](ctx context.Context, logger Logger, free ResourceFree[S], opts cluster.StartOptions, action Action[S, T]) (T, error) {
	return runScoped(ctx, logger, func() (ResourceShared[S], error) {
		_, shared, err := StartupIfExists(ctx, free, opts)
		return shared, err
	}, ModeStop, action)
}

// RunAndDestroy starts subject, runs action while it's up, and destroys it
// afterward — unless another process is still holding a lock on it.
func RunAndDestroy[S Subject, T any](ctx context.Context, logger Logger, free ResourceFree[S], opts cluster.StartOptions, action Action[S, T]) (T, error) {
	return runScoped(ctx, logger, func() (ResourceShared[S], error) {
		_, shared, err := Startup(ctx, free, opts)
		return shared, err
	}, ModeDestroy, action)
}
