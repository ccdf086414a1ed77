package coordination

import (
	"context"

	"pgcluster/internal/cluster"
	"pgcluster/internal/state"
)

// Startup implements the thundering-herd-safe startup algorithm: any number
// of processes can call Startup concurrently against the same lock file and
// exactly one of them will create and start the cluster, while the rest
// wait for it to come up and then join as shared-lock readers.
//
// On each iteration a caller tries for the exclusive lock. Winning it means
// no one else is touching the cluster, so the winner starts it and
// immediately downgrades to shared — handing the ongoing "cluster is in
// use" signal to every other waiter without holding the exclusive lock any
// longer than it has to. Losing the exclusive lock means someone else holds
// it; the caller blocks for a shared lock instead, and once granted checks
// whether the cluster is actually running yet. If it's not (the previous
// exclusive holder was doing something else, or crashed mid-startup) the
// caller releases and retries after a randomized backoff.
func Startup[S Subject](ctx context.Context, free ResourceFree[S], opts cluster.StartOptions) (state.State, ResourceShared[S], error) {
	for {
		still, exclusive, ok, err := free.TryLockExclusive()
		if err != nil {
			return state.Unmodified, ResourceShared[S]{}, err
		}
		if ok {
			st, err := exclusive.Subject.Start(ctx, opts)
			if err != nil {
				return state.Unmodified, ResourceShared[S]{}, err
			}
			shared, err := exclusive.LockShared()
			if err != nil {
				return state.Unmodified, ResourceShared[S]{}, err
			}
			return st, shared, nil
		}

		shared, err := still.LockShared()
		if err != nil {
			return state.Unmodified, ResourceShared[S]{}, err
		}
		running, err := shared.Subject.IsRunning(ctx)
		if err != nil {
			shared.Release() //nolint:errcheck // best effort; original error is what matters
			return state.Unmodified, ResourceShared[S]{}, err
		}
		if running {
			return state.Unmodified, shared, nil
		}

		free, err = shared.Release()
		if err != nil {
			return state.Unmodified, ResourceShared[S]{}, err
		}
		sleepBackoff(ctx)
		if err := ctx.Err(); err != nil {
			return state.Unmodified, ResourceShared[S]{}, err
		}
	}
}

// StartupIfExists behaves like Startup, except a caller who wins the
// exclusive lock does not create the cluster: if it isn't already created,
// the lock is released and ErrDoesNotExist is returned instead.
func StartupIfExists[S Subject](ctx context.Context, free ResourceFree[S], opts cluster.StartOptions) (state.State, ResourceShared[S], error) {
	for {
		still, exclusive, ok, err := free.TryLockExclusive()
		if err != nil {
			return state.Unmodified, ResourceShared[S]{}, err
		}
		if ok {
			exists, err := exclusive.Subject.Exists()
			if err != nil {
				return state.Unmodified, ResourceShared[S]{}, err
			}
			if !exists {
				exclusive.Release() //nolint:errcheck // best effort; original error is what matters
				return state.Unmodified, ResourceShared[S]{}, ErrDoesNotExist
			}
			st, err := exclusive.Subject.Start(ctx, opts)
			if err != nil {
				return state.Unmodified, ResourceShared[S]{}, err
			}
			shared, err := exclusive.LockShared()
			if err != nil {
				return state.Unmodified, ResourceShared[S]{}, err
			}
			return st, shared, nil
		}

		shared, err := still.LockShared()
		if err != nil {
			return state.Unmodified, ResourceShared[S]{}, err
		}
		running, err := shared.Subject.IsRunning(ctx)
		if err != nil {
			shared.Release() //nolint:errcheck // best effort; original error is what matters
			return state.Unmodified, ResourceShared[S]{}, err
		}
		if running {
			return state.Unmodified, shared, nil
		}

		free, err = shared.Release()
		if err != nil {
			return state.Unmodified, ResourceShared[S]{}, err
		}
		sleepBackoff(ctx)
		if err := ctx.Err(); err != nil {
			return state.Unmodified, ResourceShared[S]{}, err
		}
	}
}
