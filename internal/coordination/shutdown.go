package coordination

import (
	"context"

	"pgcluster/internal/state"
)

// ShutdownMode selects which operation Shutdown performs once it wins the
// exclusive lock.
type ShutdownMode int

const (
	ModeStop ShutdownMode = iota
	ModeDestroy
)

// ShutdownOutcome is the result of Shutdown: exactly one of Shared or Free
// is populated, selected by StillRunning.
type ShutdownOutcome[S Subject] struct {
	State state.State

	// StillRunning is true when another process is holding the lock, so
	// the cluster was left running and Shared holds the caller's
	// continuing read license. When false, the caller brought the
	// cluster down and Free holds the now-unlocked resource.
	StillRunning bool
	Shared       ResourceShared[S]
	Free         ResourceFree[S]
}

// Shutdown implements the shutdown algorithm: the caller tries to upgrade
// its shared (read) lock to exclusive. If another process is still holding
// a lock of its own, the upgrade fails and Shutdown reports the cluster as
// still running — stopping it is somebody else's problem, or will be once
// they release. If the upgrade succeeds, the caller is the last one
// standing, so it stops (or, in ModeDestroy, destroys) the subject and
// releases the lock entirely.
func Shutdown[S Subject](ctx context.Context, shared ResourceShared[S], mode ShutdownMode) (ShutdownOutcome[S], error) {
	still, exclusive, ok, err := shared.TryLockExclusive()
	if err != nil {
		return ShutdownOutcome[S]{}, err
	}
	if !ok {
		return ShutdownOutcome[S]{State: state.Unmodified, StillRunning: true, Shared: still}, nil
	}

	var st state.State
	switch mode {
	case ModeDestroy:
		st, err = exclusive.Subject.Destroy(ctx)
	default:
		st, err = exclusive.Subject.Stop(ctx)
	}
	if err != nil {
		exclusive.Release() //nolint:errcheck // best effort; original error is what matters
		return ShutdownOutcome[S]{}, err
	}

	free, err := exclusive.Release()
	if err != nil {
		return ShutdownOutcome[S]{}, err
	}
	return ShutdownOutcome[S]{State: st, StillRunning: false, Free: free}, nil
}
