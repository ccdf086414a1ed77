// Package coordination composes the file lock primitive and the cluster
// controller into a generic, process-safe state machine: typed resource
// handles that only expose the operations safe at their lock level, a
// thundering-herd-safe startup algorithm, a matching shutdown algorithm,
// scoped run-and-{stop,destroy} combinators, and a drop-style guard. The
// backup and restore protocols are built on top of it in the backup and
// restore packages.
package coordination

import (
	"context"

	"pgcluster/internal/cluster"
	"pgcluster/internal/state"
)

// Subject is anything with the generic lifecycle this package coordinates:
// start, stop, destroy, and the two read-only predicates exists/running.
// *cluster.Cluster implements Subject structurally — there is no explicit
// "implements" declaration needed.
type Subject interface {
	Start(ctx context.Context, opts cluster.StartOptions) (state.State, error)
	Stop(ctx context.Context) (state.State, error)
	Destroy(ctx context.Context) (state.State, error)
	Exists() (bool, error)
	IsRunning(ctx context.Context) (bool, error)
}
