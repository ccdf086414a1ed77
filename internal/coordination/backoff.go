package coordination

import (
	"context"
	"math/rand"
	"time"
)

// minBackoff and maxBackoff bound the randomized pause between failed
// attempts to win the exclusive lock during startup, so that many
// processes racing to start the same cluster don't retry in lockstep.
const (
	minBackoff = 200 * time.Millisecond
	maxBackoff = 1000 * time.Millisecond
)

// sleepBackoff pauses for a random duration in [minBackoff, maxBackoff),
// returning early if ctx is cancelled.
func sleepBackoff(ctx context.Context) {
	d := minBackoff + time.Duration(rand.Int63n(int64(maxBackoff-minBackoff)))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
