package coordination

import "context"

// Guard holds a started subject's shared lock for as long as it's in
// scope, running the shutdown algorithm once when the caller is done with
// it. Go has no destructors, so "done with it" is explicit: call Close,
// typically via defer, immediately after acquiring the guard.
//
//	guard := coordination.NewGuard(shared, coordination.ModeStop, logger)
//	defer guard.Close(ctx)
//	// ... use guard.Subject() while it's running ...
type Guard[S Subject] struct {
	shared ResourceShared[S]
	mode   ShutdownMode
	logger Logger
	closed bool
}

// NewGuard wraps an already-started ResourceShared.
func NewGuard[S Subject](shared ResourceShared[S], mode ShutdownMode, logger Logger) *Guard[S] {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Guard[S]{shared: shared, mode: mode, logger: logger}
}

// Subject returns the guarded subject for use while the guard is open.
func (g *Guard[S]) Subject() S { return g.shared.Subject }

// Close runs the shutdown algorithm once. Calling it more than once is a
// no-op. Any shutdown error is logged rather than returned, mirroring a
// drop implementation that has no caller left to hand an error to.
func (g *Guard[S]) Close(ctx context.Context) {
	if g.closed {
		return
	}
	g.closed = true
	if _, err := Shutdown(ctx, g.shared, g.mode); err != nil {
		g.logger.Error("guard cleanup failed", "error", err)
	}
}
