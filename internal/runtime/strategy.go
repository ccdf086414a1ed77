package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Strategy is an ordered way of discovering and selecting PostgreSQL
// runtimes.
type Strategy interface {
	// Runtimes returns every runtime this strategy can discover,
	// deduplicated by version.
	Runtimes(ctx context.Context) ([]Runtime, error)

	// Select asks each sub-strategy, in order, for its highest-version
	// runtime matching constraint; the first non-empty answer wins.
	Select(ctx context.Context, c Constraint) (Runtime, error)

	// Fallback returns the default runtime to use for a newly created
	// cluster: the highest version from the first sub-strategy that
	// discovers anything at all.
	Fallback(ctx context.Context) (Runtime, error)
}

// ErrNoRuntime is returned when no runtime satisfies a Select or Fallback
// request.
var ErrNoRuntime = fmt.Errorf("runtime: no matching runtime found")

// fromBinDir is a strategy wrapping a single, explicitly named bindir —
// typically a user override.
type fromBinDir struct{ bindir string }

// FromBinDir returns a strategy consisting of exactly one user-supplied
// binary directory.
func FromBinDir(bindir string) Strategy { return fromBinDir{bindir} }

func (s fromBinDir) Runtimes(ctx context.Context) ([]Runtime, error) {
	if r, ok := probe(ctx, s.bindir); ok {
		return []Runtime{r}, nil
	}
	return nil, nil
}

func (s fromBinDir) Select(ctx context.Context, c Constraint) (Runtime, error) {
	return selectFromRuntimes(ctx, s, c)
}

func (s fromBinDir) Fallback(ctx context.Context) (Runtime, error) {
	return fallbackFromRuntimes(ctx, s)
}

// fromPath is a strategy that searches every directory on the process PATH
// for a pg_ctl executable.
type fromPath struct{}

// FromPath returns a strategy that searches $PATH.
func FromPath() Strategy { return fromPath{} }

func (s fromPath) Runtimes(ctx context.Context) ([]Runtime, error) {
	var out []Runtime
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}
		if r, ok := probe(ctx, dir); ok {
			out = append(out, r)
		}
	}
	return dedupeByVersion(out), nil
}

func (s fromPath) Select(ctx context.Context, c Constraint) (Runtime, error) {
	return selectFromRuntimes(ctx, s, c)
}

func (s fromPath) Fallback(ctx context.Context) (Runtime, error) {
	return fallbackFromRuntimes(ctx, s)
}

// fromGlob is a strategy that expands a filepath.Glob pattern such as
// "/usr/lib/postgresql/*/bin" into candidate bindirs.
type fromGlob struct{ pattern string }

// FromGlob returns a strategy that discovers runtimes by expanding a
// filesystem glob pattern.
func FromGlob(pattern string) Strategy { return fromGlob{pattern} }

func (s fromGlob) Runtimes(ctx context.Context) ([]Runtime, error) {
	matches, err := filepath.Glob(s.pattern)
	if err != nil {
		return nil, fmt.Errorf("runtime: bad glob pattern %q: %w", s.pattern, err)
	}
	var out []Runtime
	for _, dir := range matches {
		if r, ok := probe(ctx, dir); ok {
			out = append(out, r)
		}
	}
	return dedupeByVersion(out), nil
}

func (s fromGlob) Select(ctx context.Context, c Constraint) (Runtime, error) {
	return selectFromRuntimes(ctx, s, c)
}

func (s fromGlob) Fallback(ctx context.Context) (Runtime, error) {
	return fallbackFromRuntimes(ctx, s)
}

// single is a strategy wrapping one already-known runtime, with no further
// discovery.
type single struct{ r Runtime }

// Single returns a strategy consisting of exactly one already-resolved
// runtime.
func Single(r Runtime) Strategy { return single{r} }

func (s single) Runtimes(context.Context) ([]Runtime, error) { return []Runtime{s.r}, nil }

func (s single) Select(_ context.Context, c Constraint) (Runtime, error) {
	if c.Matches(s.r) {
		return s.r, nil
	}
	return Runtime{}, ErrNoRuntime
}

func (s single) Fallback(context.Context) (Runtime, error) { return s.r, nil }

// Chain composes strategies into an ordered fallback sequence. An empty
// Chain may be extended at the front with Prepend to inject a user's
// override ahead of default discovery.
type Chain struct {
	strategies []Strategy
}

// NewChain builds a Chain trying each strategy in order.
func NewChain(strategies ...Strategy) Chain {
	return Chain{strategies: append([]Strategy(nil), strategies...)}
}

// Prepend returns a new Chain with s tried before every existing
// sub-strategy.
func (c Chain) Prepend(s Strategy) Chain {
	return Chain{strategies: append([]Strategy{s}, c.strategies...)}
}

func (c Chain) Runtimes(ctx context.Context) ([]Runtime, error) {
	var all []Runtime
	for _, s := range c.strategies {
		rs, err := s.Runtimes(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, rs...)
	}
	return dedupeByVersion(all), nil
}

func (c Chain) Select(ctx context.Context, constraint Constraint) (Runtime, error) {
	for _, s := range c.strategies {
		rs, err := s.Runtimes(ctx)
		if err != nil {
			return Runtime{}, err
		}
		if r, ok := highestVersion(filterByConstraint(rs, constraint)); ok {
			return r, nil
		}
	}
	return Runtime{}, ErrNoRuntime
}

func (c Chain) Fallback(ctx context.Context) (Runtime, error) {
	for _, s := range c.strategies {
		rs, err := s.Runtimes(ctx)
		if err != nil {
			return Runtime{}, err
		}
		if r, ok := highestVersion(rs); ok {
			return r, nil
		}
	}
	return Runtime{}, ErrNoRuntime
}

// selectFromRuntimes implements Select for a leaf strategy in terms of its
// own Runtimes().
func selectFromRuntimes(ctx context.Context, s Strategy, c Constraint) (Runtime, error) {
	rs, err := s.Runtimes(ctx)
	if err != nil {
		return Runtime{}, err
	}
	if r, ok := highestVersion(filterByConstraint(rs, c)); ok {
		return r, nil
	}
	return Runtime{}, ErrNoRuntime
}

// fallbackFromRuntimes implements Fallback for a leaf strategy in terms of
// its own Runtimes().
func fallbackFromRuntimes(ctx context.Context, s Strategy) (Runtime, error) {
	rs, err := s.Runtimes(ctx)
	if err != nil {
		return Runtime{}, err
	}
	if r, ok := highestVersion(rs); ok {
		return r, nil
	}
	return Runtime{}, ErrNoRuntime
}
