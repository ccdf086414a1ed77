package runtime

import "pgcluster/internal/version"

// Constraint is a predicate over runtimes, built from a small algebra of
// version and bindir-pattern terms combined with And/Or/Not. The zero value
// is not usable; use one of the constructors below.
type Constraint interface {
	// Matches reports whether r satisfies the constraint.
	Matches(r Runtime) bool
}

// anything always matches; it is the identity for And.
type anything struct{}

func (anything) Matches(Runtime) bool { return true }

// Anything returns a constraint matching every runtime.
func Anything() Constraint { return anything{} }

// nothing never matches; it is the identity for Or.
type nothing struct{}

func (nothing) Matches(Runtime) bool { return false }

// Nothing returns a constraint matching no runtime.
func Nothing() Constraint { return nothing{} }

// versionConstraint matches runtimes compatible with a partial version.
type versionConstraint struct{ pv version.PartialVersion }

// Version returns a constraint matching runtimes whose version is
// compatible with pv (see version.PartialVersion.Compatible).
func Version(pv version.PartialVersion) Constraint { return versionConstraint{pv} }

func (c versionConstraint) Matches(r Runtime) bool { return c.pv.Compatible(r.Version) }

// binDirGlob matches runtimes whose BinDir matches a filepath.Match pattern.
type binDirGlob struct{ pattern string }

// BinDirGlob returns a constraint matching runtimes whose bindir matches
// the given filepath.Match-style pattern.
func BinDirGlob(pattern string) Constraint { return binDirGlob{pattern} }

func (c binDirGlob) Matches(r Runtime) bool {
	ok, err := matchGlob(c.pattern, r.BinDir)
	return err == nil && ok
}

type orConstraint struct{ a, b Constraint }

// Any returns a constraint matching a runtime that satisfies either a or b.
func Any(a, b Constraint) Constraint { return orConstraint{a, b} }

func (c orConstraint) Matches(r Runtime) bool { return c.a.Matches(r) || c.b.Matches(r) }

type allConstraint struct{ a, b Constraint }

// All returns a constraint matching a runtime that satisfies both a and b.
func All(a, b Constraint) Constraint { return allConstraint{a, b} }

func (c allConstraint) Matches(r Runtime) bool { return c.a.Matches(r) && c.b.Matches(r) }

type notConstraint struct{ c Constraint }

// Not negates a constraint.
func Not(c Constraint) Constraint { return notConstraint{c} }

func (c notConstraint) Matches(r Runtime) bool { return !c.c.Matches(r) }

func filterByConstraint(runtimes []Runtime, c Constraint) []Runtime {
	out := make([]Runtime, 0, len(runtimes))
	for _, r := range runtimes {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
