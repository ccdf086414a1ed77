// Package runtime discovers installed PostgreSQL binary directories on the
// host and selects among them by version constraint.
package runtime

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/shlex"

	"pgcluster/internal/version"
)

// Runtime is one discovered set of PostgreSQL executables, identified by
// its binary directory. Equality and deduplication are by Version, not
// BinDir: two installations of the same version are interchangeable.
type Runtime struct {
	BinDir  string
	Version version.Version
}

// Equal reports whether two runtimes have the same version.
func (r Runtime) Equal(other Runtime) bool { return r.Version.Equal(other.Version) }

// Path returns the absolute path to the named executable within the
// runtime's binary directory.
func (r Runtime) Path(executable string) string {
	return filepath.Join(r.BinDir, executable)
}

// probe checks whether bindir contains a usable pg_ctl and, if so, reports
// its version. Any failure (missing executable, non-zero exit, unparseable
// output) is treated as "not a runtime" rather than propagated — discovery
// is best-effort across many candidate directories.
func probe(ctx context.Context, bindir string) (Runtime, bool) {
	pgctl := filepath.Join(bindir, "pg_ctl")
	if st, err := os.Stat(pgctl); err != nil || st.IsDir() {
		return Runtime{}, false
	}

	out, err := exec.CommandContext(ctx, pgctl, "--version").Output()
	if err != nil {
		return Runtime{}, false
	}

	if v, err := version.Parse(string(out)); err == nil {
		return Runtime{BinDir: bindir, Version: v}, true
	}

	// The regex-based parser above handles the common "pg_ctl (PostgreSQL)
	// 14.2" shape directly; fall back to shell-tokenizing the line for
	// oddly quoted or reordered output and retry each token.
	tokens, err := shlex.Split(string(out))
	if err != nil {
		return Runtime{}, false
	}
	for _, tok := range tokens {
		if v, err := version.Parse(tok); err == nil {
			return Runtime{BinDir: bindir, Version: v}, true
		}
	}
	return Runtime{}, false
}

// dedupeByVersion keeps the first occurrence of each distinct version,
// preserving order.
func dedupeByVersion(runtimes []Runtime) []Runtime {
	seen := make(map[version.Version]bool, len(runtimes))
	out := make([]Runtime, 0, len(runtimes))
	for _, r := range runtimes {
		if seen[r.Version] {
			continue
		}
		seen[r.Version] = true
		out = append(out, r)
	}
	return out
}

// highestVersion returns the runtime with the greatest version among
// runtimes. ok is false if runtimes is empty.
func highestVersion(runtimes []Runtime) (Runtime, bool) {
	if len(runtimes) == 0 {
		return Runtime{}, false
	}
	best := runtimes[0]
	for _, r := range runtimes[1:] {
		if best.Version.Less(r.Version) {
			best = r
		}
	}
	return best, true
}
