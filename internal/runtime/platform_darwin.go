//go:build darwin

package runtime

// platformGlobs lists the filesystem glob patterns under which Homebrew
// installs versioned PostgreSQL binaries on macOS, across both the Intel
// and Apple Silicon cellar locations.
func platformGlobs() []string {
	return []string{
		"/usr/local/Cellar/postgresql@*/*/bin",
		"/opt/homebrew/Cellar/postgresql@*/*/bin",
	}
}
