//go:build linux

package runtime

// platformGlobs lists the filesystem glob patterns under which Linux
// distributions conventionally install versioned PostgreSQL binaries.
func platformGlobs() []string {
	return []string{"/usr/lib/postgresql/*/bin"}
}
