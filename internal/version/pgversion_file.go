package version

import (
	"fmt"
	"os"
	"path/filepath"
)

// PGVersionFile is the conventional name of the file PostgreSQL writes at
// the root of a data directory recording its major version.
const PGVersionFile = "PG_VERSION"

// ReadClusterVersion reads and parses the PG_VERSION file under datadir. It
// returns an error wrapping os.ErrNotExist if the cluster has not been
// created.
func ReadClusterVersion(datadir string) (PartialVersion, error) {
	data, err := os.ReadFile(filepath.Join(datadir, PGVersionFile))
	if err != nil {
		return PartialVersion{}, fmt.Errorf("reading %s: %w", PGVersionFile, err)
	}
	pv, err := ParsePartial(string(data))
	if err != nil {
		return PartialVersion{}, fmt.Errorf("parsing %s: %w", PGVersionFile, err)
	}
	return pv, nil
}
