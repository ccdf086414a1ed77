package filelock

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// namespaceUUID is a fixed, arbitrary UUID used as the namespace for
// deriving per-cluster lock file names. It must never change: doing so
// would relocate every existing cluster's lock file.
var namespaceUUID = uuid.MustParse("c83d1e0a-6a0b-4e6f-9a9d-9f2c8f9e6b1a")

// ClusterLockPath derives the canonical lock file path for a cluster data
// directory. The path is a UUIDv5 derived from the canonical (absolute,
// cleaned) datadir path, so that two processes referring to the same
// cluster by different relative paths still agree on one lock file — and
// the lock file lives outside datadir, so it is never disturbed by
// operations (like destroy) that remove the data directory wholesale.
func ClusterLockPath(datadir string) (string, error) {
	abs, err := filepath.Abs(datadir)
	if err != nil {
		return "", err
	}
	id := uuid.NewSHA1(namespaceUUID, []byte(filepath.Clean(abs)))
	return filepath.Join(os.TempDir(), ".pgdo."+id.String()), nil
}
