// Package restore implements the restore protocol: replaying the latest
// base backup under a backup destination into a fresh data directory via
// point-in-time recovery, then resetting the archiving settings the
// restored cluster inherited from its source.
package restore

import "errors"

// ErrDestinationNotEmpty is returned when the restore destination
// directory already contains entries.
var ErrDestinationNotEmpty = errors.New("restore: destination directory is not empty")
