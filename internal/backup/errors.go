// Package backup implements the backup protocol: reconfiguring a running
// cluster's WAL archiving, taking a pg_basebackup snapshot into a
// monotonically numbered directory, and the archive_command child process
// that copies individual WAL segments into the archive.
package backup

import "errors"

// ErrArchiveLibrarySet is returned when the live server has archive_library
// set to a non-empty value: it would take priority over archive_command
// and silently defeat this tool's archiving, so backup refuses to proceed.
var ErrArchiveLibrarySet = errors.New("backup: archive_library is set; it would override archive_command")

// ErrArchiveCommandConflict is returned when archive_command is already set
// to something other than this tool's own command or an empty/disabled
// sentinel — overwriting it could silently break someone else's archiving.
var ErrArchiveCommandConflict = errors.New("backup: archive_command is already set to something else")

// ErrRestartRequiresExclusive is returned when configuring archiving
// requires a restart but the caller holds only a shared lock.
var ErrRestartRequiresExclusive = errors.New("backup: configuration change requires a restart; re-run holding an exclusive lock")

// ErrNoBaseBackup is returned when no data.NNNNNNNNNN directory exists
// under a backup directory that a restore was asked to read from.
var ErrNoBaseBackup = errors.New("backup: no base backup found")

// ErrWALMismatch is returned by WALCopy when the archive destination
// already exists and its content differs from the source: re-archiving
// the same segment is only idempotent when the bytes match.
var ErrWALMismatch = errors.New("backup: archived WAL segment differs from source")
