package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// walCopyBufferSize bounds the buffer used to stream or compare WAL
// segments. PostgreSQL's default WAL segment is 16 MiB; streaming through
// a fixed-size buffer avoids holding a whole segment in memory regardless
// of how many segments accumulate.
const walCopyBufferSize = 1 << 20 // 1 MiB

// WALCopy implements the WAL-copy sub-operation invoked (as a child
// process, via the archive_command built by desiredArchiveCommand) once
// per WAL segment PostgreSQL wants archived. If dst doesn't exist yet, src
// is streamed to it and fsynced. If dst already exists — which happens
// when PostgreSQL retries an archive_command that failed partway, or after
// a crash — the two files are compared byte-for-byte instead of
// overwritten: identical content is treated as a successful re-archive,
// differing content is an error, since overwriting an already-archived
// segment would corrupt anything restored from it.
func WALCopy(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("backup: opening WAL segment %s: %w", src, err)
	}
	defer source.Close()

	target, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return compareWAL(source, dst)
		}
		return fmt.Errorf("backup: creating archive target %s: %w", dst, err)
	}

	if _, err := io.CopyBuffer(target, source, make([]byte, walCopyBufferSize)); err != nil {
		target.Close()
		os.Remove(dst)
		return fmt.Errorf("backup: copying %s to %s: %w", src, dst, err)
	}
	if err := target.Sync(); err != nil {
		target.Close()
		return fmt.Errorf("backup: fsync %s: %w", dst, err)
	}
	return target.Close()
}

// compareWAL is invoked once dst is found to already exist: source and the
// existing target must be byte-identical for the re-archive to be
// considered a success.
func compareWAL(source *os.File, dstPath string) error {
	target, err := os.Open(dstPath)
	if err != nil {
		return fmt.Errorf("backup: opening existing archive target %s: %w", dstPath, err)
	}
	defer target.Close()

	sBuf := make([]byte, walCopyBufferSize)
	tBuf := make([]byte, walCopyBufferSize)
	for {
		sn, serr := io.ReadFull(source, sBuf)
		tn, terr := io.ReadFull(target, tBuf)
		sDone := errors.Is(serr, io.EOF) || errors.Is(serr, io.ErrUnexpectedEOF)
		tDone := errors.Is(terr, io.EOF) || errors.Is(terr, io.ErrUnexpectedEOF)

		if sn != tn || string(sBuf[:sn]) != string(tBuf[:tn]) || sDone != tDone {
			return ErrWALMismatch
		}
		if sDone {
			return nil
		}
		if serr != nil {
			return fmt.Errorf("backup: reading %s: %w", source.Name(), serr)
		}
		if terr != nil {
			return fmt.Errorf("backup: reading %s: %w", dstPath, terr)
		}
	}
}
