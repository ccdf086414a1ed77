package restore

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// copyBufferSize bounds the buffer used to stream each file during the
// tree copy, the same way the WAL-copy sub-operation streams through a
// fixed buffer rather than loading a whole backup in memory.
const copyBufferSize = 1 << 20 // 1 MiB

// ProgressFunc is called after each file is copied, with the cumulative
// bytes copied so far and the total size of the source tree (computed
// once, up front). If the source tree cannot be measured, copyTree fails
// before copying anything, so total is 0 only for a tree with no bytes.
type ProgressFunc func(copied, total int64)

// copyTree recursively copies the contents of srcDir into dstDir, which
// must already exist. Only the contents are copied, not srcDir itself —
// restoring into dstDir should leave dstDir looking like a data directory,
// not like a data directory nested one level down. File modes are
// preserved; symlinks are recreated rather than followed.
func copyTree(srcDir, dstDir string, onProgress ProgressFunc) error {
	total, err := treeSize(srcDir)
	if err != nil {
		return fmt.Errorf("restore: measuring %s: %w", srcDir, err)
	}

	var copied int64
	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		dst := filepath.Join(dstDir, rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("restore: reading symlink %s: %w", path, err)
			}
			return os.Symlink(target, dst)
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(dst, info.Mode().Perm())
		default:
			n, err := copyFile(path, dst, d)
			if err != nil {
				return err
			}
			copied += n
			if onProgress != nil {
				onProgress(copied, total)
			}
			return nil
		}
	})
	if err != nil {
		return fmt.Errorf("restore: copying %s to %s: %w", srcDir, dstDir, err)
	}
	return nil
}

// copyFile streams src to dst, preserving src's permission bits, and
// returns the number of bytes copied.
func copyFile(src, dst string, d fs.DirEntry) (int64, error) {
	info, err := d.Info()
	if err != nil {
		return 0, err
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("restore: opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("restore: creating %s: %w", dst, err)
	}
	defer out.Close()

	n, err := io.CopyBuffer(out, in, make([]byte, copyBufferSize))
	if err != nil {
		return n, fmt.Errorf("restore: copying %s to %s: %w", src, dst, err)
	}
	return n, nil
}

// treeSize sums the size of every regular file under dir.
func treeSize(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}
