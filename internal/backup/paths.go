package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"pgcluster/internal/filelock"
)

// Descriptor names the two directories a backup destination is made of.
type Descriptor struct {
	Dir string // backup_dir
}

// WALDir is where archived WAL segments live.
func (d Descriptor) WALDir() string { return filepath.Join(d.Dir, "wal") }

// LockPath is the coordinating lock file serializing data.N allocation.
func (d Descriptor) LockPath() string { return filepath.Join(d.Dir, ".lock") }

var dataDirPattern = regexp.MustCompile(`^data\.(\d{10})$`)

// LatestDataDir returns the highest-numbered data.NNNNNNNNNN entry directly
// under dir, if any.
func LatestDataDir(dir string) (path string, n int, ok bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", 0, false, nil
		}
		return "", 0, false, fmt.Errorf("backup: listing %s: %w", dir, err)
	}

	best := -1
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := dataDirPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		num, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			continue
		}
		if num > best {
			best = num
		}
	}
	if best < 0 {
		return "", 0, false, nil
	}
	return filepath.Join(dir, formatDataDirName(best)), best, true, nil
}

func formatDataDirName(n int) string {
	return fmt.Sprintf("data.%010d", n)
}

// AllocateNextDataDir atomically renames tmpDir to the next data.N slot
// under a backup directory, serialized by the descriptor's coordinating
// lock file so concurrent backups into the same destination get distinct,
// monotonically increasing numbers.
func AllocateNextDataDir(desc Descriptor, tmpDir string) (string, error) {
	lock, err := filelock.Open(desc.LockPath())
	if err != nil {
		return "", err
	}
	locked, err := lock.LockExclusive()
	if err != nil {
		return "", err
	}
	defer func() {
		if unlocked, uerr := locked.Unlock(); uerr == nil {
			unlocked.Close()
		}
	}()

	_, n, ok, err := LatestDataDir(desc.Dir)
	if err != nil {
		return "", err
	}
	next := 1
	if ok {
		next = n + 1
	}
	finalPath := filepath.Join(desc.Dir, formatDataDirName(next))
	if err := os.Rename(tmpDir, finalPath); err != nil {
		return "", fmt.Errorf("backup: renaming %s to %s: %w", tmpDir, finalPath, err)
	}
	return finalPath, nil
}

// sortedDataDirs is used by tests to assert on monotonic allocation order.
func sortedDataDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && dataDirPattern.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
