package restore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrepareRestoreDirCreatesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "restore")
	if err := prepareRestoreDir(dir); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Errorf("mode = %o, want 0700", info.Mode().Perm())
	}
}

func TestPrepareRestoreDirAcceptsEmptyExisting(t *testing.T) {
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := prepareRestoreDir(dir); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Errorf("mode = %o, want 0700", info.Mode().Perm())
	}
}

func TestPrepareRestoreDirRejectsNonEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "PG_VERSION"), []byte("16\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := prepareRestoreDir(dir); err != ErrDestinationNotEmpty {
		t.Errorf("got %v, want ErrDestinationNotEmpty", err)
	}
}

func TestClearDirRemovesEntries(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "000000010000000000000001"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "archive_status"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := clearDir(dir); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected dir to be empty, got %v", entries)
	}
}

func TestClearDirToleratesMissingDir(t *testing.T) {
	if err := clearDir(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Fatal(err)
	}
}

func TestCopyTreeCopiesContentsNotRoot(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "PG_VERSION"), []byte("16\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(src, "base", "1"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "base", "1", "1247"), []byte("data"), 0o600); err != nil {
		t.Fatal(err)
	}

	dst := t.TempDir()
	var lastCopied, lastTotal int64
	err := copyTree(src, dst, func(copied, total int64) {
		lastCopied, lastTotal = copied, total
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dst, "PG_VERSION")); err != nil {
		t.Errorf("PG_VERSION missing in destination: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dst, "base", "1", "1247"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "data" {
		t.Errorf("got %q, want %q", got, "data")
	}
	if lastCopied != lastTotal || lastTotal == 0 {
		t.Errorf("progress callback final values copied=%d total=%d", lastCopied, lastTotal)
	}
}

func TestCopyTreePreservesSymlinks(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "real"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("real", filepath.Join(src, "link")); err != nil {
		t.Fatal(err)
	}

	dst := t.TempDir()
	if err := copyTree(src, dst, nil); err != nil {
		t.Fatal(err)
	}

	target, err := os.Readlink(filepath.Join(dst, "link"))
	if err != nil {
		t.Fatal(err)
	}
	if target != "real" {
		t.Errorf("symlink target = %q, want %q", target, "real")
	}
}

func TestGuidanceForEmptyRoles(t *testing.T) {
	got := guidanceFor(nil, "/var/lib/restored")
	if got == "" {
		t.Fatal("expected non-empty guidance")
	}
}

func TestGuidanceForNamedRole(t *testing.T) {
	got := guidanceFor([]string{"postgres"}, "/var/lib/restored")
	if got == "" {
		t.Fatal("expected non-empty guidance")
	}
}
