package backup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLatestDataDirEmpty(t *testing.T) {
	dir := t.TempDir()
	_, _, ok, err := LatestDataDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected no base backup in a fresh directory")
	}
}

func TestLatestDataDirMissing(t *testing.T) {
	_, _, ok, err := LatestDataDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected ok=false for a missing directory")
	}
}

func TestAllocateNextDataDirMonotonic(t *testing.T) {
	dir := t.TempDir()
	desc := Descriptor{Dir: dir}

	var allocated []string
	for i := 0; i < 3; i++ {
		tmp, err := os.MkdirTemp(dir, ".tmp.data.")
		if err != nil {
			t.Fatal(err)
		}
		final, err := AllocateNextDataDir(desc, tmp)
		if err != nil {
			t.Fatal(err)
		}
		allocated = append(allocated, filepath.Base(final))
	}

	want := []string{"data.0000000001", "data.0000000002", "data.0000000003"}
	for i, name := range want {
		if allocated[i] != name {
			t.Errorf("allocation %d = %s, want %s", i, allocated[i], name)
		}
	}

	names, err := sortedDataDirs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 {
		t.Errorf("expected 3 data dirs, got %v", names)
	}
}

func TestLatestDataDirIgnoresUnrelatedEntries(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "wal"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "data.0000000002"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.0000000003"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	path, n, ok, err := LatestDataDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || n != 2 || filepath.Base(path) != "data.0000000002" {
		t.Errorf("got (%s, %d, %v), want data.0000000002", path, n, ok)
	}
}
