package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWALCopyFreshTarget(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "000000010000000000000001")
	dst := filepath.Join(dir, "archive", "000000010000000000000001")
	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("wal segment bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WALCopy(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "wal segment bytes" {
		t.Errorf("copied content = %q", got)
	}
}

func TestWALCopyIdempotentOnIdenticalRearchive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "seg")
	dst := filepath.Join(dir, "archived", "seg")
	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("segment content"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WALCopy(src, dst); err != nil {
		t.Fatal(err)
	}
	if err := WALCopy(src, dst); err != nil {
		t.Fatalf("re-archiving identical content should succeed, got %v", err)
	}
}

func TestWALCopyFailsOnDivergentRearchive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "seg")
	dst := filepath.Join(dir, "archived", "seg")
	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("original content"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := WALCopy(src, dst); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(src, []byte("different content!!"), 0o600); err != nil {
		t.Fatal(err)
	}
	err := WALCopy(src, dst)
	if !errors.Is(err, ErrWALMismatch) {
		t.Fatalf("expected ErrWALMismatch, got %v", err)
	}

	got, readErr := os.ReadFile(dst)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if string(got) != "original content" {
		t.Error("divergent re-archive must not overwrite the existing target")
	}
}

func TestWALCopyMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := WALCopy(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}
