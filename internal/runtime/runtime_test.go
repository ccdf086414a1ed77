package runtime

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	pgversion "pgcluster/internal/version"
)

// writeFakePgCtl creates an executable shell script named pg_ctl in a fresh
// bindir under dir that prints a fixed "pg_ctl --version" response.
func writeFakePgCtl(t *testing.T, dir, version string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake pg_ctl script is a shell script")
	}
	bindir := filepath.Join(dir, version)
	if err := os.MkdirAll(bindir, 0o755); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\necho 'pg_ctl (PostgreSQL) " + version + "'\n"
	path := filepath.Join(bindir, "pg_ctl")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return bindir
}

func TestProbeAndFromBinDir(t *testing.T) {
	dir := t.TempDir()
	bindir := writeFakePgCtl(t, dir, "14.2")

	s := FromBinDir(bindir)
	rs, err := s.Runtimes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 1 || rs[0].Version.Major() != 14 {
		t.Fatalf("got %+v", rs)
	}
}

func TestFromGlobDedup(t *testing.T) {
	dir := t.TempDir()
	writeFakePgCtl(t, dir, "9.6.17")
	bindir14 := writeFakePgCtl(t, dir, "14.2")

	// A second bindir reporting the same version must be collapsed.
	dup := filepath.Join(dir, "copy-of-14.2")
	if err := os.MkdirAll(dup, 0o755); err != nil {
		t.Fatal(err)
	}
	script, err := os.ReadFile(filepath.Join(bindir14, "pg_ctl"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dup, "pg_ctl"), script, 0o755); err != nil {
		t.Fatal(err)
	}

	s := FromGlob(filepath.Join(dir, "*"))
	rs, err := s.Runtimes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 2 {
		t.Fatalf("expected 2 distinct runtimes, got %+v", rs)
	}
}

func TestChainSelectFallback(t *testing.T) {
	dir := t.TempDir()
	writeFakePgCtl(t, dir, "9.6.17")
	writeFakePgCtl(t, dir, "14.2")

	chain := NewChain(FromGlob(filepath.Join(dir, "*")))

	pv, err := pgversion.ParsePartial("14")
	if err != nil {
		t.Fatal(err)
	}
	r, err := chain.Select(context.Background(), Version(pv))
	if err != nil {
		t.Fatal(err)
	}
	if r.Version.Major() != 14 {
		t.Fatalf("selected %+v, want major 14", r)
	}

	fb, err := chain.Fallback(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if fb.Version.Major() != 14 {
		t.Fatalf("fallback %+v, want highest version (14)", fb)
	}
}

func TestChainSelectNoMatch(t *testing.T) {
	dir := t.TempDir()
	writeFakePgCtl(t, dir, "9.6.17")

	chain := NewChain(FromGlob(filepath.Join(dir, "*")))
	pv, _ := pgversion.ParsePartial("14")
	if _, err := chain.Select(context.Background(), Version(pv)); err == nil {
		t.Error("expected ErrNoRuntime")
	}
}

func TestConstraintAlgebra(t *testing.T) {
	r := Runtime{BinDir: "/opt/pg/14/bin"}
	v14, _ := pgversion.Parse("14.2")
	r.Version = v14

	pv14, _ := pgversion.ParsePartial("14")
	pv15, _ := pgversion.ParsePartial("15")

	c := All(Version(pv14), BinDirGlob("/opt/pg/*/bin"))
	if !c.Matches(r) {
		t.Error("All(matching, matching) should match")
	}

	c2 := Any(Version(pv15), Version(pv14))
	if !c2.Matches(r) {
		t.Error("Any should match when one side matches")
	}

	if Not(Version(pv14)).Matches(r) {
		t.Error("Not(matching) should not match")
	}
	if !Anything().Matches(r) {
		t.Error("Anything should always match")
	}
	if Nothing().Matches(r) {
		t.Error("Nothing should never match")
	}
}
