package backup

import (
	"strings"
	"testing"

	"pgcluster/internal/cluster"
)

func TestDesiredArchiveCommandEmbedsWALDirAndPlaceholders(t *testing.T) {
	desc := Descriptor{Dir: "/var/backups/cluster1"}
	cmd, err := desiredArchiveCommand(desc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(cmd, "walcopy") {
		t.Errorf("expected archive command to invoke walcopy, got %q", cmd)
	}
	if !strings.Contains(cmd, "%p") || !strings.Contains(cmd, "%f") {
		t.Errorf("expected source/destination placeholders, got %q", cmd)
	}
	if !strings.Contains(cmd, desc.WALDir()) {
		t.Errorf("expected archive command to target %s, got %q", desc.WALDir(), cmd)
	}
}

func TestStringSettingReadsStringValue(t *testing.T) {
	s, ok := stringSetting(cluster.StringValue("on"))
	if s != "on" || !ok {
		t.Errorf("got (%q, %v)", s, ok)
	}
}
