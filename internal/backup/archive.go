package backup

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kballard/go-shellquote"

	"pgcluster/internal/cluster"
)

// disabledSentinel is the value PostgreSQL reports for archive_command when
// archiving is off but archive_mode was nonetheless turned on at some
// point (an empty string and "(disabled)" are both treated as "nothing is
// using this yet").
const disabledSentinel = "(disabled)"

// desiredArchiveCommand builds the shell command PostgreSQL should invoke
// for every WAL segment: this binary's own "walcopy" subcommand, fed the
// segment's source path and its destination under the archive's WAL
// directory.
func desiredArchiveCommand(desc Descriptor) (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	dest := filepath.Join(desc.WALDir(), "%f")
	return shellquote.Join(exe, "walcopy", "%p", dest), nil
}

// configureArchiving enforces wal_level, archive_mode, archive_library, and
// archive_command on a live server, per the backup protocol's step 2.
// restartNeeded reports whether wal_level or archive_mode had to change,
// both of which only take effect after a restart.
func configureArchiving(ctx context.Context, c *cluster.Cluster, desc Descriptor) (restartNeeded bool, err error) {
	walLevel, err := c.GetParameter(ctx, "wal_level")
	if err != nil {
		return false, err
	}
	if s := walLevel.String(); s != "replica" && s != "logical" {
		if _, err := c.SetParameter(ctx, "wal_level", cluster.StringValue("replica")); err != nil {
			return false, err
		}
		restartNeeded = true
	}

	archiveMode, err := c.GetParameter(ctx, "archive_mode")
	if err != nil {
		return false, err
	}
	if s := archiveMode.String(); s != "on" && s != "always" {
		if _, err := c.SetParameter(ctx, "archive_mode", cluster.StringValue("on")); err != nil {
			return false, err
		}
		restartNeeded = true
	}

	archiveLibrary, err := c.GetParameter(ctx, "archive_library")
	if err != nil {
		return false, err
	}
	if s, ok := stringSetting(archiveLibrary); ok && s != "" {
		return false, ErrArchiveLibrarySet
	}

	desired, err := desiredArchiveCommand(desc)
	if err != nil {
		return false, err
	}
	archiveCommand, err := c.GetParameter(ctx, "archive_command")
	if err != nil {
		return false, err
	}
	current, _ := stringSetting(archiveCommand)
	switch {
	case current == desired:
		// already configured
	case current == "" || current == disabledSentinel:
		if _, err := c.SetParameter(ctx, "archive_command", cluster.StringValue(desired)); err != nil {
			return false, err
		}
	default:
		return false, ErrArchiveCommandConflict
	}

	return restartNeeded, nil
}

func stringSetting(v cluster.ConfigValue) (string, bool) {
	if v.Kind() != cluster.KindString {
		return v.String(), v.Kind() != cluster.ValueKind(0) || v.String() != ""
	}
	return v.String(), true
}
