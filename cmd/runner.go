package cmd

import (
	"errors"
	"fmt"
	"os/exec"
)

// exitCode maps a completed child process's error to a host process exit
// code, the way a shell does: a clean exit or a nonzero exit status both
// carry their status code through; a process killed by a signal has no
// exit code to report, so that is a hard error instead.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, err
	}

	code := exitErr.ExitCode()
	if code < 0 {
		return 0, fmt.Errorf("command terminated: %w", err)
	}
	if code > 255 {
		return 255, nil
	}
	return code, nil
}
