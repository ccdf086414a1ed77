package cluster

import (
	"context"
	"errors"
	"os/exec"

	"pgcluster/internal/version"
)

// RunningStatus is the three-valued result of asking pg_ctl whether a
// cluster is running.
type RunningStatus int

const (
	Stopped RunningStatus = iota
	Running
	Unknown
)

// Running asks pg_ctl for the cluster's status and maps its exit code to a
// RunningStatus. The exit code meanings differ across PostgreSQL major
// versions (see spec §4.4); Unknown results in ErrUnsupportedVersion.
func (c *Cluster) Running(ctx context.Context) (RunningStatus, error) {
	exists, err := c.Exists()
	if err != nil {
		return Unknown, err
	}
	if !exists {
		return Stopped, nil
	}

	r, err := c.resolveRuntime(ctx)
	if err != nil {
		return Unknown, err
	}

	cmd := c.command(ctx, r, r.Path("pg_ctl"), "status", "-D", c.DataDir)
	runErr := cmd.Run()

	code := 0
	var exitErr *exec.ExitError
	if runErr != nil {
		if !errors.As(runErr, &exitErr) {
			return Unknown, runErr
		}
		code = exitErr.ExitCode()
	}

	status, ok := interpretStatusCode(r.Version, code, exists)
	if !ok {
		return Unknown, ErrUnsupportedVersion
	}
	return status, nil
}

// interpretStatusCode implements the per-major-version exit code mapping
// from spec §4.4.
func interpretStatusCode(v version.Version, code int, datadirPresent bool) (RunningStatus, bool) {
	if v.IsPre10() {
		point, _, _ := v.Pre10Parts()
		switch {
		case v.Major() == 9 && point >= 4:
			return interpretPost94(code, datadirPresent)
		case v.Major() == 9 && (point == 2 || point == 3):
			switch code {
			case 0:
				return Running, true
			case 3:
				return Stopped, true
			default:
				return Unknown, false
			}
		case v.Major() == 9 && (point == 0 || point == 1):
			switch code {
			case 0:
				return Running, true
			case 1:
				return Stopped, true
			default:
				return Unknown, false
			}
		default:
			return Unknown, false
		}
	}
	return interpretPost94(code, datadirPresent)
}

// IsRunning collapses Running into a boolean, for callers (notably the
// coordination package) that only care whether the cluster is up. An
// Unknown status is reported as an error rather than silently folded into
// either boolean value.
func (c *Cluster) IsRunning(ctx context.Context) (bool, error) {
	status, err := c.Running(ctx)
	if err != nil {
		return false, err
	}
	if status == Unknown {
		return false, ErrUnsupportedVersion
	}
	return status == Running, nil
}

// interpretPost94 covers both "post-10" and "9.4 through 9.6": exit codes
// 0/3/4 with the same meaning in both.
func interpretPost94(code int, datadirPresent bool) (RunningStatus, bool) {
	switch code {
	case 0:
		return Running, true
	case 3:
		return Stopped, true
	case 4:
		if !datadirPresent {
			return Stopped, true
		}
		return Unknown, false
	default:
		return Unknown, false
	}
}
