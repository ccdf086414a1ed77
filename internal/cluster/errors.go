package cluster

import "errors"

// ErrUnsupportedVersion is returned when pg_ctl status exits with a code
// this package doesn't know how to interpret for the cluster's PostgreSQL
// major version.
var ErrUnsupportedVersion = errors.New("cluster: unsupported version for status interpretation")

// ErrNoSuperuser is returned when "postgres --single" reports no role with
// both rolsuper and rolcanlogin.
var ErrNoSuperuser = errors.New("cluster: no superuser role found")

// ErrNotCreated describes a missing data directory. No operation in this
// package returns it: Create and Start create a missing cluster, and
// Running, Stop and Destroy treat it as stopped.
var ErrNotCreated = errors.New("cluster: data directory does not exist")
