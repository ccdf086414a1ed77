package cluster

import (
	"fmt"
	"net/url"
	"unicode/utf8"
)

// environment builds the environment variables a child process or
// connection needs to reach this cluster over its Unix socket: PGDATA and
// PGHOST both point at datadir (PGHOST pointing at a directory, rather
// than a hostname, is how libpq is told to use a Unix socket), PGDATABASE
// selects the target database, and DATABASE_URL carries the same
// information as a URL when the path can be represented in one (i.e. is
// valid UTF-8 — libpq itself has no such restriction, but URLs do).
func (c *Cluster) environment(database string) []string {
	if database == "" {
		database = "postgres"
	}
	env := []string{
		"PGDATA=" + c.DataDir,
		"PGHOST=" + c.DataDir,
		"PGDATABASE=" + database,
	}
	if dsn, ok := c.databaseURL(database); ok {
		env = append(env, "DATABASE_URL="+dsn)
	}
	return env
}

// databaseURL renders a postgres:// URL selecting the Unix socket in
// datadir, if datadir is representable in a URL (i.e. valid UTF-8).
func (c *Cluster) databaseURL(database string) (string, bool) {
	if !utf8.ValidString(c.DataDir) {
		return "", false
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     "",
		Path:     "/" + database,
		RawQuery: url.Values{"host": {c.DataDir}}.Encode(),
	}
	return u.String(), true
}

// connString builds a libpq keyword/value connection string targeting the
// cluster's Unix socket directory.
func (c *Cluster) connString(database string) string {
	if database == "" {
		database = "postgres"
	}
	return fmt.Sprintf("host=%s dbname=%s", c.DataDir, database)
}
