package cluster

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pgcluster/internal/state"
)

// SQLSTATE codes this package treats specially (spec §6).
const (
	sqlstateDuplicateDatabase = "42P04"
	sqlstateUndefinedDatabase = "3D000"
	sqlstateUndefinedObject   = "42704"
)

// Connect opens a transient connection to database over the cluster's Unix
// socket.
func (c *Cluster) Connect(ctx context.Context, database string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, c.connString(database))
	if err != nil {
		return nil, fmt.Errorf("cluster: connecting to %s: %w", database, err)
	}
	return conn, nil
}

// withConn runs fn against a transient connection to database, always
// closing the connection afterward.
func (c *Cluster) withConn(ctx context.Context, database string, fn func(*pgx.Conn) error) error {
	conn, err := c.Connect(ctx, database)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)
	return fn(conn)
}

// pgErrorCode extracts the SQLSTATE from err, if it wraps a *pgconn.PgError.
func pgErrorCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	return "", false
}

// CreateDatabase issues CREATE DATABASE, treating "already exists" as
// Unmodified rather than an error.
func (c *Cluster) CreateDatabase(ctx context.Context, name string) (state.State, error) {
	result := state.Modified
	err := c.withConn(ctx, "postgres", func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", quoteIdentifier(name)))
		if err != nil {
			if code, ok := pgErrorCode(err); ok && code == sqlstateDuplicateDatabase {
				result = state.Unmodified
				return nil
			}
			return fmt.Errorf("cluster: createdb %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return state.Unmodified, err
	}
	return result, nil
}

// DropDatabase issues DROP DATABASE, treating "does not exist" as
// Unmodified rather than an error.
func (c *Cluster) DropDatabase(ctx context.Context, name string) (state.State, error) {
	result := state.Modified
	err := c.withConn(ctx, "postgres", func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("DROP DATABASE %s", quoteIdentifier(name)))
		if err != nil {
			if code, ok := pgErrorCode(err); ok && code == sqlstateUndefinedDatabase {
				result = state.Unmodified
				return nil
			}
			return fmt.Errorf("cluster: dropdb %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return state.Unmodified, err
	}
	return result, nil
}

// Databases lists every database in pg_database, ordered by name.
func (c *Cluster) Databases(ctx context.Context) ([]string, error) {
	var names []string
	err := c.withConn(ctx, "postgres", func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, "SELECT datname FROM pg_database ORDER BY datname")
		if err != nil {
			return fmt.Errorf("cluster: listing databases: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// GetParameter reads a single configuration parameter's current value and
// unit from pg_settings.
func (c *Cluster) GetParameter(ctx context.Context, name string) (ConfigValue, error) {
	var value ConfigValue
	err := c.withConn(ctx, "postgres", func(conn *pgx.Conn) error {
		var raw, unit string
		err := conn.QueryRow(ctx,
			"SELECT setting, COALESCE(unit, '') FROM pg_settings WHERE name = $1",
			name,
		).Scan(&raw, &unit)
		if err != nil {
			return fmt.Errorf("cluster: reading parameter %s: %w", name, err)
		}
		value = ParseSetting(raw, unit)
		return nil
	})
	return value, err
}

// SetParameter issues ALTER SYSTEM SET and reloads configuration so the
// change takes effect for parameters that don't require a restart.
// restartNeeded mirrors pg_settings.pending_restart after the change.
func (c *Cluster) SetParameter(ctx context.Context, name string, value ConfigValue) (restartNeeded bool, err error) {
	err = c.withConn(ctx, "postgres", func(conn *pgx.Conn) error {
		stmt := fmt.Sprintf("ALTER SYSTEM SET %s = %s", quoteIdentifier(name), value.Literal())
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("cluster: setting parameter %s: %w", name, err)
		}
		if _, err := conn.Exec(ctx, "SELECT pg_reload_conf()"); err != nil {
			return fmt.Errorf("cluster: reloading configuration: %w", err)
		}
		return conn.QueryRow(ctx,
			"SELECT pending_restart FROM pg_settings WHERE name = $1", name,
		).Scan(&restartNeeded)
	})
	return restartNeeded, err
}

// ResetParameter issues ALTER SYSTEM RESET and reloads configuration.
func (c *Cluster) ResetParameter(ctx context.Context, name string) error {
	return c.withConn(ctx, "postgres", func(conn *pgx.Conn) error {
		stmt := fmt.Sprintf("ALTER SYSTEM RESET %s", quoteIdentifier(name))
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("cluster: resetting parameter %s: %w", name, err)
		}
		_, err := conn.Exec(ctx, "SELECT pg_reload_conf()")
		return err
	})
}

// IsUndefinedObject reports whether err is a SQLSTATE 42704 (undefined
// object) error — used by the restore protocol to tolerate resetting
// archive_library on PostgreSQL versions that don't know the parameter.
func IsUndefinedObject(err error) bool {
	code, ok := pgErrorCode(err)
	return ok && code == sqlstateUndefinedObject
}
