// Package config resolves the handful of environment variables this module
// reads, the way the rest of the corpus centralizes environment lookups
// into a single typed struct instead of scattering os.Getenv calls.
package config

import "os"

// Config holds the environment-derived defaults used when a CLI flag is
// left unset.
type Config struct {
	// DataDir is the default cluster data directory, used when a
	// subcommand isn't given an explicit --datadir.
	DataDir string

	// RuntimePath, if set, is a PostgreSQL installation's bin directory
	// placed at the front of the runtime discovery chain, ahead of $PATH
	// and the platform's install locations. Those are still searched when
	// it has no matching runtime.
	RuntimePath string

	// BinPath, if set, is an extra bin directory to probe, placed in the
	// discovery chain ahead of everything else, RuntimePath included.
	BinPath string

	LogLevel  string
	LogFormat string
}

// New resolves Config from the environment, applying defaults for
// anything unset.
func New() *Config {
	return &Config{
		DataDir:     getEnvString("PGDO_DATA_DIR", defaultDataDir()),
		RuntimePath: getEnvString("PGDO_RUNTIME_PATH", ""),
		BinPath:     getEnvString("PGBIN_PATH", ""),
		LogLevel:    getEnvString("PGDO_LOG_LEVEL", "info"),
		LogFormat:   getEnvString("PGDO_LOG_FORMAT", "text"),
	}
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/pgcluster"
	}
	return os.TempDir() + "/pgcluster"
}

func getEnvString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
