package config

import (
	"os"
	"strconv"
)

// Default values for configuration.
const (
	// DefaultChunkBytes is ~1 GiB, the target chunk size.
	DefaultChunkBytes = int64(1) << 30

	// DefaultFormat is the default table export format.
	DefaultFormat = "tsv"
)

// UnparsedShortName is the reserved identifier for the unparsed-lines
// stream. Parser names must not collide with it.
const UnparsedShortName = "na"

// Environment variable names.
const (
	EnvMaxWorkers = "LTAB_MAX_WORKERS"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ChunkBytes: DefaultChunkBytes,
		Format:     DefaultFormat,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if workers := os.Getenv(EnvMaxWorkers); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			c.MaxWorkers = n
		}
	}
}
