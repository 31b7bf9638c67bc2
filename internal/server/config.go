// Package server implements the GrafDB HTTP server: a JSON REST surface over
// the engine, with auth, structured request logging, Prometheus metrics and
// pprof endpoints.
package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration file structure.
type Config struct {
	// HTTPAddr is the listen address, e.g. ":9091".
	HTTPAddr string `yaml:"http_addr"`

	// AuthToken protects every endpoint except /healthz and /metrics.
	// Empty means no authentication.
	AuthToken string `yaml:"auth_token"`

	// DataDir is the engine's data directory.
	DataDir string `yaml:"data_dir"`

	// AofFilename overrides the default log file name.
	AofFilename string `yaml:"aof_filename"`

	// Persistence batching knobs as duration strings ("100ms", "1s");
	// empty values fall back to engine defaults.
	FlushInterval     string `yaml:"flush_interval"`
	ForceSyncInterval string `yaml:"force_sync_interval"`
	MaxBufferSize     int    `yaml:"max_buffer_size"`
}

// ParseInterval converts a configured duration string, returning zero for an
// empty value so callers can apply their defaults.
func ParseInterval(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// DefaultConfig returns a runnable local configuration.
func DefaultConfig() Config {
	return Config{
		HTTPAddr: ":9091",
		DataDir:  "./data",
	}
}

// LoadConfig reads and parses the YAML configuration at path. Environment
// variables in the file are expanded (so tokens can live outside it), and
// unknown fields are rejected to catch typos. An empty path yields the
// defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}

	expandedData := os.ExpandEnv(string(data))

	decoder := yaml.NewDecoder(strings.NewReader(expandedData))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}
	return config, nil
}
