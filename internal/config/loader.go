// Package config loads the directory's environment configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backend selects which document store the process binds to.
type Backend string

const (
	// BackendAuto probes MongoDB and falls back to in-memory collections.
	BackendAuto Backend = "auto"
	// BackendMongo requires MongoDB and fails when it is unreachable.
	BackendMongo Backend = "mongo"
	// BackendSQLite stores collections in a local SQLite file.
	BackendSQLite Backend = "sqlite"
	// BackendMemory uses in-memory collections only.
	BackendMemory Backend = "memory"
)

func (b Backend) valid() bool {
	switch b {
	case BackendAuto, BackendMongo, BackendSQLite, BackendMemory:
		return true
	}
	return false
}

// Config captures environment driven configuration values for the directory.
type Config struct {
	Backend       Backend       `env:"DIRECTORY_STORE_BACKEND" envDefault:"auto"`
	MongoURI      string        `env:"DIRECTORY_MONGO_URI" envDefault:"mongodb://localhost:27017/"`
	MongoDatabase string        `env:"DIRECTORY_MONGO_DATABASE" envDefault:"mergington_high"`
	ProbeTimeout  time.Duration `env:"DIRECTORY_PROBE_TIMEOUT" envDefault:"1s"`
	SQLitePath    string        `env:"DIRECTORY_SQLITE_PATH" envDefault:"directory.db"`
	LogLevel      string        `env:"DIRECTORY_LOG_LEVEL" envDefault:"info"`
	// HTTPAddr is the listen address of the JSON API. Empty disables it.
	HTTPAddr      string        `env:"DIRECTORY_HTTP_ADDR"`
}

// Load parses configuration values from the current process environment.
//
// Unset variables take their defaults. Values that parse but make no sense,
// such as an unknown backend or a non-positive probe timeout, are reported
// together in one error.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Backend = Backend(strings.ToLower(strings.TrimSpace(string(cfg.Backend))))
	cfg.MongoURI = strings.TrimSpace(cfg.MongoURI)
	cfg.MongoDatabase = strings.TrimSpace(cfg.MongoDatabase)
	cfg.SQLitePath = strings.TrimSpace(cfg.SQLitePath)
	cfg.HTTPAddr = strings.TrimSpace(cfg.HTTPAddr)

	invalid := make([]string, 0, 4)
	if !cfg.Backend.valid() {
		invalid = append(invalid, "DIRECTORY_STORE_BACKEND")
	}
	if cfg.ProbeTimeout <= 0 {
		invalid = append(invalid, "DIRECTORY_PROBE_TIMEOUT")
	}
	usesMongo := cfg.Backend == BackendAuto || cfg.Backend == BackendMongo
	if usesMongo && cfg.MongoURI == "" {
		invalid = append(invalid, "DIRECTORY_MONGO_URI")
	}
	if usesMongo && cfg.MongoDatabase == "" {
		invalid = append(invalid, "DIRECTORY_MONGO_DATABASE")
	}
	if cfg.Backend == BackendSQLite && cfg.SQLitePath == "" {
		invalid = append(invalid, "DIRECTORY_SQLITE_PATH")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}
