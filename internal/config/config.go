// Package config loads interpreter-wide settings from an optional TOML
// file, mirroring how internal/tqw loads its own TOML-based manifests with
// the same library.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config carries the interpreter settings that cmd/rpal loads with --config.
// cmd/rpalserver does not load a config file; it takes its settings from
// flags and environment variables. The zero value is ready to use: an empty
// Config applies the built-in defaults below, matching the teacher's "zero
// value is ready to use" convention.
type Config struct {
	// MaxSteps bounds the CSE machine's main dispatch loop (a non-spec
	// safety valve — see SPEC_FULL.md's Supplemented Features). Zero means
	// use cse.DefaultMaxSteps.
	MaxSteps int `toml:"max_steps"`

	// CacheDir is decoded from cache_dir, but neither cmd/rpal nor package
	// rpal reads it: .rpalc sidecar files are always written alongside the
	// source file.
	CacheDir string `toml:"cache_dir"`

	// DisableCache turns off the .rpalc sidecar cache entirely.
	DisableCache bool `toml:"disable_cache"`

	Server ServerConfig `toml:"server"`
}

// ServerConfig holds the [server] table of the config file. cmd/rpalserver
// does not read it.
type ServerConfig struct {
	ListenAddress string `toml:"listen_address"`
	JWTSecret     string `toml:"jwt_secret"`
	SQLiteDir     string `toml:"sqlite_dir"`
}

// Load reads a TOML config file at path. A missing file is not an error: it
// returns the zero Config with built-in defaults, exactly as running
// without a world manifest is valid for the teacher's own loader.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}
