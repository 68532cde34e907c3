// Package config loads adftool's TOML configuration file, creating it from
// an embedded default the first time it's needed.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

//go:embed adftool.toml
var defaultConfigData []byte

// Format holds defaults consumed by the `format` subcommand.
type Format struct {
	Variant string `toml:"variant"`
	Name    string `toml:"name"`
}

// Checksum holds defaults controlling structural-block checksum strictness.
type Checksum struct {
	Strict bool `toml:"strict"`
}

// DMS holds the configured expected per-track unpack length. No command
// reads it; DMS decoding does not consult the configuration.
type DMS struct {
	TrackUnpackLength int `toml:"track_unpack_length"`
}

// Config is the parsed TOML configuration.
type Config struct {
	Format   Format   `toml:"format"`
	Checksum Checksum `toml:"checksum"`
	DMS      DMS      `toml:"dms"`
}

// Default returns the configuration baked into the binary, useful for tests
// and as a fallback when no config file is reachable.
func Default() Config {
	var c Config
	if _, err := toml.Decode(string(defaultConfigData), &c); err != nil {
		// The embedded default is part of the binary; a decode failure here
		// is a build-time bug, not a runtime condition callers can recover from.
		panic(fmt.Sprintf("adftool: embedded default config is invalid: %v", err))
	}
	return c
}

// Path returns the on-disk location of the user's config file, following a
// per-OS convention: AppData on Windows, a dotfile under the home
// directory elsewhere.
func Path() (string, error) {
	var dir string
	var err error

	switch runtime.GOOS {
	case "windows":
		dir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user config directory: %w", err)
		}
		dir = filepath.Join(dir, "adftool")
		return filepath.Join(dir, "config.toml"), nil
	default:
		dir, err = os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine user home directory: %w", err)
		}
		return filepath.Join(dir, ".adftool.toml"), nil
	}
}

// Load reads the user's config file, creating it from the embedded default
// if it doesn't exist yet. Override lets a caller (e.g. `--config PATH`)
// supply an explicit path instead.
func Load(override string) (Config, error) {
	path := override
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return Config{}, err
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return Config{}, fmt.Errorf("failed to create config directory %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, defaultConfigData, 0644); err != nil {
			return Config{}, fmt.Errorf("failed to create default config file at %s: %w", path, err)
		}
	}

	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML config at %s: %w", path, err)
	}

	if c.Format.Variant == "" {
		c.Format.Variant = "FFS"
	}
	if c.Format.Name == "" {
		c.Format.Name = "Empty"
	}
	if c.DMS.TrackUnpackLength == 0 {
		c.DMS.TrackUnpackLength = 11360
	}

	return c, nil
}
