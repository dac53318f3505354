// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/remap/ndnfs-port/lib/compress"
	"github.com/remap/ndnfs-port/lib/logging"
	"github.com/remap/ndnfs-port/lib/name"
)

// EnvironmentVariable names the configuration file when --config is
// not given.
const EnvironmentVariable = "NDNFS_CONFIG"

// Config is the configuration shared by the ndnfs binaries.
type Config struct {
	// Prefix is the name prefix the tree is served under, in URI form.
	Prefix string `yaml:"prefix" json:"prefix"`

	// Paths configures file locations.
	Paths PathsConfig `yaml:"paths" json:"paths"`

	// Log configures the structured logger.
	Log LogConfig `yaml:"log" json:"log"`

	// Face configures the interest transport.
	Face FaceConfig `yaml:"face" json:"face"`

	// Mount configures the FUSE adapter.
	Mount MountConfig `yaml:"mount" json:"mount"`
}

// PathsConfig holds file and directory locations.
type PathsConfig struct {
	// Root is the directory holding the real file contents.
	Root string `yaml:"root" json:"root"`

	// Database is the SQLite metadata database.
	Database string `yaml:"database" json:"database"`

	// KeyFile holds the signing secret. It is generated on first use;
	// the public key is written next to it with a .pub suffix.
	KeyFile string `yaml:"key_file" json:"key_file"`

	// Socket is the Unix socket the face server listens on.
	Socket string `yaml:"socket" json:"socket"`

	// MimeTypes is an optional mime.types file extending the built-in
	// extension table.
	MimeTypes string `yaml:"mime_types,omitempty" json:"mime_types,omitempty"`
}

// LogConfig selects the log level and an optional log file.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
}

// FaceConfig holds requester-side transport settings.
type FaceConfig struct {
	// Compression is the algorithm requested for response frames:
	// none, lz4, zstd or auto.
	Compression string `yaml:"compression" json:"compression"`

	// Lifetime is the interest lifetime as a Go duration string.
	Lifetime string `yaml:"lifetime" json:"lifetime"`
}

// MountConfig holds FUSE adapter settings.
type MountConfig struct {
	// Point is the directory the tree is mounted on.
	Point string `yaml:"point" json:"point"`

	// AllowOther lets users other than the mounting user access the
	// mount.
	AllowOther bool `yaml:"allow_other" json:"allow_other"`

	// Debug logs every FUSE operation.
	Debug bool `yaml:"debug" json:"debug"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Prefix: "/ndn/broadcast/ndnfs",
		Paths: PathsConfig{
			Root:     "/tmp/ndnfs",
			Database: "/tmp/ndnfs.db",
			KeyFile:  "/tmp/ndnfs.key",
			Socket:   "/tmp/ndnfs.sock",
		},
		Log: LogConfig{
			Level: "info",
		},
		Face: FaceConfig{
			Compression: "auto",
			Lifetime:    "4s",
		},
	}
}

// Load loads the file at path. An empty path falls back to the
// NDNFS_CONFIG environment variable, and with neither set the
// defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvironmentVariable)
	}
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path over the defaults and expands
// ${HOME}, ${NDNFS_ROOT} and other ${VAR} references in paths.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["NDNFS_ROOT"] = c.Paths.Root

	c.Paths.Database = expandVars(c.Paths.Database, vars)
	c.Paths.KeyFile = expandVars(c.Paths.KeyFile, vars)
	c.Paths.Socket = expandVars(c.Paths.Socket, vars)
	c.Paths.MimeTypes = expandVars(c.Paths.MimeTypes, vars)
	c.Log.File = expandVars(c.Log.File, vars)
	c.Mount.Point = expandVars(c.Mount.Point, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		variable := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[variable]; ok && value != "" {
			return value
		}
		if value := os.Getenv(variable); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Prefix == "" {
		errs = append(errs, fmt.Errorf("prefix is required"))
	} else if _, err := name.FromURI(c.Prefix); err != nil {
		errs = append(errs, fmt.Errorf("prefix: %w", err))
	}

	required := []struct {
		field, value string
	}{
		{"paths.root", c.Paths.Root},
		{"paths.database", c.Paths.Database},
		{"paths.key_file", c.Paths.KeyFile},
		{"paths.socket", c.Paths.Socket},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.field))
		}
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := compress.ParseTag(c.Face.Compression); err != nil {
		errs = append(errs, fmt.Errorf("face.compression: %w", err))
	}
	if lifetime, err := time.ParseDuration(c.Face.Lifetime); err != nil {
		errs = append(errs, fmt.Errorf("face.lifetime: %w", err))
	} else if lifetime <= 0 {
		errs = append(errs, fmt.Errorf("face.lifetime must be positive, got %s", c.Face.Lifetime))
	}

	return errors.Join(errs...)
}

// PrefixName returns the parsed prefix. Call Validate first.
func (c *Config) PrefixName() name.Name {
	prefix, err := name.FromURI(c.Prefix)
	if err != nil {
		return nil
	}
	return prefix
}

// Compression returns the parsed face compression. Call Validate first.
func (c *Config) Compression() compress.Tag {
	tag, _ := compress.ParseTag(c.Face.Compression)
	return tag
}

// Lifetime returns the parsed interest lifetime. Call Validate first.
func (c *Config) Lifetime() time.Duration {
	lifetime, _ := time.ParseDuration(c.Face.Lifetime)
	return lifetime
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, File: c.Log.File}
}

// EnsurePaths creates the content root and the directories holding the
// database, key file and socket.
func (c *Config) EnsurePaths() error {
	directories := []string{
		c.Paths.Root,
		filepath.Dir(c.Paths.Database),
		filepath.Dir(c.Paths.KeyFile),
		filepath.Dir(c.Paths.Socket),
	}
	for _, directory := range directories {
		if directory == "" {
			continue
		}
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return fmt.Errorf("config: creating %s: %w", directory, err)
		}
	}
	return nil
}
