// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/spf13/pflag"
)

// Flag names registered by AddFlags.
const (
	FlagConfig   = "config"
	FlagPrefix   = "prefix"
	FlagDatabase = "db"
	FlagRoot     = "root"
	FlagKeyFile  = "key"
	FlagSocket   = "socket"
	FlagLogLevel = "log-level"
	FlagLogFile  = "log-file"
)

// AddFlags registers the shared flags on flags. The -p, -d and -f
// shorthands select the prefix, database and content root.
func AddFlags(flags *pflag.FlagSet) {
	defaults := Default()
	flags.String(FlagConfig, "", "configuration file (default $"+EnvironmentVariable+")")
	flags.StringP(FlagPrefix, "p", defaults.Prefix, "name prefix to serve")
	flags.StringP(FlagDatabase, "d", defaults.Paths.Database, "metadata database")
	flags.StringP(FlagRoot, "f", defaults.Paths.Root, "directory holding file contents")
	flags.String(FlagKeyFile, defaults.Paths.KeyFile, "signing key file")
	flags.String(FlagSocket, defaults.Paths.Socket, "face socket")
	flags.String(FlagLogLevel, defaults.Log.Level, "log level: debug, info, warn or error")
	flags.String(FlagLogFile, "", "append JSON log records to this file")
}

// FromFlags loads the file named by --config (or NDNFS_CONFIG), applies
// every flag the user set explicitly and validates the result.
func FromFlags(flags *pflag.FlagSet) (*Config, error) {
	path, _ := flags.GetString(FlagConfig)
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyFlags(flags)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFlags overrides fields with the flags that were set explicitly.
// Flags that were not registered are ignored.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) {
	targets := map[string]*string{
		FlagPrefix:   &c.Prefix,
		FlagDatabase: &c.Paths.Database,
		FlagRoot:     &c.Paths.Root,
		FlagKeyFile:  &c.Paths.KeyFile,
		FlagSocket:   &c.Paths.Socket,
		FlagLogLevel: &c.Log.Level,
		FlagLogFile:  &c.Log.File,
	}
	for flagName, target := range targets {
		if flags.Lookup(flagName) == nil || !flags.Changed(flagName) {
			continue
		}
		if value, err := flags.GetString(flagName); err == nil {
			*target = value
		}
	}
}
