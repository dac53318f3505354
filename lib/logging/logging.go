// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the slog logger shared by ndnfs binaries.
//
// Records go to stderr, as text when stderr is a terminal and as JSON
// otherwise. When a log file is configured the same records are also
// appended to it as JSON.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Config selects the level and destinations of a logger.
type Config struct {
	// Level is one of debug, info, warn or error. Empty means info.
	Level string

	// File, when set, receives a JSON copy of every record. The file
	// is created if missing and appended to otherwise.
	File string

	// Stderr overrides the console destination. Nil means os.Stderr.
	Stderr io.Writer
}

// ParseLevel parses a level name.
func ParseLevel(text string) (slog.Level, error) {
	switch strings.ToLower(text) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", text)
	}
}

// New returns a logger for cfg and a function that closes the log
// file, if any.
func New(cfg Config) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	options := &slog.HandlerOptions{Level: level}

	console := cfg.Stderr
	if console == nil {
		console = os.Stderr
	}
	var handler slog.Handler
	if file, ok := console.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		handler = slog.NewTextHandler(console, options)
	} else {
		handler = slog.NewJSONHandler(console, options)
	}

	if cfg.File == "" {
		return slog.New(handler), func() error { return nil }, nil
	}

	file, err := os.OpenFile(cfg.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: opening %s: %w", cfg.File, err)
	}
	handlers := fanoutHandler{handler, slog.NewJSONHandler(file, options)}
	return slog.New(handlers), file.Close, nil
}

// fanoutHandler sends each record to every handler that accepts its
// level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
