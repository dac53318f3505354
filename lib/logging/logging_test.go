// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		text string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, test := range tests {
		got, err := ParseLevel(test.text)
		if err != nil || got != test.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", test.text, got, err, test.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel accepted an unknown level")
	}
}

func TestConsoleLevelFilter(t *testing.T) {
	var console bytes.Buffer
	logger, closeLog, err := New(Config{Level: "warn", Stderr: &console})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closeLog()

	logger.Info("hidden")
	logger.Warn("shown", "path", "/doc.txt")

	output := console.String()
	if strings.Contains(output, "hidden") {
		t.Error("info record passed a warn logger")
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &record); err != nil {
		t.Fatalf("console output is not one JSON record: %q", output)
	}
	if record["msg"] != "shown" || record["path"] != "/doc.txt" {
		t.Errorf("record = %v", record)
	}
}

func TestLogFileReceivesCopy(t *testing.T) {
	var console bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "ndnfs.log")
	logger, closeLog, err := New(Config{Level: "debug", File: logPath, Stderr: &console})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.With("component", "face").Debug("interest dropped", "name", "/a")
	if err := closeLog(); err != nil {
		t.Fatalf("closing log: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, output := range []string{console.String(), string(content)} {
		if !strings.Contains(output, `"component":"face"`) || !strings.Contains(output, "interest dropped") {
			t.Errorf("output missing record: %q", output)
		}
	}
}

func TestLogFileUnwritable(t *testing.T) {
	_, _, err := New(Config{File: filepath.Join(t.TempDir(), "missing", "ndnfs.log"), Stderr: &bytes.Buffer{}})
	if err == nil {
		t.Error("New succeeded with a log file in a missing directory")
	}
}
