package logger

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
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew_JSONFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(&buf, Options{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()

	log.Info("hidden")
	log.Warn("shown", "journey_id", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["msg"] != "shown" || rec["journey_id"] != float64(3) {
		t.Errorf("record = %v", rec)
	}
}

func TestNew_FanoutToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "showup.log")
	log, closer, err := New(&buf, Options{Level: "info", Format: "text", File: path})
	if err != nil {
		t.Fatal(err)
	}
	log.Info("journey created", "journey_id", 0)
	closer.Close()

	if !strings.Contains(buf.String(), "journey created") {
		t.Errorf("stream output = %q", buf.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"journey created"`) {
		t.Errorf("file output = %q", data)
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, _, err := New(&bytes.Buffer{}, Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}
