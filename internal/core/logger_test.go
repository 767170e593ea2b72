package core

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug level", "debug", true, true, true},
		{"info level", "info", false, true, true},
		{"warn level", "warn", false, false, true},
		{"error level", "error", false, false, false},
		{"upper case", "DEBUG", true, true, true},
		{"default level", "", false, false, true},
		{"unknown level", "invalid", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			logger.Info("info message", "key", "value")
			logger.Warn("warn message")
			logger.Error("error message")
			_ = logger.Sync()

			output := buf.String()
			check := func(msg string, want bool) {
				if got := strings.Contains(output, msg); got != want {
					t.Errorf("%q present = %v, want %v; output:\n%s", msg, got, want, output)
				}
			}
			check("debug message", tt.wantDebug)
			check("info message", tt.wantInfo)
			check("warn message", tt.wantWarn)
			check("error message", true)
		})
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", &buf).With("run_id", "RUN-abc")

	logger.Info("state entered", "state", "Chat")
	_ = logger.Sync()

	output := buf.String()
	for _, want := range []string{"state entered", `"run_id": "RUN-abc"`, `"state": "Chat"`} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Error("discarded")
	if logger.Sugared() == nil {
		t.Error("expected a sugared logger")
	}
}

func TestLoggerInterfaceSync(t *testing.T) {
	var buf bytes.Buffer
	var log Logger = NewLogger("info", &buf)

	log.Info("flushed through the interface")
	if err := log.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !strings.Contains(buf.String(), "flushed through the interface") {
		t.Errorf("output missing message: %q", buf.String())
	}
}
