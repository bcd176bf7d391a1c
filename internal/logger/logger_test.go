package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dualizor/dualizor/internal/config"
)

func TestNewDefault(t *testing.T) {
	log, err := NewDefault()
	if err != nil {
		t.Fatalf("NewDefault failed: %v", err)
	}
	if log.GetLevel() != LevelInfo {
		t.Errorf("Expected info level, got %s", log.GetLevel())
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "loud", Format: "text"}); err == nil {
		t.Error("Expected error for invalid level")
	}
	if _, err := New(config.LoggingConfig{Level: "info", Format: "xml"}); err == nil {
		t.Error("Expected error for invalid format")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
	}

	for input, want := range cases {
		got, err := parseLevel(input)
		if err != nil {
			t.Errorf("parseLevel(%q) failed: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", input, got, want)
		}
	}

	if _, err := parseLevel("trace"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestEnabled(t *testing.T) {
	log, err := New(config.LoggingConfig{Level: "warn", Format: "text", Output: "stderr"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if log.Enabled(LevelDebug) {
		t.Error("Debug must be disabled at warn level")
	}
	if !log.Enabled(LevelWarn) {
		t.Error("Warn must be enabled at warn level")
	}
	if !log.Enabled(LevelError) {
		t.Error("Error must be enabled at warn level")
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dualizor.log")

	log, err := New(config.LoggingConfig{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	log.Info("dispatch complete", "request", "createOrder")
	if err := log.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "dispatch complete") {
		t.Error("Expected log message in file")
	}
	if !strings.Contains(string(data), "createOrder") {
		t.Error("Expected log attribute in file")
	}
}

func TestWithDoesNotShareCloser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dualizor.log")

	root, err := New(config.LoggingConfig{Level: "info", Format: "text", Output: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer root.Close()

	child := root.With("component", "mediator")
	if err := child.Close(); err != nil {
		t.Fatalf("Child close failed: %v", err)
	}

	// The root file handle must survive closing a child.
	root.Info("still writable")
	if err := root.Close(); err != nil {
		t.Fatalf("Root close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "still writable") {
		t.Error("Expected root logger to remain usable after child close")
	}
}
