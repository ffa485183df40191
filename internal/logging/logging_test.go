package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewJSONFormatterAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "debug", Format: "json", Output: &buf})

	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}

	logger.WithField("username", "alice").Debug("token generated")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "token generated" || entry["username"] != "alice" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "chatty", Output: &buf})

	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", logger.GetLevel())
	}
	if !strings.Contains(buf.String(), "invalid log level") {
		t.Fatalf("expected warning about invalid level, got %q", buf.String())
	}
}

func TestDiscardDropsEntries(t *testing.T) {
	logger := Discard()
	logger.Error("should not panic or print")
	if logger.IsLevelEnabled(logrus.ErrorLevel) {
		t.Fatal("discard logger must not enable error level")
	}
}
