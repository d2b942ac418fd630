package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newHandler("production", &buf)).Info("config loaded", "port", "9000")
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("production logs should be JSON: %v (%q)", err, buf.String())
	}
	if line["msg"] != "config loaded" {
		t.Fatalf("msg = %v", line["msg"])
	}

	buf.Reset()
	slog.New(newHandler("development", &buf)).Info("config loaded")
	if !strings.Contains(buf.String(), "msg=\"config loaded\"") {
		t.Fatalf("development logs should be text: %q", buf.String())
	}
}

func TestSetupLoggerUsesAppEnv(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv("APP_ENV", "")
	SetupLogger()
	if _, ok := slog.Default().Handler().(*slog.JSONHandler); !ok {
		t.Fatalf("default APP_ENV should select the JSON handler, got %T", slog.Default().Handler())
	}

	t.Setenv("APP_ENV", "development")
	SetupLogger()
	if _, ok := slog.Default().Handler().(*slog.TextHandler); !ok {
		t.Fatalf("development should select the text handler, got %T", slog.Default().Handler())
	}
}
