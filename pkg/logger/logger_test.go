package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wonny/tokenscout/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		wantLevel zerolog.Level
	}{
		{
			name:      "debug level",
			cfg:       &config.Config{Env: "development", LogLevel: "debug", LogFormat: "json"},
			wantLevel: zerolog.DebugLevel,
		},
		{
			name:      "warn level",
			cfg:       &config.Config{Env: "staging", LogLevel: "warn", LogFormat: "json"},
			wantLevel: zerolog.WarnLevel,
		},
		{
			name:      "unknown level falls back to info",
			cfg:       &config.Config{Env: "production", LogLevel: "chatty", LogFormat: "json"},
			wantLevel: zerolog.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.cfg)
			if logger == nil {
				t.Fatal("Expected logger to be created")
			}

			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("Expected global level %v, got %v", tt.wantLevel, zerolog.GlobalLevel())
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	logger := NewWithWriter(&buf)
	logger.WithFields(map[string]interface{}{
		"source":     "dexscreener",
		"candidates": 12,
	}).Info("discovery completed")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}

	if logEntry["source"] != "dexscreener" {
		t.Errorf("Expected source dexscreener, got %v", logEntry["source"])
	}

	if logEntry["candidates"] != float64(12) {
		t.Errorf("Expected candidates 12, got %v", logEntry["candidates"])
	}

	if logEntry["message"] != "discovery completed" {
		t.Errorf("Expected message 'discovery completed', got %v", logEntry["message"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	logger := NewWithWriter(&buf)
	logger.WithError(errors.New("provider timeout")).Warn("adapter failed")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}

	if logEntry["error"] != "provider timeout" {
		t.Errorf("Expected error 'provider timeout', got %v", logEntry["error"])
	}

	if logEntry["level"] != "warn" {
		t.Errorf("Expected level warn, got %v", logEntry["level"])
	}
}

func TestNewNop(t *testing.T) {
	// Must not panic or write anywhere
	NewNop().WithField("k", "v").Info("ignored")
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.log")

	logger := New(&config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "json",
		LogFile:   path,
	})
	logger.Info("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	if !strings.Contains(string(data), "written to file") {
		t.Errorf("Expected file to contain message, got: %s", string(data))
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	NewWithWriter(&buf).WithComponent("alert_bridge").Debug("connected")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}

	if logEntry["component"] != "alert_bridge" {
		t.Errorf("Expected component alert_bridge, got %v", logEntry["component"])
	}
}
