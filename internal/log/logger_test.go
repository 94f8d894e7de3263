package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/helixml/vodcast/internal/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for i, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var data map[string]any
		if err := json.Unmarshal([]byte(line), &data); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		records = append(records, data)
	}
	return records
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []config.LogFormat{config.LogFormatPretty, config.LogFormatJSON} {
		cfg := config.NewAppConfigWithOptions(config.WithLogLevel("DEBUG"), config.WithLogFormat(format))

		logger := NewLogger(cfg)

		if logger.Slog() == nil {
			t.Fatalf("%s: Slog() should not return nil", format)
		}
		if !logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
			t.Errorf("%s: DEBUG level should be enabled", format)
		}
	}
}

func TestLogger_JSONLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "WARN").Slog()

	logger.Debug("range resolved")
	logger.Info("stream started")
	logger.Warn("client went away")
	logger.Error("seek failed")

	records := decodeLines(t, &buf)
	if len(records) != 2 {
		t.Fatalf("expected 2 records at WARN, got %d: %s", len(records), buf.String())
	}
	if records[0]["msg"] != "client went away" || records[1]["level"] != "ERROR" {
		t.Errorf("unexpected records: %v", records)
	}
}

func TestLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	logger.Component("streaming").Info("stream completed", slog.Int64("bytes", 300))

	records := decodeLines(t, &buf)
	if records[0]["component"] != "streaming" {
		t.Errorf("expected component=streaming, got %v", records[0]["component"])
	}
	if records[0]["bytes"] != float64(300) {
		t.Errorf("expected bytes=300, got %v", records[0]["bytes"])
	}
}

func TestLogger_ContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx := WithRequestID(WithCorrelationID(context.Background(), "corr-123"), "req-456")

	// Derived loggers keep the context handler.
	logger.Component("api").InfoContext(ctx, "chat relayed")
	logger.Slog().InfoContext(context.Background(), "no ids")

	records := decodeLines(t, &buf)
	if records[0]["correlation_id"] != "corr-123" || records[0]["request_id"] != "req-456" {
		t.Errorf("expected ids on first record, got %v", records[0])
	}
	if _, ok := records[1]["correlation_id"]; ok {
		t.Error("should not have correlation_id when not set")
	}
	if _, ok := records[1]["request_id"]; ok {
		t.Error("should not have request_id when not set")
	}
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	if CorrelationID(ctx) != "" || RequestID(ctx) != "" {
		t.Error("ids should be empty when not set")
	}

	ctx = WithCorrelationID(ctx, "c")
	ctx = WithRequestID(ctx, "r")
	if CorrelationID(ctx) != "c" {
		t.Errorf("CorrelationID() = %q, want c", CorrelationID(ctx))
	}
	if RequestID(ctx) != "r" {
		t.Errorf("RequestID() = %q, want r", RequestID(ctx))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR+2", slog.LevelError + 2},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()

	if logger.Handler().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard() should not enable any level")
	}
	logger.Slog().Error("dropped")
}

func TestConfigure(t *testing.T) {
	cfg := config.NewAppConfigWithOptions(
		config.WithLogLevel("DEBUG"),
		config.WithLogFormat(config.LogFormatJSON),
	)

	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	logger := Configure(cfg)

	if slog.Default() != logger.Slog() {
		t.Error("Configure() should set the default slog logger")
	}
}
