package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
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
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"Warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&buf, Config{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Debug("poll sent", "chat_id", 42)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not json: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "poll sent" {
		t.Errorf("msg = %v, want 'poll sent'", rec["msg"])
	}
	if rec["chat_id"] != float64(42) {
		t.Errorf("chat_id = %v, want 42", rec["chat_id"])
	}
}

func TestNewTextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&buf, Config{Level: "warn"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestNewUnknownFormat(t *testing.T) {
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestContextLogger(t *testing.T) {
	ctx := context.Background()
	if _, ok := Lookup(ctx); ok {
		t.Fatal("expected no logger in empty context")
	}
	if FromContext(ctx) != slog.Default() {
		t.Error("expected default logger fallback")
	}

	l := Discard().With("handler_id", "abc")
	ctx = WithContext(ctx, l)
	got, ok := Lookup(ctx)
	if !ok || got != l {
		t.Fatal("expected stored logger")
	}
}
