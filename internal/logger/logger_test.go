package logger

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_IsNop(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("expected non-nil logger")
	}
	l.Log.Info("dropped")
}

func TestInit(t *testing.T) {
	cases := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{"capitalized", "Info", false},
		{"lower", "debug", false},
		{"upper", "WARN", false},
		{"unknown", "loud", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := New()
			err := l.Init(tc.level)
			if tc.wantErr && err == nil {
				t.Fatalf("Init(%q) expected error", tc.level)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Init(%q) unexpected error: %v", tc.level, err)
			}
		})
	}
}

func TestNewConsole_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewConsole(&buf, "warn")
	if err != nil {
		t.Fatalf("NewConsole failed: %v", err)
	}

	log.Info("quiet")
	log.Warn("loud", zap.String("id", "7"))

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info message should be filtered, got:\n%s", out)
	}
	if !strings.Contains(out, "loud") || !strings.Contains(out, `"id": "7"`) {
		t.Errorf("expected warn message with field, got:\n%s", out)
	}
}

func TestNewConsole_BadLevel(t *testing.T) {
	if _, err := NewConsole(&bytes.Buffer{}, "nope"); err == nil {
		t.Error("expected error for unknown level")
	}
}
