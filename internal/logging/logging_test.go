// internal/logging/logging_test.go
package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"", "console", "json", "JSON"} {
		log, err := New("warn", format)
		if err != nil {
			t.Fatalf("format %q: %v", format, err)
		}
		if log.Core().Enabled(zapcore.InfoLevel) {
			t.Fatalf("format %q: info should be filtered at warn", format)
		}
		if !log.Core().Enabled(zapcore.ErrorLevel) {
			t.Fatalf("format %q: error should be enabled", format)
		}
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New("loud", "console"); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
}
