package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithOutput(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		production bool
		wantLevel  logrus.Level
		wantJSON   bool
	}{
		{name: "development", level: "debug", wantLevel: logrus.DebugLevel},
		{name: "production", level: "info", production: true, wantLevel: logrus.InfoLevel, wantJSON: true},
		{name: "uppercase level", level: "WARN", wantLevel: logrus.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := NewWithOutput(&buf, tt.level, tt.production)
			if err != nil {
				t.Fatalf("NewWithOutput() error = %v", err)
			}
			if log.GetLevel() != tt.wantLevel {
				t.Errorf("level = %v, want %v", log.GetLevel(), tt.wantLevel)
			}

			log.WithField("query_id", "abc").Warn("hello")

			var entry map[string]any
			isJSON := json.Unmarshal(buf.Bytes(), &entry) == nil
			if isJSON != tt.wantJSON {
				t.Errorf("JSON output = %v, want %v: %s", isJSON, tt.wantJSON, buf.String())
			}
			if !strings.Contains(buf.String(), "abc") {
				t.Errorf("output missing field: %s", buf.String())
			}
		})
	}
}

func TestNewWithOutput_InvalidLevel(t *testing.T) {
	if _, err := NewWithOutput(&bytes.Buffer{}, "loud", false); err == nil {
		t.Error("expected error for invalid level")
	}
}
