package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	New("debug", "json", &buf).Debug("hello", "request_id", "r1")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if line["msg"] != "hello" || line["request_id"] != "r1" {
		t.Errorf("line = %v", line)
	}
}

func TestNewTextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", "text", &buf)
	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(out, "msg=kept") {
		t.Errorf("output = %q", out)
	}
}

func TestUnknownLevelIsInfo(t *testing.T) {
	if parseLevel("chatty").String() != "INFO" {
		t.Error("unknown level should be info")
	}
}
