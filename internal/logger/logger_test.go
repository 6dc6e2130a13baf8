package logger

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func captureAt(t *testing.T, l Level, emit func()) string {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(l)
	t.Cleanup(func() {
		SetOutput(io.Discard)
		SetLevel(LevelInfo)
	})
	emit()
	return buf.String()
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw     string
		want    Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"WARN", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	out := captureAt(t, LevelWarn, func() {
		Debugf("hidden debug")
		Infof("hidden info")
		Warnf("visible warning")
		Errorf("visible error")
	})

	if strings.Contains(out, "hidden") {
		t.Fatalf("suppressed levels leaked into output: %q", out)
	}
	if !strings.Contains(out, "[WARN] visible warning") {
		t.Fatalf("warning missing from output: %q", out)
	}
	if !strings.Contains(out, "[ERROR] visible error") {
		t.Fatalf("error missing from output: %q", out)
	}
}

func TestEnabled(t *testing.T) {
	SetLevel(LevelDebug)
	t.Cleanup(func() { SetLevel(LevelInfo) })

	if Enabled(LevelTrace) {
		t.Fatal("trace should be suppressed at debug level")
	}
	if !Enabled(LevelDebug) || !Enabled(LevelError) {
		t.Fatal("debug and above should be enabled at debug level")
	}
}
