package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseVerbosity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Verbosity
		wantErr bool
	}{
		{"silent", Silent, false},
		{"NORMAL", Normal, false},
		{"", Normal, false},
		{" debug ", Debug, false},
		{"verbose", Debug, false},
		{"loud", Normal, true},
	}
	for _, tt := range tests {
		got, err := ParseVerbosity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVerbosity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVerbosity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVerbosity_String(t *testing.T) {
	t.Parallel()
	for v, want := range map[Verbosity]string{Silent: "silent", Normal: "normal", Debug: "debug", 7: "verbosity(7)"} {
		if got := v.String(); got != want {
			t.Errorf("String(%d) = %q, want %q", int(v), got, want)
		}
	}
}

func TestNew_LevelGating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v         Verbosity
		debugOn   bool
		infoOn    bool
		wantLevel zapcore.Level
	}{
		{Silent, false, false, zapcore.FatalLevel},
		{Normal, false, true, zapcore.InfoLevel},
		{Debug, true, true, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.v.String(), func(t *testing.T) {
			t.Parallel()
			logger, err := New(tt.v)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			core := logger.Core()
			if got := core.Enabled(zapcore.DebugLevel); got != tt.debugOn {
				t.Errorf("debug enabled = %v, want %v", got, tt.debugOn)
			}
			if got := core.Enabled(zapcore.InfoLevel); got != tt.infoOn {
				t.Errorf("info enabled = %v, want %v", got, tt.infoOn)
			}
			if got := Level(tt.v); got != tt.wantLevel {
				t.Errorf("Level = %v, want %v", got, tt.wantLevel)
			}
		})
	}
}
