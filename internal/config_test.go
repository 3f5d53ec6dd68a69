package internal

import (
	"log/slog"
	"testing"
)

func TestApplyFlags(t *testing.T) {
	defer ApplyFlags(false, false, false)

	tests := []struct {
		name                  string
		quiet, verbose, debug bool
		level                 slog.Level
		stream                bool
	}{
		{"defaults", false, false, false, slog.LevelInfo, false},
		{"quiet", true, false, false, slog.LevelWarn, false},
		{"verbose", false, true, false, slog.LevelInfo, true},
		{"debug", false, false, true, slog.LevelDebug, true},
		{"debug over quiet", true, false, true, slog.LevelDebug, true},
	}

	for _, tt := range tests {
		ApplyFlags(tt.quiet, tt.verbose, tt.debug)

		if got := LogLevel(); got != tt.level {
			t.Errorf("%s: LogLevel() = %v, want %v", tt.name, got, tt.level)
		}
		if got := StreamsContainerOutput(); got != tt.stream {
			t.Errorf("%s: StreamsContainerOutput() = %v, want %v", tt.name, got, tt.stream)
		}
		if IsQuiet() != tt.quiet || IsVerbose() != tt.verbose || IsDebug() != tt.debug {
			t.Errorf("%s: modes = %v/%v/%v", tt.name, IsQuiet(), IsVerbose(), IsDebug())
		}
	}
}

func TestLinkerDefault(t *testing.T) {
	tests := map[string]bool{
		"true":  true,
		"1":     true,
		"false": false,
		"":      false,
		"yes":   false,
	}
	for raw, want := range tests {
		if got := linkerDefault(raw); got != want {
			t.Errorf("linkerDefault(%q) = %v, want %v", raw, got, want)
		}
	}
}
