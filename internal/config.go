package internal

import (
	"log/slog"
	"strconv"
	"sync/atomic"
)

var (
	quietMode   atomic.Bool // Only warnings and errors are logged.
	debugMode   atomic.Bool // Debug records are logged and container output is streamed.
	verboseMode atomic.Bool // Records carry caller information and container output is streamed.
)

// Seeds the output modes from linker flags.
func init() {
	ApplyFlags(false, false, false)
}

// Sets the output modes from command-line flags.
//
// A flag turns its mode on; an unset flag falls back to the value baked in
// via ldflags (rawQuiet, rawDebug, rawVerbose). Unparseable linker values
// leave the mode disabled.
func ApplyFlags(quiet, verbose, debug bool) {
	quietMode.Store(quiet || linkerDefault(rawQuiet))
	verboseMode.Store(verbose || linkerDefault(rawVerbose))
	debugMode.Store(debug || linkerDefault(rawDebug))
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quietMode.Load()
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Returns true if verbose mode is enabled.
func IsVerbose() bool {
	return verboseMode.Load()
}

// Whether compiler and image build output is mirrored to the terminal while
// it runs, instead of only being reported on failure.
func StreamsContainerOutput() bool {
	return IsDebug() || IsVerbose()
}

// Returns the minimum log level for the current modes. Debug wins over quiet.
func LogLevel() slog.Level {
	switch {
	case IsDebug():
		return slog.LevelDebug
	case IsQuiet():
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func linkerDefault(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
