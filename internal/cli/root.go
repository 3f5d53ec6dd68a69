package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/cruciblehq/blackmagic/internal"
	"github.com/cruciblehq/blackmagic/internal/logging"
)

// Represents the root command for blackmagic.
var RootCmd struct {
	Quiet    bool       `short:"q" help:"Suppress informational output."`
	Verbose  bool       `short:"v" help:"Enable verbose output and stream container output."`
	Debug    bool       `help:"Enable debug output."`
	Config   string     `type:"path" help:"Read settings from this file instead of the default location." placeholder:"PATH"`
	Build    BuildCmd   `cmd:"" default:"withargs" help:"Cross-compile the project and package it."`
	Version  VersionCmd `cmd:"" help:"Show version information."`
	Settings ConfigCmd  `cmd:"" name:"config" help:"Print the effective settings as YAML."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd, parserOptions(ctx)...)

	configureLogger()

	return kongCtx.Run()
}

// Returns the parser options for the root command, binding ctx for Run.
func parserOptions(ctx context.Context) []kong.Option {
	return []kong.Option{
		kong.Name(internal.Name),
		kong.Description("Cross-compiles a Rust project inside a pinned toolchain image.\n\n" +
			"The binary is packaged either as an AWS Lambda archive holding a single\n" +
			"bootstrap entry, or as a minimal container image built from scratch."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	internal.ApplyFlags(RootCmd.Quiet, RootCmd.Verbose, RootCmd.Debug)
	slog.SetDefault(newLogger(os.Stderr, isatty(os.Stderr)))
}

// Creates a logger for the current flags writing to w.
func newLogger(w io.Writer, console bool) *slog.Logger {
	handler := logging.NewHandler(w, slog.LevelInfo, logging.Options{
		Console: console,
		Caller:  internal.IsVerbose(),
	})
	handler.SetLevel(internal.LogLevel())
	return slog.New(handler.WithGroup(internal.Name))
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
