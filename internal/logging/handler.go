package logging

import (
	"io"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Output options for a [Handler].
type Options struct {
	Console bool // Human-readable console encoding instead of JSON.
	Caller  bool // Annotate records with the calling file and line.
}

// An slog handler backed by a zap core with an adjustable level.
type Handler struct {
	slog.Handler
	level zap.AtomicLevel // Shared with the zap core.
}

// Creates a handler writing to w at the given level.
func NewHandler(w io.Writer, level slog.Level, opts Options) *Handler {
	atom := zap.NewAtomicLevelAt(zapLevel(level))

	core := zapcore.NewCore(encoder(opts.Console), zapcore.Lock(zapcore.AddSync(w)), atom)

	return &Handler{
		Handler: zapslog.NewHandler(core, zapslog.WithCaller(opts.Caller)),
		level:   atom,
	}
}

// Changes the minimum level of emitted records.
func (h *Handler) SetLevel(level slog.Level) {
	h.level.SetLevel(zapLevel(level))
}

// Returns the current minimum level.
func (h *Handler) Level() slog.Level {
	switch h.level.Level() {
	case zapcore.DebugLevel:
		return slog.LevelDebug
	case zapcore.InfoLevel:
		return slog.LevelInfo
	case zapcore.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Builds the zap encoder for the requested format.
func encoder(console bool) zapcore.Encoder {
	if console {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
}

// Maps an slog level onto the nearest zap level.
func zapLevel(l slog.Level) zapcore.Level {
	switch {
	case l >= slog.LevelError:
		return zapcore.ErrorLevel
	case l >= slog.LevelWarn:
		return zapcore.WarnLevel
	case l >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
