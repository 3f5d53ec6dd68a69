// Package logging provides the slog handler used by the tool.
//
// Records are written through a zap core: console-encoded on interactive
// terminals and JSON-encoded otherwise. The level is adjustable after the
// handler is installed, so the process can start logging before flags are
// parsed and tighten or relax the level once they are.
//
// Example usage:
//
//	h := logging.NewHandler(os.Stderr, slog.LevelInfo, logging.Options{})
//	slog.SetDefault(slog.New(h))
//	...
//	h.SetLevel(slog.LevelDebug)
package logging
