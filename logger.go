package light2d

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/light2d/lighting"
	"github.com/gogpu/light2d/rendergraph"
	"github.com/gogpu/light2d/shadow"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. SetLogger may run concurrently with
// logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for light2d and its sub-packages
// (rendergraph, lighting, shadow). By default nothing is logged.
//
// Pass nil to restore the silent default.
//
// Log levels used by light2d:
//   - [slog.LevelDebug]: per-frame diagnostics (batches, pooled textures, purges)
//   - [slog.LevelInfo]: lifecycle events (renderer created, backend selected)
//   - [slog.LevelWarn]: degraded paths (lights skipped, shader variants failing)
//
// Example:
//
//	light2d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	rendergraph.SetLogger(l)
	lighting.SetLogger(l)
	shadow.SetLogger(l)
}

// Logger returns the current logger used by light2d.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
