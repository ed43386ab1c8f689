package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/compositor/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Expanded 3 composites (1ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports engine and document activity at debug level.
type logHooks struct {
	logger *log.Logger
}

// installHooks routes observability hooks to l.
func installHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetEngineHooks(h)
	observability.SetDocumentHooks(h)
}

func (h logHooks) OnOperationStart(_ context.Context, op string, vertices int) {
	h.logger.Debug("operation started", "op", op, "vertices", vertices)
}

func (h logHooks) OnOperationComplete(_ context.Context, op string, changed int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("operation failed", "op", op, "err", err, "elapsed", d)
		return
	}
	h.logger.Debug("operation complete", "op", op, "changed", changed, "elapsed", d)
}

func (h logHooks) OnSnapshotSkipped(_ context.Context, vertex int, err error) {
	h.logger.Debug("snapshot skipped", "vertex", vertex, "err", err)
}

func (h logHooks) OnDocumentRead(_ context.Context, vertices, transactions int, d time.Duration, err error) {
	if err != nil {
		return
	}
	h.logger.Debug("document read", "vertices", vertices, "transactions", transactions, "elapsed", d)
}

func (h logHooks) OnDocumentWritten(_ context.Context, vertices, transactions int, d time.Duration, err error) {
	if err != nil {
		return
	}
	h.logger.Debug("document written", "vertices", vertices, "transactions", transactions, "elapsed", d)
}
