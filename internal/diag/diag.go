// Package diag reports flow failures to a diagnostic channel.
package diag

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter receives errors surfaced by portal flows.
type Reporter interface {
	Report(ctx context.Context, err error, tags map[string]string)
}

// Nop discards every report.
type Nop struct{}

// Report implements Reporter.
func (Nop) Report(context.Context, error, map[string]string) {}

// LogReporter writes reports as slog errors.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter that logs through logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Report implements Reporter.
func (r *LogReporter) Report(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}

	attrs := make([]any, 0, 2+2*len(tags))
	attrs = append(attrs, "error", err)
	for k, v := range tags {
		attrs = append(attrs, k, v)
	}
	r.logger.ErrorContext(ctx, "flow failed", attrs...)
}

// SentryReporter sends reports to Sentry as exceptions.
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter creates a reporter on hub. A nil hub uses the current hub.
func NewSentryReporter(hub *sentry.Hub) *SentryReporter {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryReporter{hub: hub}
}

// Report implements Reporter. Tags are attached to the event scope.
func (r *SentryReporter) Report(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}

	r.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		r.hub.CaptureException(err)
	})
}

// Flush waits for buffered events to be sent.
func (r *SentryReporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}

// Multi fans a report out to several reporters.
type Multi []Reporter

// Report implements Reporter.
func (m Multi) Report(ctx context.Context, err error, tags map[string]string) {
	for _, r := range m {
		r.Report(ctx, err, tags)
	}
}
