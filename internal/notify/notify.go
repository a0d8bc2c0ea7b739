// Package notify posts ingestion outcomes to chat platforms (Slack, Discord).
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zulandar/evodex/internal/ingest"
	"github.com/zulandar/evodex/internal/logger"
)

// Color constants for event severity.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// Adapter delivers an Event to one chat platform.
type Adapter interface {
	Name() string
	Send(ctx context.Context, evt Event) error
}

// Event is a platform-neutral notification.
type Event struct {
	Title    string
	Body     string
	Severity string // "info", "warning", "error", "success"
	Color    string // sidebar color hint
	Fields   []Field
}

// Field is a key-value pair displayed with an event.
type Field struct {
	Name  string
	Value string
	Short bool // hint: render side-by-side with another field
}

// Notifier fans an Event out to every configured adapter.
type Notifier struct {
	adapters []Adapter
	log      *logger.Logger
}

// New creates a Notifier. With no adapters, Notify does nothing.
func New(log *logger.Logger, adapters ...Adapter) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{adapters: adapters, log: log}
}

// Enabled reports whether any adapter is configured.
func (n *Notifier) Enabled() bool {
	return n != nil && len(n.adapters) > 0
}

// Notify sends evt to every adapter. A failing adapter does not stop the
// others; all failures are logged and returned joined.
func (n *Notifier) Notify(ctx context.Context, evt Event) error {
	if !n.Enabled() {
		return nil
	}
	var errs []error
	for _, a := range n.adapters {
		if err := a.Send(ctx, evt); err != nil {
			n.log.Warn("notification failed", "platform", a.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", a.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// RunFinished returns a hook for ingest.Runner that reports each finished run.
// Runs that found the store already complete are not reported.
func (n *Notifier) RunFinished(ctx context.Context, expected int) func(ingest.Result, error) {
	return func(res ingest.Result, err error) {
		if res.Skipped && err == nil {
			return
		}
		_ = n.Notify(ctx, RunEvent(res, err, expected))
	}
}

// RunEvent formats the outcome of an ingestion run.
func RunEvent(res ingest.Result, err error, expected int) Event {
	if err != nil {
		return Event{
			Title:    "Ingestion failed",
			Body:     err.Error(),
			Severity: "error",
			Color:    severityColor("error"),
		}
	}

	severity := "success"
	title := "Ingestion complete"
	if res.Failed > 0 || res.FailedChains > 0 {
		severity = "warning"
		title = "Ingestion complete with skipped entries"
	}
	return Event{
		Title:    title,
		Body:     fmt.Sprintf("%d of %d records stored.", res.Records, expected),
		Severity: severity,
		Color:    severityColor(severity),
		Fields: []Field{
			{Name: "Records", Value: fmt.Sprint(res.Records), Short: true},
			{Name: "Relations", Value: fmt.Sprint(res.Relations), Short: true},
			{Name: "Failed entries", Value: fmt.Sprint(res.Failed), Short: true},
			{Name: "Failed chains", Value: fmt.Sprint(res.FailedChains), Short: true},
		},
	}
}

// severityColor maps a severity string to a sidebar color.
func severityColor(severity string) string {
	switch severity {
	case "success":
		return ColorSuccess
	case "info":
		return ColorInfo
	case "warning":
		return ColorWarning
	case "error":
		return ColorError
	default:
		return ColorInfo
	}
}
