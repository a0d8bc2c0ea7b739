package ingest

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule reports whether expr is a usable resync schedule.
func ValidateSchedule(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("ingest: invalid resync schedule %q: %w", expr, err)
	}
	return nil
}

// ScheduleResync re-invokes r.Start on every tick of expr. The count gate in
// the pipeline keeps a tick a no-op while the store is complete. The returned
// scheduler is already running; Stop it on shutdown.
func ScheduleResync(ctx context.Context, expr string, r *Runner) (*cron.Cron, error) {
	c := cron.New(cron.WithParser(cronParser))
	_, err := c.AddFunc(expr, func() {
		if !r.Start(ctx) {
			r.log.Debug("resync tick skipped, ingestion already running")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: invalid resync schedule %q: %w", expr, err)
	}
	c.Start()
	return c, nil
}
