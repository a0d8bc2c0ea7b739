package server

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/evodex/internal/dex"
	"github.com/zulandar/evodex/internal/ingest"
)

const defaultPollInterval = 2 * time.Second

// progressEvent is sent whenever the ingestion state or record count moves.
type progressEvent struct {
	State   ingest.State `json:"state"`
	Records int64        `json:"records"`
}

// handleIngestEvents streams ingestion progress as server-sent events until
// the run settles or the client disconnects.
func handleIngestEvents(svc *dex.Service, ing Ingestion, every time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		ctx := c.Request.Context()
		var last progressEvent
		first := true
		send := func() bool {
			evt := progressEvent{State: ingest.StateNotStarted}
			if ing != nil {
				evt.State = ing.State()
			}
			n, err := svc.Count(ctx)
			if err != nil {
				writeSSE(c.Writer, "error", map[string]string{"error": err.Error()})
				c.Writer.Flush()
				return false
			}
			evt.Records = n
			if first || evt != last {
				writeSSE(c.Writer, "progress", evt)
				c.Writer.Flush()
			}
			first = false
			last = evt
			return evt.State == ingest.StateRunning
		}

		if !send() {
			return
		}
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !send() {
					return
				}
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
