// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the progress stream into a gin router group as a
// replay-then-stream SSE endpoint per session.
func RegisterRoutes(rg *gin.RouterGroup, bus *Bus) {
	rg.GET("/sessions/:id/events", func(c *gin.Context) {
		sessionID := c.Param("id")

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		flusher, ok := c.Writer.(http.Flusher)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
			return
		}

		writeEvent := func(e Event) {
			fmt.Fprintf(c.Writer, "data: %s\n\n", mustJSON(e))
			flusher.Flush()
		}

		for _, e := range bus.History(sessionID) {
			writeEvent(e)
		}

		ch, unsubscribe := bus.Subscribe()
		defer unsubscribe()

		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case e, open := <-ch:
				if !open {
					return
				}
				if e.SessionID == sessionID {
					writeEvent(e)
					if e.Terminal {
						return
					}
				}
			case <-ticker.C:
				fmt.Fprint(c.Writer, ": keepalive\n\n")
				flusher.Flush()
			case <-c.Request.Context().Done():
				return
			}
		}
	})
}

func mustJSON(e Event) string {
	b, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(b)
}
