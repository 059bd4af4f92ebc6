// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stratastor/logger"
)

// WebhookReporter subscribes to the Bus and POSTs every Event for a given
// session to a caller-supplied URL, for `live-verify --report-to`. Failed
// deliveries are logged and dropped rather than retried indefinitely -
// the stream is ephemeral and a missed event is superseded by the next
// one.
type WebhookReporter struct {
	client    *resty.Client
	url       string
	sessionID string
	logger    logger.Logger
}

// NewWebhookReporter builds a reporter with a short per-request timeout
// and a small retry count, suited to best-effort progress callbacks.
func NewWebhookReporter(url, sessionID string, l logger.Logger) *WebhookReporter {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)

	return &WebhookReporter{client: client, url: url, sessionID: sessionID, logger: l}
}

// Run drains the Bus until ctx is cancelled or a terminal Event for this
// reporter's session arrives.
func (r *WebhookReporter) Run(ctx context.Context, bus *Bus) {
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for _, e := range bus.History(r.sessionID) {
		r.post(e)
	}

	for {
		select {
		case e, open := <-ch:
			if !open {
				return
			}
			if e.SessionID != r.sessionID {
				continue
			}
			r.post(e)
			if e.Terminal {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (r *WebhookReporter) post(e Event) {
	resp, err := r.client.R().SetBody(e).Post(r.url)
	if err != nil {
		r.logger.Warn("failed to report progress event", "url", r.url, "err", err)
		return
	}
	if resp.IsError() {
		r.logger.Warn("progress report rejected", "url", r.url, "status", resp.StatusCode())
	}
}
