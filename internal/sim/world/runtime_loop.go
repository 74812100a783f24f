package world

import (
	"context"
	"time"
)

// Run drives the world from a poll ticker until ctx is done or Stop is
// called. Requests received between polls are applied, in arrival order,
// at the start of the next poll.
func (w *World) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	var pending []Request

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.inbox:
			pending = append(pending, req)
		case <-ticker.C:
			w.StepOnce(w.cfg.Clock(), pending)
			pending = pending[:0]
		}
	}
}
