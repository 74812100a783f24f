package world

import "time"

// TickGate decides whether a poll actually runs a tick. It never queues
// or replays intervals that were missed between polls.
type TickGate struct {
	interval time.Duration
	nextDue  time.Time
}

// NewTickGate is due immediately at now.
func NewTickGate(now time.Time, interval time.Duration) *TickGate {
	return &TickGate{interval: interval, nextDue: now}
}

func (g *TickGate) NextDue() time.Time      { return g.nextDue }
func (g *TickGate) Interval() time.Duration { return g.interval }
func (g *TickGate) Due(now time.Time) bool  { return !now.Before(g.nextDue) }

// MaybeRun runs fn once when now has reached the due time and schedules
// the next tick one interval after now.
func (g *TickGate) MaybeRun(now time.Time, fn func()) bool {
	if !g.Due(now) {
		return false
	}
	fn()
	g.nextDue = now.Add(g.interval)
	return true
}
