package world

import (
	"testing"
	"time"
)

var testEpoch = time.Unix(1_700_000_000, 0)

func newTestWorld(t *testing.T, cursor Vec2i) *World {
	t.Helper()
	w, err := New(WorldConfig{
		ID:           "test",
		Width:        80,
		Height:       50,
		TickInterval: 500 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
		Cursor:       cursor,
		Clock:        func() time.Time { return testEpoch },
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func mustInsert(t *testing.T, n *Network, p Vec2i, d Direction, loaded bool) {
	t.Helper()
	s := Segment{Kind: KindConveyor, Dir: d}
	if loaded {
		s.Token = &Token{Resource: Coal}
	}
	if !n.InsertIfAbsent(p, s) {
		t.Fatalf("InsertIfAbsent(%v) rejected", p)
	}
}

func loaded(n *Network, p Vec2i) bool {
	s, ok := n.Get(p)
	return ok && s.Token != nil
}

type memTickLogger struct{ entries []TickLogEntry }

func (l *memTickLogger) WriteTick(e TickLogEntry) error {
	l.entries = append(l.entries, e)
	return nil
}

type countingRecorder struct {
	polls, ran     int
	ticks          int
	transfers      int
	applied, total int
	segments       int
	tokens         int
}

func (r *countingRecorder) ObservePoll(ran bool) {
	r.polls++
	if ran {
		r.ran++
	}
}

func (r *countingRecorder) ObserveTick(seeds, transfers int, d time.Duration) {
	r.ticks++
	r.transfers += transfers
}

func (r *countingRecorder) ObserveRequest(kind string, applied bool) {
	r.total++
	if applied {
		r.applied++
	}
}

func (r *countingRecorder) SetNetwork(segments, tokens int) {
	r.segments, r.tokens = segments, tokens
}
