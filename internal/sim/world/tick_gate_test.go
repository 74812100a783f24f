package world

import (
	"testing"
	"time"
)

func TestTickGateDueAtConstruction(t *testing.T) {
	g := NewTickGate(testEpoch, 500*time.Millisecond)
	runs := 0
	if !g.MaybeRun(testEpoch, func() { runs++ }) || runs != 1 {
		t.Fatalf("first poll should run")
	}
	if want := testEpoch.Add(500 * time.Millisecond); !g.NextDue().Equal(want) {
		t.Fatalf("NextDue=%v, want %v", g.NextDue(), want)
	}
}

func TestTickGateNotDueIsNoop(t *testing.T) {
	g := NewTickGate(testEpoch, 500*time.Millisecond)
	g.MaybeRun(testEpoch, func() {})
	due := g.NextDue()
	for _, dt := range []time.Duration{0, time.Millisecond, 499 * time.Millisecond} {
		if g.MaybeRun(testEpoch.Add(dt), func() { t.Fatalf("ran at +%s", dt) }) {
			t.Fatalf("MaybeRun at +%s reported run", dt)
		}
		if !g.NextDue().Equal(due) {
			t.Fatalf("NextDue moved at +%s", dt)
		}
	}
	if !g.MaybeRun(testEpoch.Add(500*time.Millisecond), func() {}) {
		t.Fatalf("should run exactly at due time")
	}
}

func TestTickGateSkipsMissedIntervals(t *testing.T) {
	g := NewTickGate(testEpoch, 500*time.Millisecond)
	runs := 0
	late := testEpoch.Add(10 * time.Second)
	g.MaybeRun(late, func() { runs++ })
	g.MaybeRun(late.Add(time.Millisecond), func() { runs++ })
	if runs != 1 {
		t.Fatalf("runs=%d, missed intervals must not be replayed", runs)
	}
	if want := late.Add(500 * time.Millisecond); !g.NextDue().Equal(want) {
		t.Fatalf("NextDue=%v, want %v", g.NextDue(), want)
	}
}
