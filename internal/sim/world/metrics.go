package world

import "time"

// WorldMetrics is a read-only view of the loop, safe to read from any goroutine.
type WorldMetrics struct {
	Step          uint64  `json:"step"`
	Tick          uint64  `json:"tick"`
	Segments      int     `json:"segments"`
	Tokens        int     `json:"tokens"`
	LastTransfers int     `json:"last_transfers"`
	StepMS        float64 `json:"step_ms"`
}

// MetricsRecorder receives loop observations. Implemented in internal/metrics.
type MetricsRecorder interface {
	ObservePoll(ran bool)
	ObserveTick(seeds, transfers int, d time.Duration)
	ObserveRequest(kind string, applied bool)
	SetNetwork(segments, tokens int)
}

func (w *World) Metrics() WorldMetrics {
	m, _ := w.metrics.Load().(WorldMetrics)
	return m
}
