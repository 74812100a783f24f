package world

import (
	"time"

	conveyorruntimepkg "factermio.ai/internal/sim/world/feature/conveyor/runtime"
)

type StepResult struct {
	Step      uint64
	Ran       bool
	Tick      uint64
	Requests  []RecordedRequest
	Transfers []Transfer
}

// StepOnce applies reqs in order, then polls the tick gate and runs one
// propagation tick if it is due. Requests and the tick never interleave.
func (w *World) StepOnce(now time.Time, reqs []Request) StepResult {
	stepStart := time.Now()
	res := StepResult{Step: w.step.Load()}

	res.Requests = make([]RecordedRequest, 0, len(reqs))
	for _, req := range reqs {
		res.Requests = append(res.Requests, w.applyRequest(req))
	}

	res.Ran = w.gate.MaybeRun(now, func() {
		tickStart := time.Now()
		out := w.systemConveyors()
		res.Transfers = out.Transfers
		if w.metricsRec != nil {
			w.metricsRec.ObserveTick(out.Seeds, len(out.Transfers), time.Since(tickStart))
		}
	})
	if res.Ran {
		res.Tick = w.tick.Add(1)
	} else {
		res.Tick = w.tick.Load()
	}

	if w.metricsRec != nil {
		w.metricsRec.ObservePoll(res.Ran)
		w.metricsRec.SetNetwork(w.net.Len(), w.net.TokenCount())
	}

	if w.tickLogger != nil && (res.Ran || len(reqs) > 0 || w.cfg.LogIdle) {
		_ = w.tickLogger.WriteTick(w.tickLogEntry(now, res))
	}

	w.step.Add(1)
	w.metrics.Store(WorldMetrics{
		Step:          res.Step,
		Tick:          res.Tick,
		Segments:      w.net.Len(),
		Tokens:        w.net.TokenCount(),
		LastTransfers: len(res.Transfers),
		StepMS:        float64(time.Since(stepStart).Microseconds()) / 1000.0,
	})
	return res
}

// systemConveyors runs the propagation engine over the network and keeps
// render hints in sync with every hop.
func (w *World) systemConveyors() conveyorruntimepkg.Result {
	return conveyorruntimepkg.Run(w.bounds, w.net.segments, conveyorruntimepkg.Ops{
		Moved: func(from, to Vec2i) {
			w.net.Refresh(from)
			w.net.Refresh(to)
		},
	})
}

func (w *World) tickLogEntry(now time.Time, res StepResult) TickLogEntry {
	e := TickLogEntry{
		Step:     res.Step,
		Tick:     res.Tick,
		NowMs:    now.UnixMilli(),
		Ran:      res.Ran,
		Requests: res.Requests,
		Segments: w.net.Len(),
		Tokens:   w.net.TokenCount(),
		Digest:   w.Digest(),
	}
	if len(res.Transfers) > 0 {
		e.Transfers = make([][2][2]int, 0, len(res.Transfers))
		for _, t := range res.Transfers {
			e.Transfers = append(e.Transfers, [2][2]int{t.From.ToArray(), t.To.ToArray()})
		}
	}
	return e
}
