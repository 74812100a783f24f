package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	persistlog "factermio.ai/internal/persistence/log"
	"factermio.ai/internal/scenario"
	"factermio.ai/internal/sim/catalogs"
	"factermio.ai/internal/sim/tuning"
	"factermio.ai/internal/sim/world"
)

func main() {
	var (
		eventsDir    = flag.String("events", "", "events dir containing events-*.jsonl.zst")
		configDir    = flag.String("configs", "./configs", "config directory")
		tuningPath   = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		scenarioPath = flag.String("scenario", "", "scenario the run started from; enables digest re-simulation")
		toTick       = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *eventsDir == "" {
		fmt.Fprintln(os.Stderr, "missing -events")
		os.Exit(2)
	}

	files, err := persistlog.ListTickLogs(*eventsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list events:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no events files found in", *eventsDir)
		os.Exit(1)
	}

	v := &verifier{toTick: *toTick}
	if *scenarioPath != "" {
		w, err := resimWorld(*configDir, *tuningPath, *scenarioPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "resim:", err)
			os.Exit(1)
		}
		v.attach(w)
	}

	for _, path := range files {
		err := persistlog.ReadTickLog(path, v.check)
		if errors.Is(err, errDone) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "replay %s: %v\n", filepath.Base(path), err)
			os.Exit(1)
		}
	}

	fmt.Printf("replay ok: entries=%d ticks=%d transfers=%d placed=%d tokens=%d resimulated=%v\n",
		v.entries, v.lastTick, v.transfers, v.placed, v.tokens, v.w != nil)
}

func resimWorld(configDir, tuningPath, scenarioPath string) (*world.World, error) {
	if tuningPath == "" {
		tuningPath = filepath.Join(configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		tune = tuning.Defaults()
	}
	cats, err := catalogs.Load(configDir)
	if err != nil {
		return nil, err
	}
	scn, err := scenario.Load(scenarioPath)
	if err != nil {
		return nil, err
	}
	if scn.Width > 0 && scn.Height > 0 {
		tune.GridWidth, tune.GridHeight = scn.Width, scn.Height
	}
	w, err := world.New(world.WorldConfig{
		ID:           "replay",
		Width:        tune.GridWidth,
		Height:       tune.GridHeight,
		TickInterval: time.Nanosecond,
		Cursor:       scn.CursorOr(world.Vec2i{X: tune.GridWidth / 2, Y: tune.GridHeight / 2}),
		Clock:        func() time.Time { return replayEpoch },
	}, cats)
	if err != nil {
		return nil, err
	}
	if err := scn.Apply(w); err != nil {
		return nil, err
	}
	return w, nil
}

var errDone = errors.New("reached -to_tick")

// replayEpoch anchors the re-simulation clock. Recorded wall-clock times
// are not reused; the log's ran flag decides whether a step ticks.
var replayEpoch = time.Unix(0, 0).UTC()

// verifier checks a tick log entry by entry: steps and ticks are monotonic,
// the token count changes only through applied PLACE_RESOURCE requests, and,
// with a re-simulation world attached, every digest matches.
type verifier struct {
	toTick uint64

	w   *world.World
	now time.Time

	started   bool
	lastStep  uint64
	lastTick  uint64
	tokens    int
	entries   uint64
	transfers uint64
	placed    uint64
}

func (v *verifier) attach(w *world.World) {
	v.w = w
	// The gate is due at replayEpoch; stay before it until the first ran step.
	v.now = replayEpoch.Add(-time.Millisecond)
	v.tokens = w.Network().TokenCount()
	v.started = true
	v.lastTick = w.CurrentTick()
	v.lastStep = w.CurrentStep()
}

func (v *verifier) check(e world.TickLogEntry) error {
	if v.toTick != 0 && e.Tick > v.toTick {
		return errDone
	}

	placed := 0
	for _, r := range e.Requests {
		if r.Applied && r.Type == world.RequestPlaceResource {
			placed++
		}
	}

	if v.started {
		if v.entries > 0 && e.Step <= v.lastStep {
			return fmt.Errorf("step %d not after %d", e.Step, v.lastStep)
		}
		if e.Ran && e.Tick != v.lastTick+1 {
			return fmt.Errorf("step %d: tick %d after %d", e.Step, e.Tick, v.lastTick)
		}
		if !e.Ran && e.Tick != v.lastTick {
			return fmt.Errorf("step %d: idle step moved tick %d -> %d", e.Step, v.lastTick, e.Tick)
		}
		if e.Tokens != v.tokens+placed {
			return fmt.Errorf("step %d: tokens %d, want %d (%d placed)", e.Step, e.Tokens, v.tokens+placed, placed)
		}
	}

	if v.w != nil {
		if err := v.resim(e); err != nil {
			return err
		}
	}

	v.started = true
	v.lastStep = e.Step
	v.lastTick = e.Tick
	v.tokens = e.Tokens
	v.entries++
	v.transfers += uint64(len(e.Transfers))
	v.placed += uint64(placed)
	return nil
}

func (v *verifier) resim(e world.TickLogEntry) error {
	reqs := make([]world.Request, 0, len(e.Requests))
	for _, r := range e.Requests {
		reqs = append(reqs, r.Request)
	}
	if e.Ran {
		v.now = v.now.Add(time.Millisecond)
	}
	res := v.w.StepOnce(v.now, reqs)
	if res.Ran != e.Ran {
		return fmt.Errorf("step %d: ran=%v, log says %v", e.Step, res.Ran, e.Ran)
	}
	for i, r := range res.Requests {
		if r.Applied != e.Requests[i].Applied {
			return fmt.Errorf("step %d: request %d (%s) applied=%v, log says %v", e.Step, i, r.Type, r.Applied, e.Requests[i].Applied)
		}
	}
	if len(res.Transfers) != len(e.Transfers) {
		return fmt.Errorf("step %d: %d transfers, log has %d", e.Step, len(res.Transfers), len(e.Transfers))
	}
	if got := v.w.Digest(); got != e.Digest {
		return fmt.Errorf("digest mismatch at step %d tick %d: got=%s want=%s", e.Step, e.Tick, got, e.Digest)
	}
	return nil
}
