package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	persistlog "factermio.ai/internal/persistence/log"
	"factermio.ai/internal/metrics"
	"factermio.ai/internal/scenario"
	"factermio.ai/internal/sim/catalogs"
	"factermio.ai/internal/sim/tuning"
	"factermio.ai/internal/sim/world"
)

func main() {
	var (
		worldID      = flag.String("world", "world_1", "world id")
		configDir    = flag.String("configs", "./configs", "config directory")
		tuningPath   = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		scenarioPath = flag.String("scenario", "", "scenario file to seed the world (default: <configs>/scenarios/demo.yaml)")
		dataDir      = flag.String("data", "./data", "runtime data directory (tick logs)")
		ticks        = flag.Uint64("ticks", 0, "stop after this many propagation ticks (0 = until interrupted)")
		fast         = flag.Bool("fast", false, "simulated clock: every step is one tick interval apart, no sleeping")
		tickLog      = flag.Bool("tick_log", false, "write compressed tick logs under <data>/worlds/<world>/events (overrides tuning)")
		metricsAddr  = flag.String("metrics_addr", "", "http listen address for /metrics and /healthz (empty to disable)")
		verbose      = flag.Bool("v", false, "log every transfer")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[factory] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if *tickLog {
		tune.TickLog = true
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	sp := strings.TrimSpace(*scenarioPath)
	if sp == "" {
		sp = filepath.Join(*configDir, "scenarios", "demo.yaml")
	}
	scn, err := scenario.Load(sp)
	if err != nil {
		logger.Fatalf("load scenario: %v", err)
	}

	if scn.Width > 0 && scn.Height > 0 {
		tune.GridWidth, tune.GridHeight = scn.Width, scn.Height
	}

	w, err := world.New(world.WorldConfig{
		ID:           *worldID,
		Width:        tune.GridWidth,
		Height:       tune.GridHeight,
		TickInterval: tune.TickInterval(),
		PollInterval: tune.PollInterval(),
		InboxSize:    tune.InboxSize,
		Cursor:       scn.CursorOr(world.Vec2i{X: tune.GridWidth / 2, Y: tune.GridHeight / 2}),
		LogIdle:      tune.TickLogIdle,
	}, cats)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	if err := scn.Apply(w); err != nil {
		logger.Fatalf("apply scenario: %v", err)
	}
	logger.Printf("world=%s grid=%dx%d scenario=%s segments=%d tokens=%d tick_interval=%s",
		*worldID, tune.GridWidth, tune.GridHeight, scn.Name, w.Network().Len(), w.Network().TokenCount(), tune.TickInterval())

	if tune.TickLog {
		worldDir := filepath.Join(*dataDir, "worlds", *worldID)
		tl := persistlog.NewTickLogger(worldDir)
		defer tl.Close()
		w.SetTickLogger(tl)
		logger.Printf("tick log: %s", filepath.Join(worldDir, "events"))
	}

	rec := metrics.New(*worldID)
	w.SetMetricsRecorder(rec)

	if *fast {
		runFast(w, scn, tune.TickInterval(), *ticks, *verbose, logger)
		summarize(w, logger)
		return
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := runRealtime(ctx, w, scn, rec, *metricsAddr, *ticks, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("run: %v", err)
	}
	summarize(w, logger)
}

// runFast steps the world on a simulated clock, one tick interval per step.
// Without a tick limit it runs the script and then long enough for any token
// to cross the grid.
func runFast(w *world.World, scn *scenario.Scenario, interval time.Duration, maxTicks uint64, verbose bool, logger *log.Logger) {
	if maxTicks == 0 {
		b := w.Bounds()
		maxTicks = scn.LastStep() + 1 + uint64(b.W+b.H)
	}
	now := time.Now()
	for w.CurrentTick() < maxTicks {
		res := w.StepOnce(now, scn.RequestsAt(w.CurrentStep()))
		for _, r := range res.Requests {
			if !r.Applied {
				logger.Printf("step=%d request %s at %v rejected", res.Step, r.Type, r.At)
			}
		}
		if verbose {
			for _, t := range res.Transfers {
				logger.Printf("tick=%d move %v -> %v", res.Tick, t.From.ToArray(), t.To.ToArray())
			}
		}
		now = now.Add(interval)
	}
}

func runRealtime(ctx context.Context, w *world.World, scn *scenario.Scenario, rec *metrics.Recorder, addr string, maxTicks uint64, logger *log.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := w.Run(gctx)
		if err == nil {
			// Stopped after reaching -ticks; release the other goroutines.
			return errStopped
		}
		return err
	})

	g.Go(func() error { return feedScript(gctx, w, scn) })

	if maxTicks > 0 {
		g.Go(func() error {
			t := time.NewTicker(10 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-t.C:
					if w.CurrentTick() >= maxTicks {
						w.Stop()
						return nil
					}
				}
			}
		})
	}

	if addr != "" {
		srv := &http.Server{Addr: addr, Handler: newMux(w, rec)}
		g.Go(func() error {
			logger.Printf("metrics listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	if errors.Is(err, errStopped) {
		return nil
	}
	return err
}

var errStopped = errors.New("world stopped")

// feedScript hands each scenario batch to the world once the loop reaches
// its step. Batches land at the following poll.
func feedScript(ctx context.Context, w *world.World, scn *scenario.Scenario) error {
	if len(scn.Script) == 0 {
		return nil
	}
	last := scn.LastStep()
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	next := uint64(0)
	for next <= last {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
		for next <= last && w.CurrentStep() >= next {
			for _, req := range scn.RequestsAt(next) {
				select {
				case w.Inbox() <- req:
				case <-ctx.Done():
					return nil
				}
			}
			next++
		}
	}
	return nil
}

func newMux(w *world.World, rec *metrics.Recorder) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.Handle("/metrics", rec.Handler())
	mux.HandleFunc("/v1/state", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		resp := struct {
			WorldID string             `json:"world_id"`
			Metrics world.WorldMetrics `json:"metrics"`
		}{
			WorldID: w.ID(),
			Metrics: w.Metrics(),
		}
		_ = json.NewEncoder(rw).Encode(resp)
	})
	return mux
}

func summarize(w *world.World, logger *log.Logger) {
	n := w.Network()
	logger.Printf("done: steps=%d ticks=%d segments=%d tokens=%d digest=%s", w.CurrentStep(), w.CurrentTick(), n.Len(), n.TokenCount(), w.Digest())
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
