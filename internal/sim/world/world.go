package world

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"factermio.ai/internal/sim/catalogs"
)

type WorldConfig struct {
	ID     string
	Width  int
	Height int

	TickInterval time.Duration
	PollInterval time.Duration
	InboxSize    int

	Cursor Vec2i

	// LogIdle also sends polls that ran nothing to the tick logger.
	LogIdle bool

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the goroutine driving StepOnce/Run.
type World struct {
	cfg    WorldConfig
	cats   *catalogs.Catalogs
	bounds Bounds

	net    *Network
	cursor Vec2i
	gate   *TickGate

	step atomic.Uint64
	tick atomic.Uint64

	inbox    chan Request
	stop     chan struct{}
	stopOnce sync.Once

	// Optional sinks (may be nil).
	tickLogger TickLogger
	metricsRec MetricsRecorder

	metrics atomic.Value // WorldMetrics
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Step      uint64            `json:"step"`
	Tick      uint64            `json:"tick"`
	NowMs     int64             `json:"now_ms"`
	Ran       bool              `json:"ran"`
	Requests  []RecordedRequest `json:"requests,omitempty"`
	Transfers [][2][2]int       `json:"transfers,omitempty"`
	Segments  int               `json:"segments"`
	Tokens    int               `json:"tokens"`
	Digest    string            `json:"digest"`
}

func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("world %q: grid size must be positive, got %dx%d", cfg.ID, cfg.Width, cfg.Height)
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("world %q: tick interval must be positive", cfg.ID)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = cfg.TickInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cats == nil {
		cats = catalogs.Defaults()
	}
	bounds := Bounds{W: cfg.Width, H: cfg.Height}
	if !bounds.Contains(cfg.Cursor) {
		return nil, fmt.Errorf("world %q: cursor %v outside %dx%d grid", cfg.ID, cfg.Cursor, cfg.Width, cfg.Height)
	}

	w := &World{
		cfg:    cfg,
		cats:   cats,
		bounds: bounds,
		net:    NewNetwork(bounds, cats),
		cursor: cfg.Cursor,
		gate:   NewTickGate(cfg.Clock(), cfg.TickInterval),
		inbox:  make(chan Request, cfg.InboxSize),
		stop:   make(chan struct{}),
	}
	w.metrics.Store(WorldMetrics{})
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger)           { w.tickLogger = l }
func (w *World) SetMetricsRecorder(r MetricsRecorder) { w.metricsRec = r }

func (w *World) ID() string            { return w.cfg.ID }
func (w *World) Bounds() Bounds        { return w.bounds }
func (w *World) Network() *Network     { return w.net }
func (w *World) Cursor() Vec2i         { return w.cursor }
func (w *World) Gate() *TickGate       { return w.gate }
func (w *World) Inbox() chan<- Request { return w.inbox }
func (w *World) CurrentStep() uint64   { return w.step.Load() }
func (w *World) CurrentTick() uint64   { return w.tick.Load() }

// Stop ends a running Run loop. Safe to call more than once.
func (w *World) Stop() { w.stopOnce.Do(func() { close(w.stop) }) }
