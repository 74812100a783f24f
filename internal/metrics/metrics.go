package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder publishes world loop observations as Prometheus metrics. It
// satisfies world.MetricsRecorder.
type Recorder struct {
	reg *prometheus.Registry

	polls     *prometheus.CounterVec
	ticks     prometheus.Counter
	seeds     prometheus.Counter
	transfers prometheus.Counter
	tickDur   prometheus.Histogram
	requests  *prometheus.CounterVec
	segments  prometheus.Gauge
	tokens    prometheus.Gauge
}

// New registers the collectors on a private registry labelled with worldID.
func New(worldID string) *Recorder {
	labels := prometheus.Labels{"world": worldID}
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "factory_polls_total",
			Help:        "Tick gate polls, by whether a tick ran.",
			ConstLabels: labels,
		}, []string{"ran"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "factory_ticks_total",
			Help:        "Propagation ticks executed.",
			ConstLabels: labels,
		}),
		seeds: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "factory_seed_slots_total",
			Help:        "Empty segments examined by propagation.",
			ConstLabels: labels,
		}),
		transfers: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "factory_transfers_total",
			Help:        "Token hops applied by propagation.",
			ConstLabels: labels,
		}),
		tickDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "factory_tick_duration_seconds",
			Help:        "Wall time of one propagation tick.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "factory_requests_total",
			Help:        "Agent requests, by type and whether they were applied.",
			ConstLabels: labels,
		}, []string{"type", "applied"}),
		segments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "factory_segments",
			Help:        "Conveyor segments in the network.",
			ConstLabels: labels,
		}),
		tokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "factory_tokens",
			Help:        "Resource tokens on the network.",
			ConstLabels: labels,
		}),
	}
	r.reg.MustRegister(r.polls, r.ticks, r.seeds, r.transfers, r.tickDur, r.requests, r.segments, r.tokens)
	return r
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (r *Recorder) ObservePoll(ran bool) { r.polls.WithLabelValues(boolLabel(ran)).Inc() }

func (r *Recorder) ObserveTick(seeds, transfers int, d time.Duration) {
	r.ticks.Inc()
	r.seeds.Add(float64(seeds))
	r.transfers.Add(float64(transfers))
	r.tickDur.Observe(d.Seconds())
}

func (r *Recorder) ObserveRequest(kind string, applied bool) {
	r.requests.WithLabelValues(kind, boolLabel(applied)).Inc()
}

func (r *Recorder) SetNetwork(segments, tokens int) {
	r.segments.Set(float64(segments))
	r.tokens.Set(float64(tokens))
}

func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
