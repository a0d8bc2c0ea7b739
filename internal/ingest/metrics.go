package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ingestion counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	EntriesIngested prometheus.Counter
	EntriesFailed   prometheus.Counter
	RelationsSaved  prometheus.Counter
	ChainsFailed    prometheus.Counter
	BatchDuration   prometheus.Histogram
	RunState        *prometheus.GaugeVec
}

// NewMetrics creates the ingestion metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EntriesIngested: f.NewCounter(prometheus.CounterOpts{
			Name: "evodex_ingest_entries_total",
			Help: "Catalog entries normalized and stored",
		}),
		EntriesFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "evodex_ingest_entry_failures_total",
			Help: "Catalog entries skipped after a fetch or parse failure",
		}),
		RelationsSaved: f.NewCounter(prometheus.CounterOpts{
			Name: "evodex_ingest_relations_total",
			Help: "Relations persisted",
		}),
		ChainsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "evodex_ingest_chain_failures_total",
			Help: "Chain graphs skipped while building the condition cache",
		}),
		BatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "evodex_ingest_batch_duration_seconds",
			Help:    "Wall time to fetch, normalize and save one batch",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),
		RunState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "evodex_ingest_state",
			Help: "1 for the current ingestion lifecycle state",
		}, []string{"state"}),
	}
}

func (m *Metrics) entryIngested() {
	if m != nil {
		m.EntriesIngested.Inc()
	}
}

func (m *Metrics) entryFailed() {
	if m != nil {
		m.EntriesFailed.Inc()
	}
}

func (m *Metrics) relationSaved() {
	if m != nil {
		m.RelationsSaved.Inc()
	}
}

func (m *Metrics) chainsFailed(n int) {
	if m != nil {
		m.ChainsFailed.Add(float64(n))
	}
}

func (m *Metrics) observeBatch(seconds float64) {
	if m != nil {
		m.BatchDuration.Observe(seconds)
	}
}

func (m *Metrics) setState(s State) {
	if m == nil {
		return
	}
	for _, st := range allStates {
		v := 0.0
		if st == s {
			v = 1
		}
		m.RunState.WithLabelValues(string(st)).Set(v)
	}
}
