// Package metrics exposes runtime gauges for the matching engine over
// Prometheus text format: fill-event queue occupancy, per-side book depth,
// and order counters. The engine itself stays instrumentation-free; a host
// wires an *engine.Engine into this package and serves the result.
package metrics

import (
	"net/http"

	"github.com/VictoriaMetrics/metrics"

	"clobengine/internal/engine"
	"clobengine/internal/events"
)

// Collector registers gauges against one engine and serves them over HTTP.
type Collector struct {
	set *metrics.Set
	eng *engine.Engine
}

// NewCollector builds gauges backed by eng's live state. Gauges read the
// engine directly on scrape rather than being pushed to, so there is no
// risk of them drifting from the book/queue they describe.
func NewCollector(eng *engine.Engine) *Collector {
	c := &Collector{set: metrics.NewSet(), eng: eng}

	c.set.NewGauge("clob_event_queue_length", func() float64 {
		return float64(c.eng.Events.Len())
	})
	c.set.NewGauge("clob_event_queue_capacity", func() float64 {
		return float64(events.MaxEvents - 1)
	})
	c.set.NewGauge("clob_book_depth{side=\"bid\"}", func() float64 {
		return float64(c.eng.Bids.Len())
	})
	c.set.NewGauge("clob_book_depth{side=\"ask\"}", func() float64 {
		return float64(c.eng.Asks.Len())
	})
	c.set.NewGauge("clob_next_order_id", func() float64 {
		return float64(c.eng.Market.PeekNextOrderID())
	})

	return c
}

// Handler returns an http.Handler that writes the current gauge values in
// Prometheus exposition format, for mounting under e.g. "/metrics".
func (c *Collector) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.set.WritePrometheus(w)
	})
}
