package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	ingestAcceptedTotal prometheus.Counter
	ingestRejectedTotal *prometheus.CounterVec

	consistencyWarningsTotal *prometheus.CounterVec

	fanoutEventsTotal  prometheus.Counter
	fanoutDroppedTotal prometheus.Counter
	fanoutConsumers    prometheus.Gauge

	outboxRetriesTotal    *prometheus.CounterVec
	outboxDeadLetterTotal *prometheus.CounterVec

	documentsExpiring prometheus.Gauge
}

var _ Sink = (*PrometheusSink)(nil)

// NewPrometheusSink creates a new Prometheus metrics sink.
// Metrics that fail to register are kept as unregistered collectors, so the
// sink stays functional either way.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		ingestAcceptedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_ingest_accepted_total",
			Help: "Total number of accepted location samples.",
		}),
		ingestRejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_ingest_rejected_total",
			Help: "Total number of rejected location samples.",
		}, []string{"reason"}),
		consistencyWarningsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_consistency_warnings_total",
			Help: "Non-fatal secondary-effect failures needing reconciliation.",
		}, []string{"kind"}),
		fanoutEventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_fanout_events_total",
			Help: "Total location change events distributed by the hub.",
		}),
		fanoutDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_fanout_dropped_total",
			Help: "Total location change events dropped (full buffer or incomplete sample).",
		}),
		fanoutConsumers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_fanout_consumers",
			Help: "Number of consumers currently attached to the hub.",
		}),
		outboxRetriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_outbox_retries_total",
			Help: "Total outbox job retry attempts.",
		}, []string{"type"}),
		outboxDeadLetterTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_outbox_dead_letter_total",
			Help: "Total outbox jobs moved to the dead letter table.",
		}, []string{"type"}),
		documentsExpiring: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_documents_expiring",
			Help: "Documents expiring within the warning window at last scan.",
		}),
	}

	s.register(reg, s.ingestAcceptedTotal, "fleet_ingest_accepted_total")
	s.register(reg, s.ingestRejectedTotal, "fleet_ingest_rejected_total")
	s.register(reg, s.consistencyWarningsTotal, "fleet_consistency_warnings_total")
	s.register(reg, s.fanoutEventsTotal, "fleet_fanout_events_total")
	s.register(reg, s.fanoutDroppedTotal, "fleet_fanout_dropped_total")
	s.register(reg, s.fanoutConsumers, "fleet_fanout_consumers")
	s.register(reg, s.outboxRetriesTotal, "fleet_outbox_retries_total")
	s.register(reg, s.outboxDeadLetterTotal, "fleet_outbox_dead_letter_total")
	s.register(reg, s.documentsExpiring, "fleet_documents_expiring")

	return s
}

func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if reg == nil {
		return
	}
	if err := reg.Register(c); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

func (s *PrometheusSink) IngestAccepted() { s.ingestAcceptedTotal.Inc() }

func (s *PrometheusSink) IngestRejected(reason string) {
	s.ingestRejectedTotal.WithLabelValues(reason).Inc()
}

func (s *PrometheusSink) ConsistencyWarning(kind string) {
	s.consistencyWarningsTotal.WithLabelValues(kind).Inc()
}

func (s *PrometheusSink) FanoutEvent()          { s.fanoutEventsTotal.Inc() }
func (s *PrometheusSink) FanoutDropped()        { s.fanoutDroppedTotal.Inc() }
func (s *PrometheusSink) FanoutConsumers(n int) { s.fanoutConsumers.Set(float64(n)) }

func (s *PrometheusSink) OutboxRetry(jobType string) {
	s.outboxRetriesTotal.WithLabelValues(jobType).Inc()
}

func (s *PrometheusSink) OutboxDeadLetter(jobType string) {
	s.outboxDeadLetterTotal.WithLabelValues(jobType).Inc()
}

func (s *PrometheusSink) DocumentsExpiring(n int) { s.documentsExpiring.Set(float64(n)) }
