package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	publishedTotal    *prometheus.CounterVec
	degradedTotal     *prometheus.CounterVec
	consumedTotal     *prometheus.CounterVec
	duplicatesTotal   *prometheus.CounterVec
	unknownTotal      *prometheus.CounterVec
	retriesTotal      *prometheus.CounterVec
	deadLetteredTotal *prometheus.CounterVec
	lostTotal         *prometheus.CounterVec
}

func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		publishedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postcard_events_published_total",
			Help: "Total events handed to the broker client.",
		}, []string{"topic"}),
		degradedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postcard_publish_degraded_total",
			Help: "Total publishes that fell back to local logging.",
		}, []string{"topic"}),
		consumedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postcard_events_consumed_total",
			Help: "Total events dispatched to a handler successfully.",
		}, []string{"topic"}),
		duplicatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postcard_events_duplicate_skipped_total",
			Help: "Total events skipped by the idempotency cache.",
		}, []string{"topic"}),
		unknownTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postcard_events_unknown_type_total",
			Help: "Total events ignored because no handler is registered.",
		}, []string{"topic"}),
		retriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postcard_consumer_retries_total",
			Help: "Total handler retry attempts.",
		}, []string{"topic"}),
		deadLetteredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postcard_events_dead_lettered_total",
			Help: "Total messages forwarded to the dead-letter topic.",
		}, []string{"topic"}),
		lostTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postcard_messages_lost_total",
			Help: "Total messages lost because the DLQ publish failed.",
		}, []string{"topic"}),
	}

	for _, c := range []*prometheus.CounterVec{
		s.publishedTotal, s.degradedTotal, s.consumedTotal, s.duplicatesTotal,
		s.unknownTotal, s.retriesTotal, s.deadLetteredTotal, s.lostTotal,
	} {
		if err := reg.Register(c); err != nil {
			log.Printf("metrics: register failed: %v", err)
		}
	}
	return s
}

func (s *PrometheusSink) EventPublished(topic string)   { s.publishedTotal.WithLabelValues(topic).Inc() }
func (s *PrometheusSink) PublishDegraded(topic string)  { s.degradedTotal.WithLabelValues(topic).Inc() }
func (s *PrometheusSink) EventConsumed(topic string)    { s.consumedTotal.WithLabelValues(topic).Inc() }
func (s *PrometheusSink) DuplicateSkipped(topic string) { s.duplicatesTotal.WithLabelValues(topic).Inc() }
func (s *PrometheusSink) UnknownEventType(topic string) { s.unknownTotal.WithLabelValues(topic).Inc() }
func (s *PrometheusSink) RetryAttempt(topic string)     { s.retriesTotal.WithLabelValues(topic).Inc() }
func (s *PrometheusSink) DeadLettered(topic string)     { s.deadLetteredTotal.WithLabelValues(topic).Inc() }
func (s *PrometheusSink) MessageLost(topic string)      { s.lostTotal.WithLabelValues(topic).Inc() }

var _ Sink = (*PrometheusSink)(nil)
