package verificationscheduler

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

const (
	metricsNamespace = "ringd"
	metricsSubsystem = "verification"
)

type metrics struct {
	submitted     *prometheus.CounterVec
	completed     *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	queueDepth    prometheus.Gauge
	pendingBlocks prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "submitted_total",
			Help:      "Number of verification requests accepted by the scheduler",
		}, []string{"kind"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "completed_total",
			Help:      "Number of resolved verification requests by status",
		}, []string{"kind", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "latency_seconds",
			Help:      "Time from submission to resolution of verification requests",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"kind"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "queue_depth",
			Help:      "Number of requests waiting for a worker",
		}),
		pendingBlocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "pending_blocks",
			Help:      "Number of verified blocks waiting for their parent to be committed",
		}),
	}
}

func (m *metrics) register(registerer prometheus.Registerer) error {
	collectors := []prometheus.Collector{m.submitted, m.completed, m.latency, m.queueDepth, m.pendingBlocks}
	for _, collector := range collectors {
		err := registerer.Register(collector)
		if err != nil {
			return errors.Wrap(err, "failed to register verification metrics")
		}
	}
	return nil
}

func (m *metrics) observeResolved(request *Request, outcome *externalapi.VerificationOutcome, err error) {
	status := "error"
	if err == nil && outcome != nil {
		status = outcome.Status.String()
	}
	kind := request.kind.String()
	m.completed.WithLabelValues(kind, status).Inc()
	m.latency.WithLabelValues(kind).Observe(time.Since(request.submitTime).Seconds())
}
