// Package metrics exposes Prometheus collectors for command handling and the
// lifecycle of network sub-services.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Command metrics
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifid_commands_total",
			Help: "Total number of configuration commands by command and outcome",
		},
		[]string{"command", "outcome"},
	)

	// Sub-service metrics
	ServiceUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wifid_service_up",
			Help: "Whether a network sub-service is running (1 = running, 0 = stopped)",
		},
		[]string{"service"},
	)

	ServiceStartFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wifid_service_start_failures_total",
			Help: "Total number of failed sub-service starts",
		},
		[]string{"service"},
	)

	// Radio metrics
	RadioMode = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wifid_radio_mode",
			Help: "Radio mode by kind (desired or live); 0 off, 1 station, 2 access point, 3 mixed",
		},
		[]string{"kind"},
	)

	// Event loop metrics
	PollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wifid_poll_duration_seconds",
			Help:    "Duration of one sub-service poll pass",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	UpdateBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wifid_update_bytes_total",
			Help: "Total bytes of update images received",
		},
	)
)

// Registry holds every wifid collector.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(CommandsTotal)
	Registry.MustRegister(ServiceUp)
	Registry.MustRegister(ServiceStartFailures)
	Registry.MustRegister(RadioMode)
	Registry.MustRegister(PollDuration)
	Registry.MustRegister(UpdateBytesTotal)
}

// Handler returns the Prometheus HTTP handler for Registry
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// SetServiceUp records whether service is running.
func SetServiceUp(service string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	ServiceUp.WithLabelValues(service).Set(v)
}

// Timer helps time operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time in a histogram
func (t *Timer) ObserveDuration(h prometheus.Observer) {
	h.Observe(time.Since(t.start).Seconds())
}
