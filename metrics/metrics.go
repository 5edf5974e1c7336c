// Package metrics counts driver traffic with Prometheus.
//
//	reg := prometheus.NewRegistry()
//	d := driver.New(t, root, driver.WithObserver(metrics.New(reg)))
//	http.Handle("/metrics", metrics.Handler(reg))
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moffa90/go-slave/driver"
	"github.com/moffa90/go-slave/protocol"
	"github.com/moffa90/go-slave/transport"
	"github.com/moffa90/go-slave/types"
)

// Namespace prefixes every metric name.
const Namespace = "slave"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Error kind label values.
const (
	KindValidation = "validation"
	KindArity      = "arity"
	KindParse      = "parse"
	KindDevice     = "device"
	KindTransport  = "transport"
	KindUsage      = "usage"
	KindOther      = "other"
)

// Observer is a driver.Observer that records command counts, failures,
// latencies and traffic volume.
type Observer struct {
	commands *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	sent     prometheus.Counter
	received prometheus.Counter
}

// New creates an Observer and registers its collectors with reg. A nil reg
// leaves the collectors unregistered. It panics if registration fails, as
// prometheus.MustRegister does.
func New(reg prometheus.Registerer) *Observer {
	o := &Observer{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commands_total",
			Help:      "Commands executed, by operation and result.",
		}, []string{"op", "result"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "command_errors_total",
			Help:      "Failed commands, by operation and error kind.",
		}, []string{"op", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "command_duration_seconds",
			Help:      "Command latency including the transport.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bytes_sent_total",
			Help:      "Bytes of program messages sent.",
		}),
		received: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bytes_received_total",
			Help:      "Bytes of response messages received.",
		}),
	}

	if reg != nil {
		reg.MustRegister(o.commands, o.errors, o.duration, o.sent, o.received)
	}
	return o
}

// Observe records one event.
func (o *Observer) Observe(e driver.Event) {
	result := ResultOK
	if e.Err != nil {
		result = ResultError
		o.errors.WithLabelValues(e.Op, Kind(e.Err)).Inc()
	}

	o.commands.WithLabelValues(e.Op, result).Inc()
	o.duration.WithLabelValues(e.Op).Observe(e.Duration.Seconds())
	o.sent.Add(float64(len(e.Message)))
	o.received.Add(float64(len(e.Response)))
}

// Kind classifies a command error for the kind label.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case types.IsValidationError(err):
		return KindValidation
	case protocol.IsArityError(err) && !types.IsParseError(err):
		return KindArity
	case protocol.IsDeviceError(err):
		return KindDevice
	case types.IsParseError(err):
		return KindParse
	case transport.IsTransportError(err):
		return KindTransport
	case errors.Is(err, driver.ErrNotQueryable),
		errors.Is(err, driver.ErrNotWritable),
		errors.Is(err, driver.ErrUnknownCommand),
		errors.Is(err, driver.ErrIndexOutOfRange):
		return KindUsage
	default:
		return KindOther
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
