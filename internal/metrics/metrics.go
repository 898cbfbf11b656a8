// Package metrics exports ledger activity to Prometheus.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/magacin/internal/model"
)

// Outcomes of a ledger operation.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInsufficient = "insufficient"
	OutcomeConflict     = "conflict"
	OutcomeError        = "error"
)

// Ledger counts ledger operations. A nil *Ledger discards observations.
type Ledger struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	quantity   *prometheus.CounterVec
}

// NewLedger registers the ledger collectors, along with the Go runtime and
// process collectors, on a fresh registry.
func NewLedger() *Ledger {
	reg := prometheus.NewRegistry()
	l := &Ledger{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magacin",
			Name:      "ledger_operations_total",
			Help:      "Ledger operations by kind and outcome.",
		}, []string{"kind", "outcome"}),
		quantity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "magacin",
			Name:      "ledger_quantity_total",
			Help:      "Units reserved or picked up by successful ledger operations.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		l.operations,
		l.quantity,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return l
}

// Observe records one finished ledger operation.
func (l *Ledger) Observe(kind string, quantity int, err error) {
	if l == nil {
		return
	}
	outcome := Outcome(err)
	l.operations.WithLabelValues(kind, outcome).Inc()
	if outcome == OutcomeOK && quantity > 0 {
		l.quantity.WithLabelValues(kind).Add(float64(quantity))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (l *Ledger) Handler() http.Handler {
	return promhttp.HandlerFor(l.registry, promhttp.HandlerOpts{})
}

// Outcome classifies err for the outcome label.
func Outcome(err error) string {
	var (
		ve *model.ValidationError
		ae *model.AuthorizationError
		iv *model.InvariantViolation
		ce *model.ConflictError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &ve):
		return OutcomeInvalid
	case errors.As(err, &ae):
		return OutcomeUnauthorized
	case errors.As(err, &iv):
		return OutcomeInsufficient
	case errors.As(err, &ce):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}
