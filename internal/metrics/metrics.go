// Package metrics counts console operations by outcome and the money they
// moved. Counters live in a private registry so a session can print its own
// summary on exit.
package metrics

import (
	"errors"
	"sort"

	"github.com/govalues/money"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tinoosan/bank/internal/errs"
)

// Outcome labels.
const (
	OutcomeOK                = "ok"
	OutcomeInvalid           = "invalid"
	OutcomeAuthFailed        = "auth_failed"
	OutcomeNotFound          = "not_found"
	OutcomeInsufficientFunds = "insufficient_funds"
	OutcomePersistence       = "persistence_error"
	OutcomeCorrupt           = "corrupt_record"
	OutcomeRejected          = "rejected"
	OutcomeCancelled         = "cancelled"
	OutcomeError             = "error"
)

type Metrics struct {
	reg      *prometheus.Registry
	ops      *prometheus.CounterVec
	moved    *prometheus.CounterVec
	fees     prometheus.Counter
	warnings *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bank",
				Name:      "operations_total",
				Help:      "Total number of console operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		moved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bank",
				Name:      "amount_moved_total",
				Help:      "Money moved by committed operations, in currency units",
			},
			[]string{"op"},
		),
		fees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bank",
			Name:      "remit_fees_total",
			Help:      "Remittance fees charged, in currency units",
		}),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bank",
				Name:      "consistency_warnings_total",
				Help:      "Non-fatal index/record warnings by operation",
			},
			[]string{"op"},
		),
	}
	m.reg.MustRegister(m.ops, m.moved, m.fees, m.warnings)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Outcome maps an operation error onto an outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, errs.ErrInsufficientFunds):
		return OutcomeInsufficientFunds
	case errors.Is(err, errs.ErrAuthentication):
		return OutcomeAuthFailed
	case errors.Is(err, errs.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, errs.ErrCorruptRecord):
		return OutcomeCorrupt
	case errors.Is(err, errs.ErrPersistence):
		return OutcomePersistence
	case errors.Is(err, errs.ErrCancelled):
		return OutcomeCancelled
	case errors.Is(err, errs.ErrNameMismatch), errors.Is(err, errs.ErrIDMismatch),
		errors.Is(err, errs.ErrPINMismatch), errors.Is(err, errs.ErrSameAccount):
		return OutcomeRejected
	case errors.Is(err, errs.ErrInvalid):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// Observe counts one finished operation.
func (m *Metrics) Observe(op string, err error) {
	m.ops.WithLabelValues(op, Outcome(err)).Inc()
}

// Moved adds a committed amount for op.
func (m *Metrics) Moved(op string, a money.Amount) {
	if f, ok := a.Float64(); ok && f > 0 {
		m.moved.WithLabelValues(op).Add(f)
	}
}

// Fee adds a charged remittance fee.
func (m *Metrics) Fee(a money.Amount) {
	if f, ok := a.Float64(); ok && f > 0 {
		m.fees.Add(f)
	}
}

// Warned counts consistency warnings raised by op.
func (m *Metrics) Warned(op string, n int) {
	if n > 0 {
		m.warnings.WithLabelValues(op).Add(float64(n))
	}
}

// Row is one line of the session summary.
type Row struct {
	Op      string
	Outcome string
	Count   int
}

// Summary returns the operation counts gathered so far, sorted by op then outcome.
func (m *Metrics) Summary() ([]Row, error) {
	families, err := m.reg.Gather()
	if err != nil {
		return nil, err
	}
	var rows []Row
	for _, mf := range families {
		if mf.GetName() != "bank_operations_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			r := Row{Count: int(metric.GetCounter().GetValue())}
			for _, lp := range metric.GetLabel() {
				switch lp.GetName() {
				case "op":
					r.Op = lp.GetValue()
				case "outcome":
					r.Outcome = lp.GetValue()
				}
			}
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Op != rows[j].Op {
			return rows[i].Op < rows[j].Op
		}
		return rows[i].Outcome < rows[j].Outcome
	})
	return rows, nil
}
