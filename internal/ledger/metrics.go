package ledger

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/settleup/internal/calculator"
)

const (
	resultOK        = "ok"
	resultIntegrity = "integrity"
	resultError     = "error"
)

// Metrics holds the ledger's prometheus collectors.
type Metrics struct {
	balanceComputations *prometheus.CounterVec
	computeDuration     prometheus.Histogram
	expensesAdded       *prometheus.CounterVec
	settlementsRecorded prometheus.Counter
	settledAmount       prometheus.Counter
	publishFailures     prometheus.Counter
	groupOutstanding    *prometheus.GaugeVec
	groupOpenTransfers  *prometheus.GaugeVec
	reportRuns          *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with registerer.
// A nil registerer uses prometheus.DefaultRegisterer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		balanceComputations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settleup_balance_computations_total",
				Help: "Balance computations by result.",
			},
			[]string{"result"}, // ok | integrity | error
		),
		computeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "settleup_balance_computation_seconds",
				Help:    "Time to load a group's history and compute its balances.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
		expensesAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settleup_expenses_added_total",
				Help: "Expenses recorded, by split method.",
			},
			[]string{"split"},
		),
		settlementsRecorded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "settleup_settlements_recorded_total",
				Help: "Settlements recorded.",
			},
		),
		settledAmount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "settleup_settled_amount_total",
				Help: "Sum of all recorded settlement amounts.",
			},
		),
		publishFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "settleup_event_publish_failures_total",
				Help: "Settlement events that could not be published.",
			},
		),
		groupOutstanding: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "settleup_group_outstanding_amount",
				Help: "Total owed by debtors in a group at the last computation.",
			},
			[]string{"group"},
		),
		groupOpenTransfers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "settleup_group_open_transfers",
				Help: "Number of suggested transfers needed to settle a group.",
			},
			[]string{"group"},
		),
		reportRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settleup_balance_report_runs_total",
				Help: "Periodic balance report runs by result.",
			},
			[]string{"result"}, // ok | error
		),
	}

	registerer.MustRegister(
		m.balanceComputations,
		m.computeDuration,
		m.expensesAdded,
		m.settlementsRecorded,
		m.settledAmount,
		m.publishFailures,
		m.groupOutstanding,
		m.groupOpenTransfers,
		m.reportRuns,
	)
	return m
}

func (m *Metrics) observeComputation(elapsed time.Duration, err error) {
	m.computeDuration.Observe(elapsed.Seconds())
	switch {
	case err == nil:
		m.balanceComputations.WithLabelValues(resultOK).Inc()
	case errors.Is(err, calculator.ErrDataIntegrity):
		m.balanceComputations.WithLabelValues(resultIntegrity).Inc()
	default:
		m.balanceComputations.WithLabelValues(resultError).Inc()
	}
}

func (m *Metrics) setGroupState(groupID string, balances calculator.Balances[string], openTransfers int) {
	m.groupOutstanding.WithLabelValues(groupID).Set(balances.Outstanding().InexactFloat64())
	m.groupOpenTransfers.WithLabelValues(groupID).Set(float64(openTransfers))
}

func (m *Metrics) forgetGroup(groupID string) {
	m.groupOutstanding.DeleteLabelValues(groupID)
	m.groupOpenTransfers.DeleteLabelValues(groupID)
}
