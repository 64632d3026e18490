// Package metrics exposes Prometheus collectors for the wagering core. All
// methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wagerbot"

type Metrics struct {
	wagers          *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	settlements     *prometheus.CounterVec
	staked          *prometheus.CounterVec
	paidOut         *prometheus.CounterVec
	activeSessions  *prometheus.GaugeVec
	settleRetries   prometheus.Counter
	unpaid          *prometheus.CounterVec
	ledgerConflicts prometheus.Counter
	bridgeClients   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		wagers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wagers_total",
			Help:      "Wagers accepted, by game.",
		}, []string{"game"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wager_rejections_total",
			Help:      "Wagers and moves rejected, by game and reason.",
		}, []string{"game", "reason"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Sessions settled, by game and final status.",
		}, []string{"game", "status"}),
		staked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coins_staked_total",
			Help:      "Coins escrowed into sessions.",
		}, []string{"game"}),
		paidOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coins_paid_total",
			Help:      "Coins credited back at settlement, refunds included.",
		}, []string{"game"}),
		activeSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently running.",
		}, []string{"game"}),
		settleRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_retries_total",
			Help:      "Settlement credits retried after a storage error.",
		}),
		unpaid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coins_unpaid_total",
			Help:      "Coins owed at settlement that could not be credited.",
		}, []string{"game"}),
		ledgerConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_conflicts_total",
			Help:      "Ledger writes that lost a version race.",
		}),
		bridgeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bridge_clients",
			Help:      "Connected websocket bridge clients.",
		}),
	}
	reg.MustRegister(
		m.wagers, m.rejections, m.settlements, m.staked, m.paidOut,
		m.activeSessions, m.settleRetries, m.unpaid, m.ledgerConflicts, m.bridgeClients,
	)
	return m
}

func (m *Metrics) WagerAccepted(game string, stake int64) {
	if m == nil {
		return
	}
	m.wagers.WithLabelValues(game).Inc()
	m.staked.WithLabelValues(game).Add(float64(stake))
	m.activeSessions.WithLabelValues(game).Inc()
}

// Staked records an extra stake taken mid-session, such as a duel acceptance.
func (m *Metrics) Staked(game string, stake int64) {
	if m == nil {
		return
	}
	m.staked.WithLabelValues(game).Add(float64(stake))
}

func (m *Metrics) Rejected(game, reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(game, reason).Inc()
}

func (m *Metrics) Settled(game, status string, paid int64) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(game, status).Inc()
	m.paidOut.WithLabelValues(game).Add(float64(paid))
	m.activeSessions.WithLabelValues(game).Dec()
}

func (m *Metrics) SettleRetry() {
	if m == nil {
		return
	}
	m.settleRetries.Inc()
}

// Unpaid records a settlement credit that was given up on.
func (m *Metrics) Unpaid(game string, amount int64) {
	if m == nil {
		return
	}
	m.unpaid.WithLabelValues(game).Add(float64(amount))
}

func (m *Metrics) LedgerConflict() {
	if m == nil {
		return
	}
	m.ledgerConflicts.Inc()
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.bridgeClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.bridgeClients.Dec()
}
