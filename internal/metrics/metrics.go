package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "worksheet_quiz"

// Metrics holds Prometheus collectors for the quiz server. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Intents          *prometheus.CounterVec
	Documents        *prometheus.CounterVec
	SessionsFinished prometheus.Counter
	WorksheetsLoaded prometheus.Gauge
	ConnectedPlayers prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Intents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "intents_total",
				Help:      "Player intents processed, by intent and outcome",
			},
			[]string{"intent", "outcome"},
		),
		Documents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_ingested_total",
				Help:      "Worksheet documents ingested, by result",
			},
			[]string{"result"},
		),
		SessionsFinished: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_finished_total",
				Help:      "Sessions that reached the finished state",
			},
		),
		WorksheetsLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "worksheets_loaded",
				Help:      "Worksheets in the seed library shared with new players",
			},
		),
		ConnectedPlayers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connected_players",
				Help:      "Open WebSocket connections",
			},
		),
	}
}

func (m *Metrics) ObserveIntent(intent, outcome string) {
	if m == nil {
		return
	}
	m.Intents.WithLabelValues(intent, outcome).Inc()
}

func (m *Metrics) ObserveDocument(result string) {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveFinished() {
	if m == nil {
		return
	}
	m.SessionsFinished.Inc()
}

func (m *Metrics) SetWorksheets(n int) {
	if m == nil {
		return
	}
	m.WorksheetsLoaded.Set(float64(n))
}

func (m *Metrics) PlayerConnected() {
	if m == nil {
		return
	}
	m.ConnectedPlayers.Inc()
}

func (m *Metrics) PlayerDisconnected() {
	if m == nil {
		return
	}
	m.ConnectedPlayers.Dec()
}
