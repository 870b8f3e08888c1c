package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveIntentCounts(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveIntent("answer", "ok")
	m.ObserveIntent("answer", "ok")
	m.ObserveIntent("hint", "rejected")

	if got := testutil.ToFloat64(m.Intents.WithLabelValues("answer", "ok")); got != 2 {
		t.Fatalf("expected 2 answers, got %v", got)
	}
	if got := testutil.ToFloat64(m.Intents.WithLabelValues("hint", "rejected")); got != 1 {
		t.Fatalf("expected 1 rejected hint, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveIntent("answer", "ok")
	m.ObserveDocument("accepted")
	m.ObserveFinished()
	m.SetWorksheets(3)
	m.PlayerConnected()
	m.PlayerDisconnected()
}
