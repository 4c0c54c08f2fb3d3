package metrics

import "github.com/prometheus/client_golang/prometheus"

// Tracker agrupa as métricas do tracker-api
type Tracker struct {
	Mutations     *prometheus.CounterVec
	PersistErrors prometheus.Counter
	Broadcasts    prometheus.Counter
	WSClients     prometheus.Gauge
}

// NewTracker cria e registra as métricas em reg
func NewTracker(reg prometheus.Registerer) *Tracker {
	t := &Tracker{
		Mutations:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "tracker_mutations_total", Help: "mutações persistidas por operação"}, []string{"op"}),
		PersistErrors: prometheus.NewCounter(prometheus.CounterOpts{Name: "tracker_persist_errors_total", Help: "falhas ao persistir snapshot ou cotação"}),
		Broadcasts:    prometheus.NewCounter(prometheus.CounterOpts{Name: "tracker_broadcasts_total", Help: "snapshots publicados para os viewers"}),
		WSClients:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "tracker_ws_clients", Help: "viewers conectados via websocket"}),
	}
	reg.MustRegister(t.Mutations, t.PersistErrors, t.Broadcasts, t.WSClients)
	return t
}
