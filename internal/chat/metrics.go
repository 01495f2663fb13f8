package chat

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	activeConnections prometheus.Gauge
	connectionsTotal  prometheus.Counter
	messagesStored    prometheus.Counter
	broadcasts        prometheus.Counter
	droppedDeliveries prometheus.Counter
	rejectedEvents    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portal_chat_connections_active",
			Help: "Currently registered chat connections.",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_chat_connections_total",
			Help: "Chat connections accepted since start.",
		}),
		messagesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_chat_messages_stored_total",
			Help: "Chat messages persisted.",
		}),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_chat_broadcasts_total",
			Help: "Broadcasts fanned out to the registry.",
		}),
		droppedDeliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_chat_deliveries_dropped_total",
			Help: "Deliveries that failed and deregistered their connection.",
		}),
		rejectedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_chat_events_rejected_total",
			Help: "Inbound events dropped, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		m.activeConnections,
		m.connectionsTotal,
		m.messagesStored,
		m.broadcasts,
		m.droppedDeliveries,
		m.rejectedEvents,
	)
	return m
}

func (m *Metrics) connRegistered() {
	if m == nil {
		return
	}
	m.activeConnections.Inc()
	m.connectionsTotal.Inc()
}

func (m *Metrics) connDeregistered() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}

func (m *Metrics) messageStored() {
	if m == nil {
		return
	}
	m.messagesStored.Inc()
}

func (m *Metrics) broadcast() {
	if m == nil {
		return
	}
	m.broadcasts.Inc()
}

func (m *Metrics) deliveryDropped() {
	if m == nil {
		return
	}
	m.droppedDeliveries.Inc()
}

func (m *Metrics) eventRejected(reason string) {
	if m == nil {
		return
	}
	m.rejectedEvents.WithLabelValues(reason).Inc()
}
