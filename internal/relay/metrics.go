package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	updatesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xbar_vector_updates_total",
		Help: "Vector records received from the synchronization channel.",
	})
	updatesCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xbar_vector_updates_coalesced_total",
		Help: "Updates superseded inside the throttle window before delivery.",
	})
	streamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "xbar_stream_clients",
		Help: "Display surfaces currently subscribed to the relay.",
	})
)
