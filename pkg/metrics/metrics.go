// Package metrics exposes the harness's prometheus collectors. Everything is
// registered on the default registry and served by promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InstancesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ets_instances_created_total",
		Help: "Instances created since process start.",
	})
	InstancesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ets_instances_deleted_total",
		Help: "Instances deleted via the API.",
	})
	InstancesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ets_instances_evicted_total",
		Help: "Instances silently evicted by the registry capacity policy.",
	})
	InstancesLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ets_instances_live",
		Help: "Currently registered instances.",
	})
	EventsProjected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ets_events_projected_total",
		Help: "Client events folded into message caches, by event type.",
	}, []string{"type"})
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ets_messages_sent_total",
		Help: "Payloads sent through instances, by payload type.",
	}, []string{"type"})
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ets_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
	ReaperRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ets_reaper_removed_total",
		Help: "Expired ephemeral messages removed by the reaper.",
	})
)
