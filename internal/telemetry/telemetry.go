// Package telemetry holds the Prometheus collectors exported on /metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insightchat_http_requests_total",
			Help: "HTTP requests by route pattern, method and status code.",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insightchat_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"route"},
	)

	CompletionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insightchat_completion_requests_total",
			Help: "Completion API calls by outcome (ok, transport, status, structure).",
		},
		[]string{"outcome"},
	)

	CompletionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insightchat_completion_duration_seconds",
			Help:    "Wall time of one completion API round-trip.",
			Buckets: []float64{.25, .5, 1, 2, 4, 8, 15, 30},
		},
	)

	Analyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insightchat_analyses_total",
			Help: "Insight and chat orchestrations by flow and outcome.",
		},
		[]string{"flow", "outcome"},
	)
)

func Handler() http.Handler { return promhttp.Handler() }
