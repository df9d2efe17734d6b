package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	cacheHit      = "hit"
	cacheMiss     = "miss"
	cacheError    = "error"
	cacheDisabled = "disabled"
)

var (
	assembledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "productview_assembled_total",
			Help: "View models assembled, by variant widget and stock status",
		},
		[]string{"widget", "stock_status"},
	)

	cacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "productview_cache_requests_total",
			Help: "View model cache lookups by result",
		},
		[]string{"result"},
	)
)
