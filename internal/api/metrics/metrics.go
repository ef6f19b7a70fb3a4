// Package metrics defines and registers all custom Prometheus metrics for
// the chat relay. It is the single source of truth for metric names, labels,
// and help strings; registration happens at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chatrelay"

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "rejected", "throttled", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// SessionsActive tracks the number of entries in the session table,
// including expired entries awaiting removal.
var SessionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Current number of entries in the session table.",
	},
)

// ChatsTotal counts relayed chat calls by model and outcome.
var ChatsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chats_total",
		Help:      "Total number of chat calls relayed to the LLM backend.",
	},
	[]string{"model", "result"},
)

// ChatCostTotal accumulates the billed cost of completed chat calls.
var ChatCostTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_cost_total",
		Help:      "Cumulative billed cost of chat calls, by model.",
	},
	[]string{"model"},
)

// ChatTokensTotal counts metered units reported by the backend.
// Label:
//   - kind: "prompt" or "completion"
var ChatTokensTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_tokens_total",
		Help:      "Total metered tokens reported by the LLM backend.",
	},
	[]string{"kind"},
)

// ChatDuration measures the end-to-end duration of one relayed chat call,
// dominated by the backend round trip.
var ChatDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chat_duration_seconds",
		Help:      "Duration of chat calls from guard check to response.",
		Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
	},
)

// BalanceFlushErrorsTotal counts failed durable balance writes. The cached
// balance stays authoritative, so a rising counter means growing divergence
// between cache and store.
var BalanceFlushErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_flush_errors_total",
		Help:      "Total number of failed balance writes to the credential store.",
	},
)

// LoginThrottleHitsTotal counts logins refused by the failed-attempt limiter.
var LoginThrottleHitsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_throttle_hits_total",
		Help:      "Total number of logins refused by the failed-attempt limiter.",
	},
)
