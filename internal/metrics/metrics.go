// Package metrics exposes the bot's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded by CacheRefreshes and MessagesSent.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// Commands counts handled commands per plugin.
	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "butler_commands_total",
		Help: "Number of commands answered, by plugin.",
	}, []string{"plugin"})

	// CacheRefreshes counts refresh attempts per cache and outcome.
	CacheRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "butler_cache_refresh_total",
		Help: "Number of cache refresh attempts, by cache and result.",
	}, []string{"cache", "result"})

	// CacheLastRefresh holds the unix time of the last successful refresh per cache.
	CacheLastRefresh = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "butler_cache_last_refresh_timestamp_seconds",
		Help: "Unix time of the last successful refresh, by cache.",
	}, []string{"cache"})

	// MessagesSent counts outgoing chat messages by outcome.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "butler_messages_sent_total",
		Help: "Number of chat messages sent, by result.",
	}, []string{"result"})
)
