// Package metrics provides Prometheus instrumentation for the contest bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersTotal counts executed orders, partitioned by side.
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartola_orders_total",
		Help: "Total number of orders executed",
	}, []string{"side"})

	// OrdersRejected counts rejected orders, partitioned by reason.
	OrdersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartola_orders_rejected_total",
		Help: "Total number of orders rejected by validation",
	}, []string{"reason"})

	// QuoteFallbacks counts live quotes that degraded to the static price.
	QuoteFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cartola_quote_fallbacks_total",
		Help: "Live quote fetches that fell back to the static catalog price",
	})

	// MessagesInbound counts inbound chat commands, partitioned by command.
	MessagesInbound = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cartola_messages_inbound_total",
		Help: "Total inbound chat commands handled",
	}, []string{"command"})

	// PlayersJoined counts successful first-time joins.
	PlayersJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cartola_players_joined_total",
		Help: "Total number of players that joined the tournament",
	})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
