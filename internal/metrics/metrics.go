package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PaymentInitiations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_payment_initiations_total",
			Help: "Payment initiation attempts by outcome",
		},
		[]string{"outcome"},
	)

	CatalogRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_refreshes_total",
			Help: "Catalogue fetches by result",
		},
		[]string{"result"},
	)

	CatalogFetchTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "storefront_catalog_fetch_seconds",
			Help: "Time taken to fetch the catalogue",
		},
	)

	SessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_session_events_total",
			Help: "Sign in, registration and sign out events by result",
		},
		[]string{"event", "result"},
	)
)

var registerOnce sync.Once

// Register adds the collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(PaymentInitiations, CatalogRefreshes, CatalogFetchTime, SessionEvents)
	})
}
