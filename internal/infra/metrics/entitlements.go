package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		entitlementDecisionsTotal,
		assetSignFallbackTotal,
	)
}

var (
	entitlementDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entitlement_decisions_total",
			Help: "Entitlement decisions by access reason.",
		},
		[]string{"reason"}, // no_access|admin|subscription|purchase
	)

	assetSignFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_sign_fallback_total",
			Help: "Granted reads served the stored reference because signing failed.",
		},
	)
)

func IncEntitlementDecision(reason string) {
	entitlementDecisionsTotal.WithLabelValues(norm(reason)).Inc()
}

func IncAssetSignFallback() { assetSignFallbackTotal.Inc() }
