package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		ordersCreatedTotal,
		settlementsTotal,
		revenueTotal,
	)
}

var (
	// kind: note|subscription, result: ok|upstream|rate_limited|error
	ordersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_orders_total",
			Help: "Gateway order creation attempts by kind and result.",
		},
		[]string{"kind", "result"},
	)

	// kind: note|subscription, source: client|webhook, action: applied|duplicate
	settlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_settlements_total",
			Help: "Settlement calls by kind, source and whether they changed state.",
		},
		[]string{"kind", "source", "action"},
	)

	revenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_revenue_paise_total",
			Help: "Newly recorded revenue in minor units, by kind.",
		},
		[]string{"kind"},
	)
)

func IncOrderCreated(kind, result string) {
	ordersCreatedTotal.WithLabelValues(norm(kind), norm(result)).Inc()
}

func IncSettlement(kind, source, action string) {
	settlementsTotal.WithLabelValues(norm(kind), norm(source), norm(action)).Inc()
}

func AddRevenue(kind string, paise int64) {
	if paise <= 0 {
		return
	}
	revenueTotal.WithLabelValues(norm(kind)).Add(float64(paise))
}
