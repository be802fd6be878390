package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DepositsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vending_deposits_total",
		Help: "Number of coins deposited.",
	})
	PurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vending_purchases_total",
		Help: "Number of purchase attempts by final status.",
	}, []string{"status"})
	ChangeReturnedCents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vending_change_returned_cents_total",
		Help: "Total change paid out of the float, in cents.",
	})
)
