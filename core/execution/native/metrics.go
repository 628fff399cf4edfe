package native

import (
	"github.com/gavelchain/gavel"
	"github.com/prometheus/client_golang/prometheus"
)

// defines prometheus metrics
var (
	acceptedTxs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gavel_native_accepted_transactions_total",
		Help: "total number of accepted transactions per contract",
	}, []string{"contract"})

	rejectedTxs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gavel_native_rejected_transactions_total",
		Help: "total number of rejected transactions per contract",
	}, []string{"contract"})
)

func init() {
	gavel.PromCollectors = append(gavel.PromCollectors, acceptedTxs, rejectedTxs)
}
