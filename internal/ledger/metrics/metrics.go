package metrics

import (
	"math/big"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ledger module. All methods are
// nil-safe so services constructed without metrics (tests) skip recording.
type Metrics struct {
	MintsTotal     prometheus.Counter
	TransfersTotal prometheus.Counter
	TotalSupply    prometheus.Gauge
	MintDuration   prometheus.Histogram
}

// New registers the ledger metrics on the default registry. Call once, from
// main.
func New() *Metrics {
	return &Metrics{
		MintsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caplock_mints_total",
			Help: "Total number of successful mints",
		}),
		TransfersTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "caplock_transfers_total",
			Help: "Total number of successful transfers (direct and delegated)",
		}),
		TotalSupply: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "caplock_total_supply",
			Help: "Current total supply in base units (float approximation)",
		}),
		MintDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "caplock_mint_duration_seconds",
			Help:    "Duration of mint operations (cap-check critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// RecordMint records a successful mint and its duration.
func (m *Metrics) RecordMint(start time.Time) {
	if m == nil {
		return
	}
	m.MintsTotal.Inc()
	m.MintDuration.Observe(time.Since(start).Seconds())
}

// RecordTransfer records a successful transfer.
func (m *Metrics) RecordTransfer() {
	if m == nil {
		return
	}
	m.TransfersTotal.Inc()
}

// SetTotalSupply publishes the current supply. Dashboards only need the
// magnitude, so the float64 approximation of the 256-bit value is fine.
func (m *Metrics) SetTotalSupply(total *uint256.Int) {
	if m == nil || total == nil {
		return
	}
	f, _ := new(big.Float).SetInt(total.ToBig()).Float64()
	m.TotalSupply.Set(f)
}
