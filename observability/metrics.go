package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type CashbackMetrics struct {
	accruals         prometheus.Counter
	skips            *prometheus.CounterVec
	campaignsCreated prometheus.Counter
	settlements      prometheus.Counter
	settlementSize   prometheus.Gauge
	distributed      *prometheus.GaugeVec
}

var (
	cashbackOnce     sync.Once
	cashbackRegistry *CashbackMetrics
)

// Cashback returns the metrics registry tracking the reward engine.
func Cashback() *CashbackMetrics {
	cashbackOnce.Do(func() {
		cashbackRegistry = &CashbackMetrics{
			accruals: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "cashback_accruals_total",
				Help: "Count of successful cashback accruals.",
			}),
			skips: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "cashback_skips_total",
				Help: "Count of accrual triggers skipped, by reason.",
			}, []string{"reason"}),
			campaignsCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "cashback_campaigns_created_total",
				Help: "Count of reward campaigns created.",
			}),
			settlements: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "cashback_settlements_total",
				Help: "Count of settlement batches emitted.",
			}),
			settlementSize: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "cashback_settlement_entries",
				Help: "Number of ledger entries drained by the last settlement.",
			}),
			distributed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "cashback_distributed",
				Help: "Cumulative reward distributed per campaign.",
			}, []string{"campaign"}),
		}
		prometheus.MustRegister(
			cashbackRegistry.accruals,
			cashbackRegistry.skips,
			cashbackRegistry.campaignsCreated,
			cashbackRegistry.settlements,
			cashbackRegistry.settlementSize,
			cashbackRegistry.distributed,
		)
	})
	return cashbackRegistry
}

// RecordAccrual increments the accrual counter and adds the accrued amount to
// the campaign's distributed gauge.
func (m *CashbackMetrics) RecordAccrual(campaignID uint64, amount float64) {
	if m == nil {
		return
	}
	m.accruals.Inc()
	m.distributed.WithLabelValues(strconv.FormatUint(campaignID, 10)).Add(amount)
}

// RecordSkip increments the skip counter for the supplied reason.
func (m *CashbackMetrics) RecordSkip(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.skips.WithLabelValues(reason).Inc()
}

// RecordCampaignCreated increments the campaign counter.
func (m *CashbackMetrics) RecordCampaignCreated() {
	if m == nil {
		return
	}
	m.campaignsCreated.Inc()
}

// RecordSettlement tracks a settlement batch.
func (m *CashbackMetrics) RecordSettlement(entries int) {
	if m == nil {
		return
	}
	m.settlements.Inc()
	m.settlementSize.Set(float64(entries))
}
