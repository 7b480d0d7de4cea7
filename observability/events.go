package observability

import (
	"math/big"

	"cashchain/core/events"
)

// EventRecorder is an events.Emitter that records engine events into the
// Prometheus registry before forwarding them to the next emitter, if any.
type EventRecorder struct {
	next    events.Emitter
	metrics *CashbackMetrics
}

// NewEventRecorder wires metric recording in front of next. A nil next simply
// drops events after they are recorded.
func NewEventRecorder(next events.Emitter) *EventRecorder {
	return &EventRecorder{next: next, metrics: Cashback()}
}

// Emit implements the events.Emitter interface.
func (r *EventRecorder) Emit(event events.Event) {
	if r == nil || event == nil {
		return
	}
	switch evt := event.(type) {
	case events.CashbackAccrued:
		r.metrics.RecordAccrual(evt.Campaign, amountValue(evt.Amount))
	case events.CashbackSkipped:
		r.metrics.RecordSkip(evt.Reason)
	case events.CashbackCampaignCreated:
		r.metrics.RecordCampaignCreated()
	case events.CashbackSettled:
		r.metrics.RecordSettlement(evt.Entries)
	}
	if r.next != nil {
		r.next.Emit(event)
	}
}

func amountValue(amount *big.Int) float64 {
	if amount == nil {
		return 0
	}
	value, _ := new(big.Float).SetInt(amount).Float64()
	return value
}
