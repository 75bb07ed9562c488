package domain

import "time"

// Cost event types.
const (
	EventInvoiceCreated = "invoice.created"
	EventTopupCreated   = "topup.created"
	EventTopupsImported = "topups.imported"
)

// CostEvent is published after a spend-affecting write succeeds.
type CostEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	ServiceID  int64     `json:"serviceId,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	Currency   string    `json:"currency,omitempty"`
	BatchID    string    `json:"batchId,omitempty"`
	Count      int       `json:"count,omitempty"`
}
