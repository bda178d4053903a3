package orders

import (
	"encoding/json"
	"time"
)

const EventOrderRecorded = "OrderRecorded"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // payment_ref
	Payload       json.RawMessage `json:"payload"`
}

type OrderRecordedPayload struct {
	OrderID    string    `json:"order_id"`
	PaymentRef string    `json:"payment_ref"`
	MarketID   string    `json:"market_id"`
	PickupSlot time.Time `json:"pickup_slot"`
	TotalCents int       `json:"total_cents"`
	LineCount  int       `json:"line_count"`
}
