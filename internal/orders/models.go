package orders

import "time"

type Status string

const (
	// The webhook is the sole writer; an order row does not exist until the
	// payment succeeded, so PAID is the entry state.
	StatusPaid Status = "PAID"
)

type Order struct {
	ID            string    `json:"id"`
	PaymentRef    string    `json:"payment_ref"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	MarketID      string    `json:"market_id"`
	MarketName    string    `json:"market_name"`
	MarketDate    time.Time `json:"market_date"`
	PickupSlot    time.Time `json:"pickup_slot"`
	SubtotalCents int       `json:"subtotal_cents"`
	TipCents      int       `json:"tip_cents"`
	TotalCents    int       `json:"total_cents"`
	OrderStatus   Status    `json:"order_status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

type SideSelection struct {
	SideID   string `json:"side_id"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

type Line struct {
	ID       string          `json:"id"`
	ItemID   string          `json:"item_id"`
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Notes    string          `json:"notes,omitempty"`
	Sides    []SideSelection `json:"sides"`
}

// Receipt is the confirmation-page response shape; also what the notifier
// caches in redis so both paths serve identical JSON.
type Receipt struct {
	Order Order  `json:"order"`
	Items []Line `json:"items"`
}

// PaymentEvent is the provider-verified payload the recorder persists.
// Built by internal/payments after the webhook signature check.
type PaymentEvent struct {
	PaymentRef    string
	PaymentStatus string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	MarketID      string
	MarketName    string
	MarketDate    time.Time
	PickupSlot    time.Time
	SubtotalCents int
	TipCents      int
	TotalCents    int
	Cart          []SnapshotLine
}
