package payments

import (
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v81"

	"github.com/ariefcatur/go-market-orders/internal/menu"
	"github.com/ariefcatur/go-market-orders/internal/orders"
)

// Metadata keys on the payment intent. The webhook reads these back; they
// are the only channel between checkout and the order recorder.
const (
	mdCustomerName  = "customer_name"
	mdCustomerPhone = "customer_phone"
	mdCustomerEmail = "customer_email"
	mdMarketID      = "market_id"
	mdMarketName    = "market_name"
	mdMarketDateISO = "market_date_iso"
	mdPickupSlotISO = "pickup_slot_iso"
	mdTipCents      = "tip_cents"
	mdSubtotalCents = "subtotal_cents"
	mdTotalCents    = "total_cents"
	mdCartJSON      = "cart_json"
)

// Provider metadata values cap at 500 chars; keep headroom. A cart that does
// not fit is rejected at intent creation instead of silently truncated,
// because the webhook needs the snapshot intact to rebuild lines.
const maxCartMetadataLen = 450

func encodeCartMetadata(cart []orders.SnapshotLine) (string, error) {
	s, err := orders.EncodeSnapshot(cart)
	if err != nil {
		return "", err
	}
	if len(s) > maxCartMetadataLen {
		return "", &menu.CartError{Reason: "cart too large for checkout"}
	}
	return s, nil
}

func eventFromIntent(pi *stripe.PaymentIntent) (orders.PaymentEvent, error) {
	if pi.ID == "" {
		return orders.PaymentEvent{}, fmt.Errorf("payment event missing intent id")
	}
	md := pi.Metadata

	email := pi.ReceiptEmail
	if email == "" {
		email = md[mdCustomerEmail]
	}

	tip, err := centsField(md, mdTipCents, 0)
	if err != nil {
		return orders.PaymentEvent{}, err
	}
	subtotal, err := centsField(md, mdSubtotalCents, 0)
	if err != nil {
		return orders.PaymentEvent{}, err
	}
	total, err := centsField(md, mdTotalCents, int(pi.AmountReceived))
	if err != nil {
		return orders.PaymentEvent{}, err
	}

	marketDate, err := isoField(md, mdMarketDateISO)
	if err != nil {
		return orders.PaymentEvent{}, err
	}
	pickupSlot, err := isoField(md, mdPickupSlotISO)
	if err != nil {
		return orders.PaymentEvent{}, err
	}

	status := string(pi.Status)
	if status == "" {
		status = "succeeded"
	}

	return orders.PaymentEvent{
		PaymentRef:    pi.ID,
		PaymentStatus: status,
		CustomerName:  md[mdCustomerName],
		CustomerEmail: email,
		CustomerPhone: md[mdCustomerPhone],
		MarketID:      md[mdMarketID],
		MarketName:    md[mdMarketName],
		MarketDate:    marketDate,
		PickupSlot:    pickupSlot,
		SubtotalCents: subtotal,
		TipCents:      tip,
		TotalCents:    total,
		Cart:          orders.DecodeSnapshot(md[mdCartJSON]),
	}, nil
}

func centsField(md map[string]string, key string, def int) (int, error) {
	s, ok := md[key]
	if !ok || s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("payment metadata %s: %w", key, err)
	}
	return n, nil
}

func isoField(md map[string]string, key string) (time.Time, error) {
	s := md[key]
	if s == "" {
		return time.Time{}, fmt.Errorf("payment metadata %s missing", key)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("payment metadata %s: %w", key, err)
	}
	return t, nil
}

func datePart(iso string) string {
	if t, err := time.Parse(time.RFC3339, iso); err == nil {
		return t.Format("Jan 2, 2006")
	}
	return iso
}
