package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v81"

	"github.com/ariefcatur/go-market-orders/internal/menu"
	"github.com/ariefcatur/go-market-orders/internal/orders"
)

const testSecret = "whsec_test"

func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func succeededEvent(metadata string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"api_version": %q,
		"type": "payment_intent.succeeded",
		"data": {
			"object": {
				"id": "pi_123",
				"object": "payment_intent",
				"status": "succeeded",
				"receipt_email": "maria@example.com",
				"amount_received": 1350,
				"metadata": %s
			}
		}
	}`, stripe.APIVersion, metadata))
}

const goodMetadata = `{
	"customer_name": "Maria",
	"customer_phone": "555-0100",
	"customer_email": "maria@example.com",
	"market_id": "m1",
	"market_name": "Downtown",
	"market_date_iso": "2025-01-07T00:00:00Z",
	"pickup_slot_iso": "2025-01-07T11:00:00Z",
	"tip_cents": "150",
	"subtotal_cents": "1200",
	"total_cents": "1350",
	"cart_json": "[{\"id\":\"p1\",\"qty\":2,\"s\":[\"s-curtido\"]}]"
}`

func TestParseEventSucceeded(t *testing.T) {
	c := &Client{webhookSecret: testSecret}
	payload := succeededEvent(goodMetadata)

	ev, handled, err := c.ParseEvent(payload, signPayload(payload, testSecret))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !handled {
		t.Fatal("event should be handled")
	}
	if ev.PaymentRef != "pi_123" {
		t.Errorf("payment ref = %q", ev.PaymentRef)
	}
	if ev.CustomerName != "Maria" || ev.CustomerEmail != "maria@example.com" || ev.CustomerPhone != "555-0100" {
		t.Errorf("contact = %q/%q/%q", ev.CustomerName, ev.CustomerEmail, ev.CustomerPhone)
	}
	if ev.SubtotalCents != 1200 || ev.TipCents != 150 || ev.TotalCents != 1350 {
		t.Errorf("amounts = %d/%d/%d", ev.SubtotalCents, ev.TipCents, ev.TotalCents)
	}
	if ev.PaymentStatus != "succeeded" {
		t.Errorf("payment status = %q", ev.PaymentStatus)
	}
	wantSlot := time.Date(2025, 1, 7, 11, 0, 0, 0, time.UTC)
	if !ev.PickupSlot.Equal(wantSlot) {
		t.Errorf("pickup slot = %v, want %v", ev.PickupSlot, wantSlot)
	}
	if len(ev.Cart) != 1 || ev.Cart[0].ID != "p1" || ev.Cart[0].Qty != 2 {
		t.Errorf("cart = %+v", ev.Cart)
	}
}

func TestParseEventBadSignature(t *testing.T) {
	c := &Client{webhookSecret: testSecret}
	payload := succeededEvent(goodMetadata)

	if _, _, err := c.ParseEvent(payload, signPayload(payload, "whsec_other")); err == nil {
		t.Error("wrong secret should fail verification")
	}
	if _, _, err := c.ParseEvent(payload, ""); err == nil {
		t.Error("missing signature should fail verification")
	}
	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = ' '
	if _, _, err := c.ParseEvent(tampered, signPayload(payload, testSecret)); err == nil {
		t.Error("tampered payload should fail verification")
	}
}

func TestParseEventNoSecretConfigured(t *testing.T) {
	c := &Client{}
	payload := succeededEvent(goodMetadata)
	_, _, err := c.ParseEvent(payload, signPayload(payload, testSecret))
	if !errors.Is(err, ErrNoWebhookSecret) {
		t.Errorf("err = %v, want ErrNoWebhookSecret", err)
	}
}

func TestParseEventIgnoresOtherTypes(t *testing.T) {
	c := &Client{webhookSecret: testSecret}
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_2",
		"object": "event",
		"api_version": %q,
		"type": "payment_intent.created",
		"data": {"object": {"id": "pi_123", "object": "payment_intent"}}
	}`, stripe.APIVersion))

	_, handled, err := c.ParseEvent(payload, signPayload(payload, testSecret))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if handled {
		t.Error("payment_intent.created should not be handled")
	}
}

func TestParseEventRejectsBadMetadata(t *testing.T) {
	cases := []struct {
		name     string
		metadata string
	}{
		{"missing pickup slot", `{
			"market_date_iso": "2025-01-07T00:00:00Z",
			"tip_cents": "0", "subtotal_cents": "100", "total_cents": "100"
		}`},
		{"malformed market date", `{
			"market_date_iso": "next tuesday",
			"pickup_slot_iso": "2025-01-07T11:00:00Z",
			"tip_cents": "0", "subtotal_cents": "100", "total_cents": "100"
		}`},
		{"malformed cents", `{
			"market_date_iso": "2025-01-07T00:00:00Z",
			"pickup_slot_iso": "2025-01-07T11:00:00Z",
			"tip_cents": "a lot", "subtotal_cents": "100", "total_cents": "100"
		}`},
	}
	c := &Client{webhookSecret: testSecret}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := succeededEvent(tc.metadata)
			_, _, err := c.ParseEvent(payload, signPayload(payload, testSecret))
			if err == nil {
				t.Error("want rejection, got nil error")
			}
		})
	}
}

func TestParseEventTolerantCart(t *testing.T) {
	// a damaged snapshot must not reject the payment; the order is recorded
	// without lines rather than lost
	md := `{
		"market_date_iso": "2025-01-07T00:00:00Z",
		"pickup_slot_iso": "2025-01-07T11:00:00Z",
		"tip_cents": "0", "subtotal_cents": "100", "total_cents": "100",
		"cart_json": "[{broken"
	}`
	c := &Client{webhookSecret: testSecret}
	payload := succeededEvent(md)
	ev, handled, err := c.ParseEvent(payload, signPayload(payload, testSecret))
	if err != nil || !handled {
		t.Fatalf("parse: handled=%v err=%v", handled, err)
	}
	if ev.Cart != nil {
		t.Errorf("cart = %+v, want nil", ev.Cart)
	}
}

func TestEncodeCartMetadataLimit(t *testing.T) {
	small := []orders.SnapshotLine{{ID: "p1", Qty: 1}}
	if _, err := encodeCartMetadata(small); err != nil {
		t.Fatalf("small cart: %v", err)
	}

	big := make([]orders.SnapshotLine, 40)
	for i := range big {
		big[i] = orders.SnapshotLine{ID: fmt.Sprintf("item-%02d", i), Qty: 1, Notes: "extra crispy please"}
	}
	_, err := encodeCartMetadata(big)
	var ce *menu.CartError
	if !errors.As(err, &ce) {
		t.Errorf("oversized cart: err = %v, want CartError", err)
	}
}
