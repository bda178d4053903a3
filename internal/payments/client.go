package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/ariefcatur/go-market-orders/internal/menu"
	"github.com/ariefcatur/go-market-orders/internal/orders"
)

var ErrNoWebhookSecret = errors.New("webhook secret not set")

type Client struct {
	webhookSecret string
}

func New(secretKey, webhookSecret string) *Client {
	stripe.Key = secretKey
	return &Client{webhookSecret: webhookSecret}
}

type IntentInput struct {
	Name, Phone, Email   string
	MarketID, MarketName string
	MarketDateISO        string
	PickupSlotISO        string
	Priced               menu.Priced
	Cart                 []orders.SnapshotLine
}

// CreateIntent creates a provider payment intent for the server-priced
// amount. The metadata carries everything the webhook needs to record the
// order later, including the compact cart snapshot.
func (c *Client) CreateIntent(ctx context.Context, in IntentInput) (clientSecret, intentID string, err error) {
	cartJSON, err := encodeCartMetadata(in.Cart)
	if err != nil {
		return "", "", err
	}

	label := in.MarketName
	if label == "" {
		label = in.MarketID
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(int64(in.Priced.TotalCents)),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		ReceiptEmail:       stripe.String(in.Email),
		Description:        stripe.String(fmt.Sprintf("Order for %s on %s", label, datePart(in.PickupSlotISO))),
	}
	params.Context = ctx
	params.AddMetadata(mdCustomerName, in.Name)
	params.AddMetadata(mdCustomerPhone, in.Phone)
	params.AddMetadata(mdCustomerEmail, in.Email)
	params.AddMetadata(mdMarketID, in.MarketID)
	params.AddMetadata(mdMarketName, in.MarketName)
	params.AddMetadata(mdMarketDateISO, in.MarketDateISO)
	params.AddMetadata(mdPickupSlotISO, in.PickupSlotISO)
	params.AddMetadata(mdTipCents, fmt.Sprint(in.Priced.TipCents))
	params.AddMetadata(mdSubtotalCents, fmt.Sprint(in.Priced.SubtotalCents))
	params.AddMetadata(mdTotalCents, fmt.Sprint(in.Priced.TotalCents))
	params.AddMetadata(mdCartJSON, cartJSON)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ClientSecret, pi.ID, nil
}

// ParseEvent verifies the webhook signature against the raw body and maps a
// payment_intent.succeeded event to the recorder's input. handled=false
// means a valid event of a type we do not record. Missing or malformed
// required metadata rejects the whole event; nothing is persisted.
func (c *Client) ParseEvent(payload []byte, sigHeader string) (ev orders.PaymentEvent, handled bool, err error) {
	if c.webhookSecret == "" {
		return orders.PaymentEvent{}, false, ErrNoWebhookSecret
	}
	event, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
	if err != nil {
		return orders.PaymentEvent{}, false, fmt.Errorf("verify webhook: %w", err)
	}
	if event.Type != stripe.EventTypePaymentIntentSucceeded {
		return orders.PaymentEvent{}, false, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return orders.PaymentEvent{}, false, fmt.Errorf("decode payment intent: %w", err)
	}
	ev, err = eventFromIntent(&pi)
	if err != nil {
		return orders.PaymentEvent{}, false, err
	}
	return ev, true, nil
}
