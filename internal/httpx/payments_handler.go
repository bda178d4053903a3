package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-market-orders/internal/kafka"
	"github.com/ariefcatur/go-market-orders/internal/menu"
	"github.com/ariefcatur/go-market-orders/internal/orders"
	"github.com/ariefcatur/go-market-orders/internal/payments"
	"github.com/ariefcatur/go-market-orders/internal/redisx"
)

const maxWebhookBody = 64 << 10

type PaymentsHandler struct {
	Menu     *menu.Repo
	Orders   *orders.Repo
	Provider *payments.Client
	Producer *kafkax.Producer
	Redis    *redis.Client
	Service  string
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Post("/api/payments/intent", h.createIntent)
	r.Post("/api/payments/webhook", h.webhook)
}

type contactReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type pickupReq struct {
	StartISO string `json:"startISO"`
	EndISO   string `json:"endISO"`
}

type createIntentReq struct {
	Contact contactReq      `json:"contact"`
	Pickup  pickupReq       `json:"pickup"`
	Tip     menu.Tip        `json:"tip"`
	Cart    []menu.CartItem `json:"cart"`
}

type createIntentResp struct {
	ClientSecret  string `json:"clientSecret"`
	OrderID       string `json:"orderId"` // payment intent id doubles as the order handle
	SubtotalCents int    `json:"subtotalCents"`
	TipCents      int    `json:"tipCents"`
	AmountCents   int    `json:"amountCents"`
}

func (h *PaymentsHandler) createIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Contact.Name == "" || req.Contact.Phone == "" || req.Contact.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing contact"})
		return
	}
	if req.Pickup.StartISO == "" || req.Pickup.EndISO == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing pickup window"})
		return
	}
	if len(req.Cart) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart empty"})
		return
	}

	// every line must target the same market occurrence
	first := req.Cart[0].Meta
	if first == nil || first.MarketID == "" || first.MarketDateISO == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing market on cart"})
		return
	}
	for _, it := range req.Cart {
		if it.Meta == nil || it.Meta.MarketID != first.MarketID || it.Meta.MarketDateISO != first.MarketDateISO {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mixed markets not allowed"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ids := make([]string, 0, len(req.Cart))
	for _, it := range req.Cart {
		ids = append(ids, menu.NormalizeItemID(it))
	}
	prices, err := h.Menu.PriceMap(ctx, ids)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	priced, err := menu.Reprice(req.Cart, req.Tip, prices)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	snapshot := make([]orders.SnapshotLine, 0, len(req.Cart))
	for _, it := range req.Cart {
		line := orders.SnapshotLine{ID: menu.NormalizeItemID(it), Qty: it.Qty}
		if it.Meta != nil && it.Meta.Kind == "pupusa" {
			line.Sides = it.Meta.Sides
			line.Notes = it.Meta.Notes
		}
		snapshot = append(snapshot, line)
	}

	clientSecret, intentID, err := h.Provider.CreateIntent(ctx, payments.IntentInput{
		Name:          req.Contact.Name,
		Phone:         req.Contact.Phone,
		Email:         req.Contact.Email,
		MarketID:      first.MarketID,
		MarketName:    first.MarketName,
		MarketDateISO: first.MarketDateISO,
		PickupSlotISO: req.Pickup.StartISO,
		Priced:        priced,
		Cart:          snapshot,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createIntentResp{
		ClientSecret:  clientSecret,
		OrderID:       intentID,
		SubtotalCents: priced.SubtotalCents,
		TipCents:      priced.TipCents,
		AmountCents:   priced.TotalCents,
	})
}

// webhook is the sole writer of order rows. The body must stay raw for the
// signature check. On any verification or metadata failure nothing is
// persisted; the provider redelivers on non-2xx, which is safe because the
// recorder is idempotent.
func (h *PaymentsHandler) webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body"})
		return
	}

	ev, handled, err := h.Provider.ParseEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		code := http.StatusBadRequest
		if err == payments.ErrNoWebhookSecret {
			code = http.StatusInternalServerError
		}
		writeJSON(w, code, map[string]string{"error": err.Error()})
		return
	}
	if !handled {
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orderID, err := h.Orders.Record(ctx, ev)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderRecorded,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       middleware.GetReqID(r.Context()),
		CorrelationID: ev.PaymentRef,
	}
	env.Payload = kafkax.MustMarshal(orders.OrderRecordedPayload{
		OrderID:    orderID,
		PaymentRef: ev.PaymentRef,
		MarketID:   ev.MarketID,
		PickupSlot: ev.PickupSlot,
		TotalCents: ev.TotalCents,
		LineCount:  len(ev.Cart),
	})
	h.Producer.Publish(orders.PartitionKey(ev.PaymentRef), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderRecorded)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	// drop the stale confirmation cache so pollers see the fresh write
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderByIntent, ev.PaymentRef)).Err()

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
