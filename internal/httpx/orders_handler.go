package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-market-orders/internal/orders"
	"github.com/ariefcatur/go-market-orders/internal/redisx"
)

type OrdersHandler struct {
	Repo  *orders.Repo
	Redis *redis.Client
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/api/orders/by-intent/{pi}", h.byIntent)
}

// byIntent serves the confirmation page. 404 until the webhook recorder has
// completed at least once for this payment reference; the page polls with
// backoff, so absence is not a failure.
func (h *OrdersHandler) byIntent(w http.ResponseWriter, r *http.Request) {
	pi := chi.URLParam(r, "pi")
	if pi == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing payment intent id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderByIntent, pi)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	receipt, err := h.Repo.GetByPaymentRef(ctx, pi)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	b, _ := json.Marshal(receipt)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLOrderCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
