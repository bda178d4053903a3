package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-market-orders/internal/market"
	"github.com/ariefcatur/go-market-orders/internal/redisx"
)

type MarketsHandler struct {
	Repo  *market.Repo
	Redis *redis.Client
	Loc   *time.Location
}

func (h *MarketsHandler) Register(r *chi.Mux) {
	r.Get("/api/markets/next", h.next)
	r.Get("/api/markets/next-open", h.nextOpen)
}

type nextMarketResp struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DateISO  string `json:"dateISO"`
	StartISO string `json:"startISO"`
	EndISO   string `json:"endISO"`
}

// next returns the soonest future occurrence across active templates,
// regardless of open flags. Short-lived cache: the answer only changes once
// a window closes.
func (h *MarketsHandler) next(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if s, err := h.Redis.Get(ctx, redisx.KeyNextMarket).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	templates, err := h.Repo.ListActive(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	t, occ, err := market.NextAcross(templates, time.Now(), h.Loc)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := nextMarketResp{
		ID:       t.ID,
		Name:     t.Name,
		DateISO:  occ.LocalDate,
		StartISO: occ.Start.Format(time.RFC3339),
		EndISO:   occ.End.Format(time.RFC3339),
	}
	b, _ := json.Marshal(resp)
	_ = h.Redis.Set(ctx, redisx.KeyNextMarket, b, redisx.TTLNextMarket).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

type nextOpenResp struct {
	MarketID  string `json:"marketId"`
	Name      string `json:"name"`
	StartISO  string `json:"startISO"`
	EndISO    string `json:"endISO"`
	OrderOpen bool   `json:"orderOpen"`
}

// nextOpen is the orderable variant: flagged open, not ended, and still
// before the cutoff.
func (h *MarketsHandler) nextOpen(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if s, err := h.Redis.Get(ctx, redisx.KeyNextOpenMarket).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	m, err := h.Repo.NextOpen(ctx, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := nextOpenResp{
		MarketID:  m.MarketID,
		Name:      m.Name,
		StartISO:  m.Start.Format(time.RFC3339),
		EndISO:    m.End.Format(time.RFC3339),
		OrderOpen: true,
	}
	b, _ := json.Marshal(resp)
	_ = h.Redis.Set(ctx, redisx.KeyNextOpenMarket, b, redisx.TTLNextMarket).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
