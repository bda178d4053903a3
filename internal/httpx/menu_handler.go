package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-market-orders/internal/menu"
	"github.com/ariefcatur/go-market-orders/internal/redisx"
)

type MenuHandler struct {
	Repo  *menu.Repo
	Redis *redis.Client
}

func (h *MenuHandler) Register(r *chi.Mux) {
	r.Get("/api/menu", h.getMenu)
}

func (h *MenuHandler) getMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if s, err := h.Redis.Get(ctx, redisx.KeyMenu).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	items, err := h.Repo.ListActive(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	sides, err := h.Repo.ListSides(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []menu.Item{}
	}
	if sides == nil {
		sides = []menu.Side{}
	}

	b, _ := json.Marshal(map[string]any{"items": items, "sides": sides})
	_ = h.Redis.Set(ctx, redisx.KeyMenu, b, redisx.TTLMenu).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
