package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-market-orders/internal/market"
	"github.com/ariefcatur/go-market-orders/internal/redisx"
)

const adminSecretHeader = "X-Admin-Secret"

// RequireAdmin gates a route group behind an exact-match shared secret. An
// empty configured secret locks the group entirely rather than opening it.
func RequireAdmin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || r.Header.Get(adminSecretHeader) != secret {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type AdminHandler struct {
	Markets *market.Repo
	Redis   *redis.Client
	Loc     *time.Location
	Secret  string
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(RequireAdmin(h.Secret))
		r.Post("/markets/{id}/open-next", h.openNext)
		r.Get("/markets/status", h.status)
	})
}

type openNextReq struct {
	IsOpen        *bool `json:"is_open"` // default true
	CutoffMinutes int   `json:"cutoff_minutes"`
}

// openNext resolves the market's next occurrence and upserts its open flag,
// so "open ordering for the coming Saturday" is one call with no dates to
// type.
func (h *AdminHandler) openNext(w http.ResponseWriter, r *http.Request) {
	marketID := chi.URLParam(r, "id")

	var req openNextReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.CutoffMinutes < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cutoff_minutes must be >= 0"})
		return
	}
	isOpen := true
	if req.IsOpen != nil {
		isOpen = *req.IsOpen
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	t, err := h.Markets.Get(ctx, marketID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	occ, err := t.NextOccurrence(time.Now(), h.Loc)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	flag := market.OpenFlag{
		MarketID:      t.ID,
		LocalDate:     occ.LocalDate,
		IsOpen:        isOpen,
		CutoffMinutes: req.CutoffMinutes,
		Start:         occ.Start,
		End:           occ.End,
	}
	if err := h.Markets.UpsertOpenFlag(ctx, flag); err != nil {
		writeDomainError(w, err)
		return
	}

	// the public next-open answer just changed
	_ = h.Redis.Del(ctx, redisx.KeyNextOpenMarket).Err()

	writeJSON(w, http.StatusOK, flag)
}

type marketStatusRow struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DateISO       string `json:"dateISO"`
	StartISO      string `json:"startISO"`
	EndISO        string `json:"endISO"`
	Flagged       bool   `json:"flagged"`
	IsOpen        bool   `json:"isOpen"`
	CutoffMinutes int    `json:"cutoffMinutes"`
}

// status lists every active template with its next occurrence and the flag
// state for that date, if any.
func (h *AdminHandler) status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	templates, err := h.Markets.ListActive(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	now := time.Now()
	out := make([]marketStatusRow, 0, len(templates))
	for _, t := range templates {
		occ, err := t.NextOccurrence(now, h.Loc)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		row := marketStatusRow{
			ID:       t.ID,
			Name:     t.Name,
			DateISO:  occ.LocalDate,
			StartISO: occ.Start.Format(time.RFC3339),
			EndISO:   occ.End.Format(time.RFC3339),
		}
		if flag, ok, err := h.Markets.GetOpenFlag(ctx, t.ID, occ.LocalDate); err != nil {
			writeDomainError(w, err)
			return
		} else if ok {
			row.Flagged = true
			row.IsOpen = flag.IsOpen
			row.CutoffMinutes = flag.CutoffMinutes
		}
		out = append(out, row)
	}
	writeJSON(w, http.StatusOK, out)
}
