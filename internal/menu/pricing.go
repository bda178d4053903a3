package menu

import (
	"fmt"
	"math"
	"strings"
)

const maxSides = 4

// NormalizeItemID maps a cart line to its canonical catalog id: pupusa lines
// prefer meta.baseId, "id::variant" ids are stripped to the base.
func NormalizeItemID(it CartItem) string {
	if it.Meta != nil && it.Meta.Kind == "pupusa" && it.Meta.BaseID != "" {
		return it.Meta.BaseID
	}
	if i := strings.Index(it.ID, "::"); i >= 0 {
		return it.ID[:i]
	}
	return it.ID
}

// roundHalfUp rounds to the nearest cent, halves away from zero for the
// non-negative amounts used here.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Reprice recomputes subtotal/tip/total from authoritative catalog prices.
// Pure: given the same price map, cart and tip it always returns the same
// amounts. Client-submitted amounts are never consulted. Any invalid line
// rejects the whole cart.
func Reprice(cart []CartItem, tip Tip, prices map[string]Item) (Priced, error) {
	var out Priced
	for _, it := range cart {
		id := NormalizeItemID(it)
		if id == "" {
			return Priced{}, &CartError{Reason: "missing item id"}
		}
		if it.Qty < 1 {
			return Priced{}, &CartError{Reason: fmt.Sprintf("invalid quantity for %s", id)}
		}
		if it.Meta != nil && it.Meta.Kind == "pupusa" && len(it.Meta.Sides) > maxSides {
			return Priced{}, &CartError{Reason: fmt.Sprintf("too many sides (max %d)", maxSides)}
		}
		row, ok := prices[id]
		if !ok {
			return Priced{}, &CartError{Reason: "menu item unavailable: " + id}
		}
		line := row.PriceCents * it.Qty
		out.SubtotalCents += line
		out.Lines = append(out.Lines, PricedLine{
			ID:        id,
			Title:     row.Title,
			UnitCents: row.PriceCents,
			Qty:       it.Qty,
			LineCents: line,
		})
	}

	switch tip.Type {
	case "percent":
		pct := math.Max(0, tip.Value)
		out.TipCents = roundHalfUp(float64(out.SubtotalCents) * pct / 100)
	case "custom":
		out.TipCents = roundHalfUp(math.Max(0, tip.Value) * 100)
	}

	out.TotalCents = out.SubtotalCents + out.TipCents
	return out, nil
}
