package menu

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListActive(ctx context.Context) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, title, type, price_cents, image_url, description
	                              FROM menu_items WHERE active = true ORDER BY type, title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Title, &it.Type, &it.PriceCents, &it.ImageURL, &it.Description); err != nil {
			return nil, err
		}
		it.Active = true
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) ListSides(ctx context.Context) ([]Side, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, title, image_url FROM sides ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Side
	for rows.Next() {
		var s Side
		if err := rows.Scan(&s.ID, &s.Title, &s.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PriceMap loads the authoritative title+price rows for the given catalog
// ids, keyed by id. Missing ids are simply absent; Reprice rejects them.
func (r *Repo) PriceMap(ctx context.Context, ids []string) (map[string]Item, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, title, price_cents FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Item, len(ids))
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Title, &it.PriceCents); err != nil {
			return nil, err
		}
		out[it.ID] = it
	}
	return out, rows.Err()
}
