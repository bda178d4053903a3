package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("order not found")

type Repo struct{ DB *pgxpool.Pool }

// Record converts a verified payment event into durable order state. Safe
// under at-least-once delivery: one logical order per payment_ref, lines
// rebuilt from the snapshot every time, all inside one transaction so
// readers never observe a partial line set.
func (r *Repo) Record(ctx context.Context, ev PaymentEvent) (orderID string, err error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `SELECT id FROM orders WHERE payment_ref=$1`, ev.PaymentRef).Scan(&orderID)
	switch {
	case err == nil:
		// redelivery: update mutable fields in place, never a second row
		_, err = tx.Exec(ctx, `
			UPDATE orders
			SET payment_status = $2,
			    order_status   = $3,
			    customer_name  = $4,
			    customer_email = $5,
			    customer_phone = $6,
			    tip_cents      = $7,
			    subtotal_cents = $8,
			    total_cents    = $9
			WHERE payment_ref = $1
		`, ev.PaymentRef, ev.PaymentStatus, StatusPaid,
			ev.CustomerName, ev.CustomerEmail, ev.CustomerPhone,
			ev.TipCents, ev.SubtotalCents, ev.TotalCents)
	case errors.Is(err, pgx.ErrNoRows):
		orderID = uuid.NewString()
		_, err = tx.Exec(ctx, `
			INSERT INTO orders (id, payment_ref,
			                    customer_name, customer_email, customer_phone,
			                    market_id, market_name, market_date, pickup_slot,
			                    tip_cents, subtotal_cents, total_cents,
			                    order_status, payment_status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		`, orderID, ev.PaymentRef,
			ev.CustomerName, ev.CustomerEmail, ev.CustomerPhone,
			ev.MarketID, ev.MarketName, ev.MarketDate, ev.PickupSlot,
			ev.TipCents, ev.SubtotalCents, ev.TotalCents,
			StatusPaid, ev.PaymentStatus)
	default:
		return "", err
	}
	if err != nil {
		return "", err
	}

	if err := replaceLines(ctx, tx, orderID, ev.Cart); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return orderID, nil
}

// replaceLines rebuilds order lines from the snapshot: delete everything for
// the order, reinsert. Titles are re-read from the catalog at write time so
// old orders stay readable after menu edits.
func replaceLines(ctx context.Context, tx pgx.Tx, orderID string, cart []SnapshotLine) error {
	if len(cart) == 0 {
		return nil
	}

	ids := make([]string, 0, len(cart))
	seen := map[string]bool{}
	for _, l := range cart {
		if !seen[l.ID] {
			seen[l.ID] = true
			ids = append(ids, l.ID)
		}
	}
	rows, err := tx.Query(ctx, `SELECT id, title FROM menu_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	titles := map[string]string{}
	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			rows.Close()
			return err
		}
		titles[id] = title
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM order_item_sides
		WHERE order_item_id IN (SELECT id FROM order_items WHERE order_id = $1)
	`, orderID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return err
	}

	for _, l := range cart {
		title, ok := titles[l.ID]
		if !ok {
			title = "Menu item" // catalog row deleted since checkout
		}
		qty := l.Qty
		if qty < 1 {
			qty = 1
		}
		var notes any
		if s := strings.TrimSpace(l.Notes); s != "" {
			notes = s
		}

		lineID := uuid.NewString()
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, item_id, title, quantity, notes)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, lineID, orderID, l.ID, title, qty, notes); err != nil {
			return err
		}

		for _, sideID := range l.Sides {
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_item_sides (order_item_id, side_id, quantity)
				VALUES ($1,$2,1)
				ON CONFLICT (order_item_id, side_id) DO UPDATE SET quantity = EXCLUDED.quantity
			`, lineID, sideID); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetByPaymentRef returns the recorded order and its lines, or ErrNotFound
// while the webhook has not completed yet. Confirmation callers poll.
func (r *Repo) GetByPaymentRef(ctx context.Context, ref string) (Receipt, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, payment_ref, customer_name, customer_email, customer_phone,
		       market_id, market_name, market_date, pickup_slot,
		       subtotal_cents, tip_cents, total_cents,
		       order_status, payment_status, created_at
		FROM orders WHERE payment_ref = $1
	`, ref).Scan(&o.ID, &o.PaymentRef, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.MarketID, &o.MarketName, &o.MarketDate, &o.PickupSlot,
		&o.SubtotalCents, &o.TipCents, &o.TotalCents,
		&o.OrderStatus, &o.PaymentStatus, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Receipt{}, ErrNotFound
	}
	if err != nil {
		return Receipt{}, err
	}

	lines, err := r.linesFor(ctx, o.ID)
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{Order: o, Items: lines}, nil
}

func (r *Repo) linesFor(ctx context.Context, orderID string) ([]Line, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, item_id, title, quantity, COALESCE(notes, '')
		FROM order_items WHERE order_id = $1 ORDER BY title
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	lineIDs := make([]string, 0, 4)
	byID := map[string]int{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.ItemID, &l.Title, &l.Quantity, &l.Notes); err != nil {
			return nil, err
		}
		l.Sides = []SideSelection{}
		byID[l.ID] = len(lines)
		lineIDs = append(lineIDs, l.ID)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return []Line{}, nil
	}

	srows, err := r.DB.Query(ctx, `
		SELECT ois.order_item_id, ois.side_id, COALESCE(s.title, ''), ois.quantity
		FROM order_item_sides ois
		LEFT JOIN sides s ON s.id = ois.side_id
		WHERE ois.order_item_id = ANY($1)
		ORDER BY s.title
	`, lineIDs)
	if err != nil {
		return nil, err
	}
	defer srows.Close()

	for srows.Next() {
		var lineID string
		var sel SideSelection
		if err := srows.Scan(&lineID, &sel.SideID, &sel.Title, &sel.Quantity); err != nil {
			return nil, err
		}
		if i, ok := byID[lineID]; ok {
			lines[i].Sides = append(lines[i].Sides, sel)
		}
	}
	return lines, srows.Err()
}
