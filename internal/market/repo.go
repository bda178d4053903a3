package market

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListActive(ctx context.Context) ([]Template, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, day_of_week, start_time, end_time, active
	                              FROM markets WHERE active = true ORDER BY day_of_week`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.DayOfWeek, &t.StartHHMM, &t.EndHHMM, &t.Active); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Template, error) {
	var t Template
	err := r.DB.QueryRow(ctx, `SELECT id, name, day_of_week, start_time, end_time, active
	                           FROM markets WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &t.DayOfWeek, &t.StartHHMM, &t.EndHHMM, &t.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Template{}, ErrNoUpcoming
	}
	return t, err
}

// UpsertOpenFlag writes the flag for one (market, local date) pair. The
// primary key keeps it to a single row regardless of how often the admin
// re-opens the same occurrence.
func (r *Repo) UpsertOpenFlag(ctx context.Context, f OpenFlag) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO market_open_flags (market_id, local_date, is_open, cutoff_minutes, occurrence_start_at, occurrence_end_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (market_id, local_date) DO UPDATE
		SET is_open = EXCLUDED.is_open,
		    cutoff_minutes = EXCLUDED.cutoff_minutes,
		    occurrence_start_at = EXCLUDED.occurrence_start_at,
		    occurrence_end_at = EXCLUDED.occurrence_end_at
	`, f.MarketID, f.LocalDate, f.IsOpen, f.CutoffMinutes, f.Start, f.End)
	return err
}

// GetOpenFlag returns the flag for (market, local date) plus whether it
// exists at all.
func (r *Repo) GetOpenFlag(ctx context.Context, marketID, localDate string) (OpenFlag, bool, error) {
	var f OpenFlag
	var d time.Time
	err := r.DB.QueryRow(ctx, `
		SELECT market_id, local_date, is_open, cutoff_minutes, occurrence_start_at, occurrence_end_at
		FROM market_open_flags WHERE market_id=$1 AND local_date=$2
	`, marketID, localDate).Scan(&f.MarketID, &d, &f.IsOpen, &f.CutoffMinutes, &f.Start, &f.End)
	if errors.Is(err, pgx.ErrNoRows) {
		return OpenFlag{}, false, nil
	}
	if err != nil {
		return OpenFlag{}, false, err
	}
	f.LocalDate = d.Format("2006-01-02")
	return f, true, nil
}

// OpenMarket is the public "what can I order for right now" projection.
type OpenMarket struct {
	MarketID      string    `json:"marketId"`
	Name          string    `json:"name"`
	Start         time.Time `json:"startISO"`
	End           time.Time `json:"endISO"`
	CutoffMinutes int       `json:"cutoffMinutes"`
}

// NextOpen returns the soonest flagged occurrence that is open, not ended,
// and still before its ordering cutoff.
func (r *Repo) NextOpen(ctx context.Context, now time.Time) (OpenMarket, error) {
	var m OpenMarket
	err := r.DB.QueryRow(ctx, `
		SELECT m.id, m.name, f.occurrence_start_at, f.occurrence_end_at, f.cutoff_minutes
		FROM market_open_flags f
		JOIN markets m ON m.id = f.market_id
		WHERE f.is_open = true
		  AND f.occurrence_end_at > $1
		  AND f.occurrence_end_at - make_interval(mins => f.cutoff_minutes) > $1
		ORDER BY f.occurrence_start_at
		LIMIT 1
	`, now).Scan(&m.MarketID, &m.Name, &m.Start, &m.End, &m.CutoffMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return OpenMarket{}, ErrNoUpcoming
	}
	return m, err
}
