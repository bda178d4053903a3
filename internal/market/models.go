package market

import "time"

// Template is the weekly recurrence reference data for one market.
// Mutated only by an external admin process; this service reads it.
type Template struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DayOfWeek int    `json:"day_of_week"` // 0=Sunday .. 6=Saturday, matches time.Weekday
	StartHHMM string `json:"start_hhmm"`
	EndHHMM   string `json:"end_hhmm"`
	Active    bool   `json:"active"`
}

// Occurrence is a concrete calendar instantiation of a template. Derived on
// demand, never persisted by the resolver.
type Occurrence struct {
	MarketID  string    `json:"market_id"`
	LocalDate string    `json:"local_date"` // YYYY-MM-DD in the configured zone
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// OpenFlag marks one occurrence as accepting orders. At most one row per
// (market, local date).
type OpenFlag struct {
	MarketID      string    `json:"market_id"`
	LocalDate     string    `json:"local_date"`
	IsOpen        bool      `json:"is_open"`
	CutoffMinutes int       `json:"cutoff_minutes"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

// Orderable reports whether new orders are still accepted for the flagged
// occurrence at now: open, not ended, and before the cutoff.
func (f OpenFlag) Orderable(now time.Time) bool {
	if !f.IsOpen || !f.End.After(now) {
		return false
	}
	cutoff := f.End.Add(-time.Duration(f.CutoffMinutes) * time.Minute)
	return now.Before(cutoff)
}
