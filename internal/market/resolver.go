package market

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	ErrInvalidTemplate = errors.New("invalid market template")
	ErrNoUpcoming      = errors.New("no upcoming market")
)

var hhmmRe = regexp.MustCompile(`^\d{2}:\d{2}`)

// parseHHMM accepts "HH:MM" and tolerates "HH:MM:SS" (seconds dropped).
// Anything else is rejected, never defaulted.
func parseHHMM(s string) (h, m int, err error) {
	if !hhmmRe.MatchString(s) {
		return 0, 0, fmt.Errorf("%w: time of day %q (expected HH:MM)", ErrInvalidTemplate, s)
	}
	h, _ = strconv.Atoi(s[0:2])
	m, _ = strconv.Atoi(s[3:5])
	if h > 23 || m > 59 {
		return 0, 0, fmt.Errorf("%w: time of day %q out of range", ErrInvalidTemplate, s)
	}
	return h, m, nil
}

// NextOccurrence maps (template, reference instant) to the next occurrence
// window in loc. If the reference falls on the template's weekday and the
// window has not ended yet, the occurrence is today; if today's window
// already closed, it rolls forward exactly seven days.
func (t Template) NextOccurrence(now time.Time, loc *time.Location) (Occurrence, error) {
	if t.DayOfWeek < 0 || t.DayOfWeek > 6 {
		return Occurrence{}, fmt.Errorf("%w: day_of_week %d out of range", ErrInvalidTemplate, t.DayOfWeek)
	}
	sh, sm, err := parseHHMM(t.StartHHMM)
	if err != nil {
		return Occurrence{}, err
	}
	eh, em, err := parseHHMM(t.EndHHMM)
	if err != nil {
		return Occurrence{}, err
	}

	local := now.In(loc)
	delta := (t.DayOfWeek - int(local.Weekday()) + 7) % 7
	day := local.AddDate(0, 0, delta)

	start := time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, loc)

	if delta == 0 && !end.After(now) {
		day = day.AddDate(0, 0, 7)
		start = time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, loc)
		end = time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, loc)
	}

	// No overnight wraparound: end must land after start on the same date.
	if !end.After(start) {
		return Occurrence{}, fmt.Errorf("%w: end %q not after start %q", ErrInvalidTemplate, t.EndHHMM, t.StartHHMM)
	}

	return Occurrence{
		MarketID:  t.ID,
		LocalDate: start.Format("2006-01-02"),
		Start:     start,
		End:       end,
	}, nil
}

// NextAcross resolves every template and returns the one whose next window
// starts soonest. Already-ended candidates are dropped; ties keep input
// order.
func NextAcross(templates []Template, now time.Time, loc *time.Location) (Template, Occurrence, error) {
	var (
		bestT Template
		best  Occurrence
		found bool
	)
	for _, t := range templates {
		occ, err := t.NextOccurrence(now, loc)
		if err != nil {
			return Template{}, Occurrence{}, err
		}
		if !occ.End.After(now) {
			continue
		}
		if !found || occ.Start.Before(best.Start) {
			bestT, best, found = t, occ, true
		}
	}
	if !found {
		return Template{}, Occurrence{}, ErrNoUpcoming
	}
	return bestT, best, nil
}
