package market

import (
	"errors"
	"testing"
	"time"
)

// 2025-01-07 is a Tuesday.
func tuesday(hour, min int) time.Time {
	return time.Date(2025, 1, 7, hour, min, 0, 0, time.UTC)
}

var tueMarket = Template{
	ID:        "m1",
	Name:      "Downtown",
	DayOfWeek: 2,
	StartHHMM: "11:00",
	EndHHMM:   "15:00",
	Active:    true,
}

func TestNextOccurrenceSameDayBeforeEnd(t *testing.T) {
	occ, err := tueMarket.NextOccurrence(tuesday(10, 0), time.UTC)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got, want := occ.Start, tuesday(11, 0); !got.Equal(want) {
		t.Errorf("start = %v, want %v", got, want)
	}
	if got, want := occ.End, tuesday(15, 0); !got.Equal(want) {
		t.Errorf("end = %v, want %v", got, want)
	}
	if occ.LocalDate != "2025-01-07" {
		t.Errorf("local date = %s, want 2025-01-07", occ.LocalDate)
	}
}

func TestNextOccurrenceSameDayAlreadyEnded(t *testing.T) {
	occ, err := tueMarket.NextOccurrence(tuesday(16, 0), time.UTC)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := time.Date(2025, 1, 14, 11, 0, 0, 0, time.UTC)
	if !occ.Start.Equal(want) {
		t.Errorf("start = %v, want next week %v", occ.Start, want)
	}
}

func TestNextOccurrenceEndExactlyNowRollsOver(t *testing.T) {
	// end <= now counts as ended
	occ, err := tueMarket.NextOccurrence(tuesday(15, 0), time.UTC)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if occ.LocalDate != "2025-01-14" {
		t.Errorf("local date = %s, want 2025-01-14", occ.LocalDate)
	}
}

func TestNextOccurrenceOtherWeekday(t *testing.T) {
	// Wednesday reference -> next Tuesday, six days out
	wed := time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)
	occ, err := tueMarket.NextOccurrence(wed, time.UTC)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if occ.LocalDate != "2025-01-14" {
		t.Errorf("local date = %s, want 2025-01-14", occ.LocalDate)
	}
}

func TestNextOccurrenceNeverEnded(t *testing.T) {
	// end must always land strictly after the reference
	refs := []time.Time{
		tuesday(0, 0), tuesday(10, 59), tuesday(11, 0), tuesday(14, 59),
		tuesday(15, 0), tuesday(23, 59),
		time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC),  // Sunday
		time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC), // Saturday
	}
	for _, ref := range refs {
		occ, err := tueMarket.NextOccurrence(ref, time.UTC)
		if err != nil {
			t.Fatalf("resolve at %v: %v", ref, err)
		}
		if !occ.End.After(ref) {
			t.Errorf("end %v not after reference %v", occ.End, ref)
		}
		if !occ.End.After(occ.Start) {
			t.Errorf("end %v not after start %v", occ.End, occ.Start)
		}
	}
}

func TestNextOccurrenceSecondsTolerated(t *testing.T) {
	tpl := tueMarket
	tpl.StartHHMM = "11:00:30"
	tpl.EndHHMM = "15:00:45"
	occ, err := tpl.NextOccurrence(tuesday(10, 0), time.UTC)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !occ.Start.Equal(tuesday(11, 0)) {
		t.Errorf("seconds should be dropped, start = %v", occ.Start)
	}
}

func TestNextOccurrenceInvalidTemplate(t *testing.T) {
	cases := []struct {
		name string
		tpl  Template
	}{
		{"empty start", Template{DayOfWeek: 2, StartHHMM: "", EndHHMM: "15:00"}},
		{"one digit hour", Template{DayOfWeek: 2, StartHHMM: "9:00", EndHHMM: "15:00"}},
		{"garbage", Template{DayOfWeek: 2, StartHHMM: "noon", EndHHMM: "15:00"}},
		{"hour out of range", Template{DayOfWeek: 2, StartHHMM: "25:00", EndHHMM: "15:00"}},
		{"day out of range", Template{DayOfWeek: 7, StartHHMM: "11:00", EndHHMM: "15:00"}},
		{"end before start", Template{DayOfWeek: 2, StartHHMM: "15:00", EndHHMM: "11:00"}},
		{"end equals start", Template{DayOfWeek: 2, StartHHMM: "11:00", EndHHMM: "11:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.tpl.NextOccurrence(tuesday(10, 0), time.UTC)
			if !errors.Is(err, ErrInvalidTemplate) {
				t.Errorf("err = %v, want ErrInvalidTemplate", err)
			}
		})
	}
}

func TestNextAcrossPicksSoonest(t *testing.T) {
	sat := Template{ID: "m2", Name: "Riverside", DayOfWeek: 6, StartHHMM: "09:00", EndHHMM: "13:00"}
	// Tuesday morning: the Tuesday market (today) beats Saturday
	tpl, occ, err := NextAcross([]Template{sat, tueMarket}, tuesday(9, 0), time.UTC)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tpl.ID != "m1" {
		t.Errorf("picked %s, want m1", tpl.ID)
	}
	if occ.LocalDate != "2025-01-07" {
		t.Errorf("local date = %s, want 2025-01-07", occ.LocalDate)
	}

	// Tuesday evening: today's window closed, Saturday is now soonest
	tpl, occ, err = NextAcross([]Template{sat, tueMarket}, tuesday(16, 0), time.UTC)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tpl.ID != "m2" {
		t.Errorf("picked %s, want m2", tpl.ID)
	}
	if occ.LocalDate != "2025-01-11" {
		t.Errorf("local date = %s, want 2025-01-11", occ.LocalDate)
	}
}

func TestNextAcrossTieKeepsInputOrder(t *testing.T) {
	a := tueMarket
	a.ID = "first"
	b := tueMarket
	b.ID = "second"
	tpl, _, err := NextAcross([]Template{a, b}, tuesday(9, 0), time.UTC)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tpl.ID != "first" {
		t.Errorf("tie broke to %s, want first", tpl.ID)
	}
}

func TestNextAcrossEmpty(t *testing.T) {
	_, _, err := NextAcross(nil, tuesday(9, 0), time.UTC)
	if !errors.Is(err, ErrNoUpcoming) {
		t.Errorf("err = %v, want ErrNoUpcoming", err)
	}
}

func TestNextAcrossPropagatesTemplateError(t *testing.T) {
	bad := Template{ID: "bad", DayOfWeek: 2, StartHHMM: "nope", EndHHMM: "15:00"}
	_, _, err := NextAcross([]Template{tueMarket, bad}, tuesday(9, 0), time.UTC)
	if !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("err = %v, want ErrInvalidTemplate", err)
	}
}

func TestOpenFlagOrderable(t *testing.T) {
	flag := OpenFlag{
		MarketID:      "m1",
		LocalDate:     "2025-01-07",
		IsOpen:        true,
		CutoffMinutes: 30,
		Start:         tuesday(11, 0),
		End:           tuesday(15, 0),
	}
	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", tuesday(10, 0), true},
		{"during window", tuesday(13, 0), true},
		{"just before cutoff", tuesday(14, 29), true},
		{"at cutoff", tuesday(14, 30), false},
		{"after cutoff before end", tuesday(14, 45), false},
		{"after end", tuesday(15, 30), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := flag.Orderable(tc.now); got != tc.want {
				t.Errorf("Orderable(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}

	closed := flag
	closed.IsOpen = false
	if closed.Orderable(tuesday(13, 0)) {
		t.Error("closed flag reported orderable")
	}

	noCutoff := flag
	noCutoff.CutoffMinutes = 0
	if !noCutoff.Orderable(tuesday(14, 59)) {
		t.Error("zero cutoff should allow ordering until end")
	}
}
