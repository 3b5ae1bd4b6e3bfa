package availability

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsWeekend(t *testing.T) {
	cases := []struct {
		day  time.Time
		want bool
	}{
		{date(2024, 6, 10), false}, // Monday
		{date(2024, 6, 14), false}, // Friday
		{date(2024, 6, 15), true},  // Saturday
		{date(2024, 6, 16), true},  // Sunday
	}

	for _, tc := range cases {
		if got := IsWeekend(tc.day); got != tc.want {
			t.Errorf("IsWeekend(%s) = %v, want %v", tc.day.Format(DateLayout), got, tc.want)
		}
	}
}

func TestIsPastDate(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)

	if !IsPastDate(date(2024, 6, 9), now) {
		t.Error("yesterday should be past")
	}
	if IsPastDate(date(2024, 6, 10), now) {
		t.Error("today should not be past, even late in the day")
	}
	if IsPastDate(date(2024, 6, 11), now) {
		t.Error("tomorrow should not be past")
	}
	// time-of-day on the candidate must not matter
	if IsPastDate(time.Date(2024, 6, 10, 0, 0, 1, 0, time.UTC), now) {
		t.Error("today with a time component should not be past")
	}
}

func TestWeekDatesAlwaysFiveWeekdays(t *testing.T) {
	// property: any start date yields exactly 5 dates, none on a weekend
	start := date(2024, 1, 1)
	for i := 0; i < 60; i++ {
		ref := start.AddDate(0, 0, i)

		got := WeekDates(ref)
		if len(got) != 5 {
			t.Fatalf("WeekDates(%s) returned %d dates, want 5", ref.Format(DateLayout), len(got))
		}
		for _, d := range got {
			if IsWeekend(d) {
				t.Errorf("WeekDates(%s) contains weekend day %s", ref.Format(DateLayout), d.Format(DateLayout))
			}
		}
	}
}

func TestWeekDatesSkipsWeekend(t *testing.T) {
	// Friday 2024-06-14: Fri, Mon, Tue, Wed, Thu
	got := WeekDates(date(2024, 6, 14))

	want := []time.Time{
		date(2024, 6, 14),
		date(2024, 6, 17),
		date(2024, 6, 18),
		date(2024, 6, 19),
		date(2024, 6, 20),
	}

	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("WeekDates[%d] = %s, want %s", i, got[i].Format(DateLayout), want[i].Format(DateLayout))
		}
	}
}

func TestMonthGrid(t *testing.T) {
	cases := []struct {
		cursor           time.Time
		wantPlaceholders int
		wantDays         int
	}{
		{date(2024, 6, 15), 6, 30},  // June 2024 starts on Saturday
		{date(2024, 9, 1), 0, 30},   // September 2024 starts on Sunday
		{date(2024, 2, 10), 4, 29},  // leap February starts on Thursday
		{date(2023, 2, 10), 3, 28},  // non-leap February
		{date(2024, 12, 31), 0, 31}, // December 2024 starts on Sunday
	}

	for _, tc := range cases {
		placeholders, days := MonthGrid(tc.cursor)

		if placeholders != tc.wantPlaceholders {
			t.Errorf("MonthGrid(%s) placeholders = %d, want %d",
				tc.cursor.Format(DateLayout), placeholders, tc.wantPlaceholders)
		}
		if len(days) != tc.wantDays {
			t.Errorf("MonthGrid(%s) days = %d, want %d",
				tc.cursor.Format(DateLayout), len(days), tc.wantDays)
		}

		for i, d := range days {
			if d.Day() != i+1 {
				t.Fatalf("MonthGrid(%s) days[%d] = %s, want day %d",
					tc.cursor.Format(DateLayout), i, d.Format(DateLayout), i+1)
			}
		}
	}
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		cursor time.Time
		n      int
		want   time.Time
	}{
		{date(2024, 6, 15), 1, date(2024, 7, 1)},
		{date(2024, 6, 15), -1, date(2024, 5, 1)},
		{date(2024, 1, 31), 1, date(2024, 2, 1)},  // day overflow must not skip February
		{date(2024, 12, 5), 1, date(2025, 1, 1)},  // year rollover forward
		{date(2024, 1, 5), -1, date(2023, 12, 1)}, // year rollover backward
		{date(2024, 6, 1), -24, date(2022, 6, 1)}, // unbounded navigation
	}

	for _, tc := range cases {
		if got := AddMonths(tc.cursor, tc.n); !got.Equal(tc.want) {
			t.Errorf("AddMonths(%s, %d) = %s, want %s",
				tc.cursor.Format(DateLayout), tc.n, got.Format(DateLayout), tc.want.Format(DateLayout))
		}
	}
}

func TestDateRoundTrip(t *testing.T) {
	orig := date(2024, 12, 25)

	parsed, err := time.ParseInLocation(DateLayout, orig.Format(DateLayout), time.UTC)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}

	if !SameDay(orig, parsed) {
		t.Errorf("round trip changed the day: %s -> %s", orig, parsed)
	}
}
