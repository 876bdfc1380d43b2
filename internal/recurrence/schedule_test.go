package recurrence

import (
	"testing"
	"time"

	"github.com/sproutlane/microfarm-backend/pkg/enums"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestNextGenerationDateWeekly(t *testing.T) {
	next, err := NextGenerationDate(date(2025, time.January, 1), enums.FrequencyWeekly, 1)
	if err != nil {
		t.Fatalf("NextGenerationDate: %v", err)
	}
	if !next.Equal(date(2025, time.January, 8)) {
		t.Fatalf("expected 2025-01-08, got %s", next)
	}
}

func TestNextGenerationDateBiweekly(t *testing.T) {
	cases := []struct {
		interval int
		want     time.Time
	}{
		{interval: 2, want: date(2025, time.March, 17)},
		{interval: 3, want: date(2025, time.March, 24)},
		// Unset interval defaults to two weeks.
		{interval: 0, want: date(2025, time.March, 17)},
	}
	for _, tc := range cases {
		next, err := NextGenerationDate(date(2025, time.March, 3), enums.FrequencyBiweekly, tc.interval)
		if err != nil {
			t.Fatalf("NextGenerationDate interval=%d: %v", tc.interval, err)
		}
		if !next.Equal(tc.want) {
			t.Fatalf("interval=%d: expected %s, got %s", tc.interval, tc.want, next)
		}
	}
}

func TestNextGenerationDateMonthlyClampsAtMonthEnd(t *testing.T) {
	// Non-leap year: Jan 31 -> Feb 28, never Mar 2/3.
	next, err := NextGenerationDate(date(2025, time.January, 31), enums.FrequencyMonthly, 1)
	if err != nil {
		t.Fatalf("NextGenerationDate: %v", err)
	}
	if !next.Equal(date(2025, time.February, 28)) {
		t.Fatalf("expected 2025-02-28, got %s", next)
	}

	// Leap year: Jan 31 -> Feb 29.
	next, err = NextGenerationDate(date(2024, time.January, 31), enums.FrequencyMonthly, 1)
	if err != nil {
		t.Fatalf("NextGenerationDate: %v", err)
	}
	if !next.Equal(date(2024, time.February, 29)) {
		t.Fatalf("expected 2024-02-29, got %s", next)
	}
}

func TestNextGenerationDateMonthlyPreservesDay(t *testing.T) {
	next, err := NextGenerationDate(date(2025, time.April, 15), enums.FrequencyMonthly, 1)
	if err != nil {
		t.Fatalf("NextGenerationDate: %v", err)
	}
	if !next.Equal(date(2025, time.May, 15)) {
		t.Fatalf("expected 2025-05-15, got %s", next)
	}
}

func TestNextGenerationDateQuarterly(t *testing.T) {
	next, err := NextGenerationDate(date(2025, time.November, 30), enums.FrequencyQuarterly, 1)
	if err != nil {
		t.Fatalf("NextGenerationDate: %v", err)
	}
	if !next.Equal(date(2026, time.February, 28)) {
		t.Fatalf("expected 2026-02-28, got %s", next)
	}
}

func TestNextGenerationDateInvalidFrequency(t *testing.T) {
	if _, err := NextGenerationDate(date(2025, time.January, 1), "hourly", 1); err == nil {
		t.Fatalf("expected error for invalid frequency")
	}
}
