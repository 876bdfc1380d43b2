package recurrence

import (
	"time"

	"github.com/sproutlane/microfarm-backend/pkg/enums"
	pkgerrors "github.com/sproutlane/microfarm-backend/pkg/errors"
)

// NextGenerationDate steps one cadence forward from the given base date.
// Monthly and quarterly steps preserve the day of month, clamped at month
// end: Jan 31 + 1 month lands on Feb 28 (29 in leap years), never Mar 2/3.
func NextGenerationDate(base time.Time, frequency enums.RecurringFrequency, interval int) (time.Time, error) {
	base = base.UTC().Truncate(24 * time.Hour)
	switch frequency {
	case enums.FrequencyWeekly:
		return base.AddDate(0, 0, 7), nil
	case enums.FrequencyBiweekly:
		weeks := interval
		if weeks <= 0 {
			weeks = 2
		}
		return base.AddDate(0, 0, 7*weeks), nil
	case enums.FrequencyMonthly:
		return addMonthsClamped(base, 1), nil
	case enums.FrequencyQuarterly:
		return addMonthsClamped(base, 3), nil
	default:
		return time.Time{}, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid recurring frequency %q", frequency)
	}
}

// addMonthsClamped avoids time.AddDate's month overflow (Jan 31 + 1 month
// would normalize to Mar 2/3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, time.UTC)
}
