package enums

import "fmt"

// RecurringFrequency is the generation cadence of a recurring template.
type RecurringFrequency string

const (
	FrequencyWeekly    RecurringFrequency = "weekly"
	FrequencyBiweekly  RecurringFrequency = "biweekly"
	FrequencyMonthly   RecurringFrequency = "monthly"
	FrequencyQuarterly RecurringFrequency = "quarterly"
)

var validRecurringFrequencies = []RecurringFrequency{
	FrequencyWeekly,
	FrequencyBiweekly,
	FrequencyMonthly,
	FrequencyQuarterly,
}

// String implements fmt.Stringer.
func (f RecurringFrequency) String() string {
	return string(f)
}

// IsValid reports whether the value is a known RecurringFrequency.
func (f RecurringFrequency) IsValid() bool {
	for _, candidate := range validRecurringFrequencies {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseRecurringFrequency converts raw input into a RecurringFrequency.
func ParseRecurringFrequency(value string) (RecurringFrequency, error) {
	for _, candidate := range validRecurringFrequencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid recurring frequency %q", value)
}
