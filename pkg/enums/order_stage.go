package enums

import "fmt"

// OrderStage is the coarse grouping of order statuses used for filtering and reporting.
type OrderStage string

const (
	StagePreProduction OrderStage = "pre_production"
	StageProduction    OrderStage = "production"
	StageFulfillment   OrderStage = "fulfillment"
	StageFinal         OrderStage = "final"
)

var validOrderStages = []OrderStage{
	StagePreProduction,
	StageProduction,
	StageFulfillment,
	StageFinal,
}

// String implements fmt.Stringer.
func (s OrderStage) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStage.
func (s OrderStage) IsValid() bool {
	for _, candidate := range validOrderStages {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStage converts raw input into an OrderStage.
func ParseOrderStage(value string) (OrderStage, error) {
	for _, candidate := range validOrderStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order stage %q", value)
}
