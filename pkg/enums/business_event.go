package enums

import "fmt"

// BusinessEventType names an inbound production or payment event consumed by
// the event router.
type BusinessEventType string

const (
	BusinessEventCropPlanted      BusinessEventType = "crop.planted"
	BusinessEventCropsReady       BusinessEventType = "crops.ready"
	BusinessEventHarvestCompleted BusinessEventType = "harvest.completed"
	BusinessEventPackingCompleted BusinessEventType = "packing.completed"
	BusinessEventPaymentReceived  BusinessEventType = "payment.received"
)

var validBusinessEventTypes = []BusinessEventType{
	BusinessEventCropPlanted,
	BusinessEventCropsReady,
	BusinessEventHarvestCompleted,
	BusinessEventPackingCompleted,
	BusinessEventPaymentReceived,
}

// String implements fmt.Stringer.
func (b BusinessEventType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BusinessEventType.
func (b BusinessEventType) IsValid() bool {
	for _, candidate := range validBusinessEventTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBusinessEventType converts raw input into a BusinessEventType.
func ParseBusinessEventType(value string) (BusinessEventType, error) {
	for _, candidate := range validBusinessEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid business event type %q", value)
}
