package enums

import "fmt"

// OrderStatusCode identifies an entry in the order status catalog.
type OrderStatusCode string

const (
	OrderStatusTemplate         OrderStatusCode = "template"
	OrderStatusPending          OrderStatusCode = "pending"
	OrderStatusConfirmed        OrderStatusCode = "confirmed"
	OrderStatusProcessing       OrderStatusCode = "processing"
	OrderStatusGrowing          OrderStatusCode = "growing"
	OrderStatusReadyToHarvest   OrderStatusCode = "ready_to_harvest"
	OrderStatusHarvesting       OrderStatusCode = "harvesting"
	OrderStatusPacking          OrderStatusCode = "packing"
	OrderStatusReadyForDelivery OrderStatusCode = "ready_for_delivery"
	OrderStatusDelivered        OrderStatusCode = "delivered"
	OrderStatusCompleted        OrderStatusCode = "completed"
	OrderStatusCancelled        OrderStatusCode = "cancelled"
)

var validOrderStatusCodes = []OrderStatusCode{
	OrderStatusTemplate,
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusGrowing,
	OrderStatusReadyToHarvest,
	OrderStatusHarvesting,
	OrderStatusPacking,
	OrderStatusReadyForDelivery,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (c OrderStatusCode) String() string {
	return string(c)
}

// IsValid reports whether the value is a known OrderStatusCode.
func (c OrderStatusCode) IsValid() bool {
	for _, candidate := range validOrderStatusCodes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseOrderStatusCode converts raw input into an OrderStatusCode.
func ParseOrderStatusCode(value string) (OrderStatusCode, error) {
	for _, candidate := range validOrderStatusCodes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status code %q", value)
}
