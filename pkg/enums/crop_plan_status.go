package enums

import "fmt"

// CropPlanStatus tracks the lifecycle of a production requirement.
type CropPlanStatus string

const (
	CropPlanStatusDraft     CropPlanStatus = "draft"
	CropPlanStatusActive    CropPlanStatus = "active"
	CropPlanStatusCompleted CropPlanStatus = "completed"
	CropPlanStatusCancelled CropPlanStatus = "cancelled"
)

var validCropPlanStatuses = []CropPlanStatus{
	CropPlanStatusDraft,
	CropPlanStatusActive,
	CropPlanStatusCompleted,
	CropPlanStatusCancelled,
}

// String implements fmt.Stringer.
func (s CropPlanStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CropPlanStatus.
func (s CropPlanStatus) IsValid() bool {
	for _, candidate := range validCropPlanStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCropPlanStatus converts raw input into a CropPlanStatus.
func ParseCropPlanStatus(value string) (CropPlanStatus, error) {
	for _, candidate := range validCropPlanStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid crop plan status %q", value)
}
