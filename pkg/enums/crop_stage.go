package enums

import "fmt"

// CropStage tracks an individual tray from seeding through harvest.
type CropStage string

const (
	CropStagePlanted        CropStage = "planted"
	CropStageGrowing        CropStage = "growing"
	CropStageReadyToHarvest CropStage = "ready_to_harvest"
	CropStageHarvesting     CropStage = "harvesting"
	CropStageHarvested      CropStage = "harvested"
	CropStageCancelled      CropStage = "cancelled"
)

var validCropStages = []CropStage{
	CropStagePlanted,
	CropStageGrowing,
	CropStageReadyToHarvest,
	CropStageHarvesting,
	CropStageHarvested,
	CropStageCancelled,
}

// String implements fmt.Stringer.
func (s CropStage) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CropStage.
func (s CropStage) IsValid() bool {
	for _, candidate := range validCropStages {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCropStage converts raw input into a CropStage.
func ParseCropStage(value string) (CropStage, error) {
	for _, candidate := range validCropStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid crop stage %q", value)
}
