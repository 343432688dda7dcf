package dbmodels

import (
	"time"

	"vessel-works-backend/models"
)

// WorkFormEntry is one row of structured inspection data tied to a
// vessel component, edited collaboratively in real time.
type WorkFormEntry struct {
	BaseModel
	WorkOrderID       string           `gorm:"index" json:"work_order_id"`
	VesselComponentID string           `gorm:"index" json:"vessel_component_id"`
	VesselComponent   *VesselComponent `json:"vessel_component,omitempty"`

	Condition         string   `json:"condition"`
	FoulingRating     *int     `json:"fouling_rating,omitempty"`
	FoulingType       string   `json:"fouling_type"`
	Coverage          *int     `json:"coverage,omitempty"`
	CoatingCondition  string   `json:"coating_condition"`
	CorrosionType     string   `json:"corrosion_type"`
	CorrosionSeverity string   `json:"corrosion_severity"`
	Notes             string   `json:"notes"`
	Recommendation    string   `json:"recommendation"`
	ActionRequired    string   `json:"action_required"`
	MeasurementType   string   `json:"measurement_type"`
	MeasurementValue  *float64 `json:"measurement_value,omitempty"`
	MeasurementUnit   string   `json:"measurement_unit"`

	Status models.FormEntryStatus `json:"status"`
	// Attachments is a serialized JSON array of media IDs.
	Attachments string     `json:"attachments"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy *string    `json:"completed_by,omitempty"`
}
