package formapimodels

import (
	"encoding/json"
	"time"

	"vessel-works-backend/models"
	dbmodels "vessel-works-backend/models/db"
)

// FormEntryView uses the collaborative wire naming (camelCase field
// keys); real-time field updates address these exact names.
type FormEntryView struct {
	ID                string                 `json:"id"`
	WorkOrderID       string                 `json:"workOrderId"`
	ComponentID       string                 `json:"componentId"`
	ComponentName     string                 `json:"componentName,omitempty"`
	ComponentCategory string                 `json:"componentCategory,omitempty"`
	Condition         string                 `json:"condition,omitempty"`
	FoulingRating     *int                   `json:"foulingRating,omitempty"`
	FoulingType       string                 `json:"foulingType,omitempty"`
	Coverage          *int                   `json:"coverage,omitempty"`
	CoatingCondition  string                 `json:"coatingCondition,omitempty"`
	CorrosionType     string                 `json:"corrosionType,omitempty"`
	CorrosionSeverity string                 `json:"corrosionSeverity,omitempty"`
	Notes             string                 `json:"notes,omitempty"`
	Recommendation    string                 `json:"recommendation,omitempty"`
	ActionRequired    string                 `json:"actionRequired,omitempty"`
	MeasurementType   string                 `json:"measurementType,omitempty"`
	MeasurementValue  *float64               `json:"measurementValue,omitempty"`
	MeasurementUnit   string                 `json:"measurementUnit,omitempty"`
	Status            models.FormEntryStatus `json:"status"`
	Attachments       []string               `json:"attachments"`
	CompletedAt       *time.Time             `json:"completedAt,omitempty"`
	CompletedBy       *string                `json:"completedBy,omitempty"`
}

func FormEntryConvert(rec dbmodels.WorkFormEntry) FormEntryView {
	view := FormEntryView{
		ID:                rec.ID,
		WorkOrderID:       rec.WorkOrderID,
		ComponentID:       rec.VesselComponentID,
		Condition:         rec.Condition,
		FoulingRating:     rec.FoulingRating,
		FoulingType:       rec.FoulingType,
		Coverage:          rec.Coverage,
		CoatingCondition:  rec.CoatingCondition,
		CorrosionType:     rec.CorrosionType,
		CorrosionSeverity: rec.CorrosionSeverity,
		Notes:             rec.Notes,
		Recommendation:    rec.Recommendation,
		ActionRequired:    rec.ActionRequired,
		MeasurementType:   rec.MeasurementType,
		MeasurementValue:  rec.MeasurementValue,
		MeasurementUnit:   rec.MeasurementUnit,
		Status:            rec.Status,
		Attachments:       []string{},
		CompletedAt:       rec.CompletedAt,
		CompletedBy:       rec.CompletedBy,
	}
	if rec.VesselComponent != nil {
		view.ComponentName = rec.VesselComponent.Name
		view.ComponentCategory = rec.VesselComponent.Category
	}
	if rec.Attachments != "" {
		// A corrupt attachments payload degrades to an empty list.
		_ = json.Unmarshal([]byte(rec.Attachments), &view.Attachments)
	}
	return view
}
