package workorderapimodels

import (
	"time"

	"github.com/pkg/errors"

	"vessel-works-backend/models"
	apimodels "vessel-works-backend/models/api"
	dbmodels "vessel-works-backend/models/db"
)

type WorkOrderCreateData struct {
	VesselID            string                   `json:"vessel_id"`
	Title               string                   `json:"title"`
	Type                models.WorkOrderType     `json:"type"`
	Priority            models.WorkOrderPriority `json:"priority"`
	Description         string                   `json:"description"`
	Location            string                   `json:"location"`
	Latitude            *float64                 `json:"latitude,omitempty"`
	Longitude           *float64                 `json:"longitude,omitempty"`
	RegulatoryRef       string                   `json:"regulatory_ref"`
	WorkflowID          string                   `json:"workflow_id,omitempty"`
	ComplianceFramework []string                 `json:"compliance_framework,omitempty"`
	Metadata            map[string]interface{}   `json:"metadata,omitempty"`
	ScheduledStart      *time.Time               `json:"scheduled_start,omitempty"`
	ScheduledEnd        *time.Time               `json:"scheduled_end,omitempty"`
}

func (d WorkOrderCreateData) Validate() error {
	if d.VesselID == "" {
		return errors.New("vessel_id is required")
	}
	if d.Title == "" {
		return errors.New("title is required")
	}
	if d.Type == "" {
		return errors.New("type is required")
	}
	return nil
}

// WorkOrderUpdateData carries the mutable fields; anything outside the
// allow-list in the handler is dropped, not rejected.
type WorkOrderUpdateData map[string]interface{}

type StatusChangeData struct {
	Status models.WorkOrderStatus `json:"status"`
	Reason string                 `json:"reason,omitempty"`
}

func (d StatusChangeData) Validate() error {
	if d.Status == "" {
		return errors.New("status is required")
	}
	return nil
}

type AssignData struct {
	UserID string                `json:"user_id"`
	Role   models.AssignmentRole `json:"role"`
}

func (d AssignData) Validate() error {
	if d.UserID == "" {
		return errors.New("user_id is required")
	}
	if !d.Role.IsValid() {
		return errors.New("unknown assignment role")
	}
	return nil
}

type WorkOrderFilter struct {
	apimodels.Pagination
	Search   string                   `json:"search,omitempty"`
	Status   models.WorkOrderStatus   `json:"status,omitempty"`
	Type     models.WorkOrderType     `json:"type,omitempty"`
	VesselID string                   `json:"vessel_id,omitempty"`
	Priority models.WorkOrderPriority `json:"priority,omitempty"`
}

type AssignmentView struct {
	UserID   string                `json:"user_id"`
	UserName string                `json:"user_name"`
	Email    string                `json:"email"`
	Role     models.AssignmentRole `json:"role"`
}

type WorkOrderView struct {
	ID              string                   `json:"id"`
	ReferenceNumber string                   `json:"reference_number"`
	VesselID        string                   `json:"vessel_id"`
	VesselName      string                   `json:"vessel_name,omitempty"`
	Title           string                   `json:"title"`
	Type            models.WorkOrderType     `json:"type"`
	Priority        models.WorkOrderPriority `json:"priority"`
	Status          models.WorkOrderStatus   `json:"status"`
	Description     string                   `json:"description,omitempty"`
	Location        string                   `json:"location,omitempty"`
	WorkflowID      *string                  `json:"workflow_id,omitempty"`
	CurrentStepID   *string                  `json:"current_step_id,omitempty"`
	ScheduledStart  *time.Time               `json:"scheduled_start,omitempty"`
	ScheduledEnd    *time.Time               `json:"scheduled_end,omitempty"`
	ActualStart     *time.Time               `json:"actual_start,omitempty"`
	ActualEnd       *time.Time               `json:"actual_end,omitempty"`
	CompletedAt     *time.Time               `json:"completed_at,omitempty"`
	Assignments     []AssignmentView         `json:"assignments,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

func WorkOrderConvert(rec dbmodels.WorkOrder) WorkOrderView {
	view := WorkOrderView{
		ID:              rec.ID,
		ReferenceNumber: rec.ReferenceNumber,
		VesselID:        rec.VesselID,
		Title:           rec.Title,
		Type:            rec.Type,
		Priority:        rec.Priority,
		Status:          rec.Status,
		Description:     rec.Description,
		Location:        rec.Location,
		WorkflowID:      rec.WorkflowID,
		CurrentStepID:   rec.CurrentStepID,
		ScheduledStart:  rec.ScheduledStart,
		ScheduledEnd:    rec.ScheduledEnd,
		ActualStart:     rec.ActualStart,
		ActualEnd:       rec.ActualEnd,
		CompletedAt:     rec.CompletedAt,
		CreatedAt:       rec.CreatedAt,
	}
	if rec.Vessel != nil {
		view.VesselName = rec.Vessel.Name
	}
	for _, assignment := range rec.Assignments {
		item := AssignmentView{
			UserID: assignment.UserID,
			Role:   assignment.Role,
		}
		if assignment.User != nil {
			item.UserName = assignment.User.GetFullName()
			item.Email = assignment.User.Email
		}
		view.Assignments = append(view.Assignments, item)
	}
	return view
}

type RoomStatusView struct {
	WorkOrderID string `json:"workOrderId"`
	Count       int    `json:"count"`
	IsActive    bool   `json:"isActive"`
}
