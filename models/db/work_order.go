package dbmodels

import (
	"time"

	"vessel-works-backend/models"
)

type WorkOrder struct {
	BaseOrgModel
	ReferenceNumber string                   `gorm:"uniqueIndex" json:"reference_number"`
	VesselID        string                   `gorm:"index" json:"vessel_id"`
	Vessel          *Vessel                  `json:"vessel,omitempty"`
	Title           string                   `json:"title"`
	Type            models.WorkOrderType     `json:"type"`
	Priority        models.WorkOrderPriority `json:"priority"`
	Status          models.WorkOrderStatus   `gorm:"index" json:"status"`
	Description     string                   `json:"description"`
	Location        string                   `json:"location"`
	Latitude        *float64                 `json:"latitude,omitempty"`
	Longitude       *float64                 `json:"longitude,omitempty"`
	RegulatoryRef   string                   `json:"regulatory_ref"`
	// ComplianceFramework and Metadata are serialized JSON payloads,
	// opaque to the lifecycle.
	ComplianceFramework string  `json:"compliance_framework"`
	Metadata            *string `json:"metadata,omitempty"`

	WorkflowID    *string   `gorm:"index" json:"workflow_id,omitempty"`
	Workflow      *Workflow `json:"workflow,omitempty"`
	CurrentStepID *string   `json:"current_step_id,omitempty"`

	ScheduledStart *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduled_end,omitempty"`
	ActualStart    *time.Time `json:"actual_start,omitempty"`
	ActualEnd      *time.Time `json:"actual_end,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`

	IsDeleted bool `gorm:"default:false;index" json:"is_deleted"`

	Assignments     []WorkOrderAssignment `gorm:"foreignKey:WorkOrderID" json:"assignments,omitempty"`
	TaskSubmissions []TaskSubmission      `gorm:"foreignKey:WorkOrderID" json:"task_submissions,omitempty"`
}

type WorkOrderAssignment struct {
	BaseModel
	WorkOrderID string                `gorm:"index;uniqueIndex:idx_wo_user" json:"work_order_id"`
	UserID      string                `gorm:"uniqueIndex:idx_wo_user" json:"user_id"`
	User        *User                 `json:"user,omitempty"`
	Role        models.AssignmentRole `json:"role"`
}
