package dbmodels

import (
	"time"

	"vessel-works-backend/models"
)

// Workflow is a reusable, named template owning an ordered list of steps.
type Workflow struct {
	BaseOrgModel
	Name        string         `json:"name"`
	Description string         `json:"description"`
	IsTemplate  bool           `gorm:"default:false" json:"is_template"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	Steps       []WorkflowStep `gorm:"foreignKey:WorkflowID" json:"steps,omitempty"`
}

type WorkflowStep struct {
	BaseModel
	WorkflowID string `gorm:"index" json:"workflow_id"`
	Name       string `json:"name"`
	// Order ties within one workflow must not occur; advancement picks
	// the next step by position in the order-sorted list.
	Order        int                    `gorm:"column:step_order" json:"order"`
	Type         models.StepType        `json:"type"`
	RequiredRole *models.AssignmentRole `json:"required_role,omitempty"`
	AutoAdvance  bool                   `gorm:"default:false" json:"auto_advance"`
	Tasks        []Task                 `gorm:"foreignKey:StepID" json:"tasks,omitempty"`
}

type Task struct {
	BaseModel
	StepID     string          `gorm:"index" json:"step_id"`
	Name       string          `json:"name"`
	Order      int             `gorm:"column:task_order" json:"order"`
	TaskType   models.TaskType `json:"task_type"`
	IsRequired bool            `gorm:"default:false" json:"is_required"`
}

type TaskSubmission struct {
	BaseModel
	TaskID      string                  `gorm:"index" json:"task_id"`
	WorkOrderID string                  `gorm:"index" json:"work_order_id"`
	UserID      string                  `json:"user_id"`
	Data        string                  `json:"data"`
	Notes       string                  `json:"notes"`
	Signature   string                  `json:"signature"`
	Status      models.SubmissionStatus `gorm:"index" json:"status"`
	SubmittedAt time.Time               `json:"submitted_at"`
	ReviewedAt  *time.Time              `json:"reviewed_at,omitempty"`
	ReviewedBy  *string                 `json:"reviewed_by,omitempty"`
	ReviewNotes string                  `json:"review_notes"`
}
