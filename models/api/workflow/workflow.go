package workflowapimodels

import (
	"time"

	"vessel-works-backend/models"
	dbmodels "vessel-works-backend/models/db"
)

type TaskSubmitData struct {
	Data      map[string]interface{} `json:"data,omitempty"`
	Notes     string                 `json:"notes,omitempty"`
	Signature string                 `json:"signature,omitempty"`
}

type TaskReviewData struct {
	Notes string `json:"notes,omitempty"`
}

type TaskView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Order      int             `json:"order"`
	TaskType   models.TaskType `json:"task_type"`
	IsRequired bool            `json:"is_required"`
}

type StepView struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Order        int                    `json:"order"`
	Type         models.StepType        `json:"type"`
	RequiredRole *models.AssignmentRole `json:"required_role,omitempty"`
	AutoAdvance  bool                   `json:"auto_advance"`
	Tasks        []TaskView             `json:"tasks"`
}

type WorkflowView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsTemplate  bool       `json:"is_template"`
	IsActive    bool       `json:"is_active"`
	Steps       []StepView `json:"steps"`
}

type SubmissionView struct {
	ID          string                  `json:"id"`
	TaskID      string                  `json:"task_id"`
	WorkOrderID string                  `json:"work_order_id"`
	UserID      string                  `json:"user_id"`
	Status      models.SubmissionStatus `json:"status"`
	Notes       string                  `json:"notes,omitempty"`
	SubmittedAt time.Time               `json:"submitted_at"`
	ReviewedAt  *time.Time              `json:"reviewed_at,omitempty"`
	ReviewedBy  *string                 `json:"reviewed_by,omitempty"`
	ReviewNotes string                  `json:"review_notes,omitempty"`
}

func SubmissionConvert(rec dbmodels.TaskSubmission) SubmissionView {
	return SubmissionView{
		ID:          rec.ID,
		TaskID:      rec.TaskID,
		WorkOrderID: rec.WorkOrderID,
		UserID:      rec.UserID,
		Status:      rec.Status,
		Notes:       rec.Notes,
		SubmittedAt: rec.SubmittedAt,
		ReviewedAt:  rec.ReviewedAt,
		ReviewedBy:  rec.ReviewedBy,
		ReviewNotes: rec.ReviewNotes,
	}
}

func WorkflowConvert(rec dbmodels.Workflow) WorkflowView {
	view := WorkflowView{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		IsTemplate:  rec.IsTemplate,
		IsActive:    rec.IsActive,
		Steps:       make([]StepView, 0, len(rec.Steps)),
	}
	for _, step := range rec.Steps {
		stepView := StepView{
			ID:           step.ID,
			Name:         step.Name,
			Order:        step.Order,
			Type:         step.Type,
			RequiredRole: step.RequiredRole,
			AutoAdvance:  step.AutoAdvance,
			Tasks:        make([]TaskView, 0, len(step.Tasks)),
		}
		for _, task := range step.Tasks {
			stepView.Tasks = append(stepView.Tasks, TaskView{
				ID:         task.ID,
				Name:       task.Name,
				Order:      task.Order,
				TaskType:   task.TaskType,
				IsRequired: task.IsRequired,
			})
		}
		view.Steps = append(view.Steps, stepView)
	}
	return view
}
