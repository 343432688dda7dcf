package models

type WorkOrderStatus string

const (
	WOStatusDraft           WorkOrderStatus = "DRAFT"
	WOStatusPendingApproval WorkOrderStatus = "PENDING_APPROVAL"
	WOStatusApproved        WorkOrderStatus = "APPROVED"
	WOStatusInProgress      WorkOrderStatus = "IN_PROGRESS"
	WOStatusAwaitingReview  WorkOrderStatus = "AWAITING_REVIEW"
	WOStatusUnderReview     WorkOrderStatus = "UNDER_REVIEW"
	WOStatusOnHold          WorkOrderStatus = "ON_HOLD"
	WOStatusCompleted       WorkOrderStatus = "COMPLETED"
	WOStatusCancelled       WorkOrderStatus = "CANCELLED"
)

// validTransitions is the full lifecycle table. Directed, no implicit
// reverse edges. Workflow-driven completion does not consult this table,
// see lib/workflow.
var validTransitions = map[WorkOrderStatus][]WorkOrderStatus{
	WOStatusDraft:           {WOStatusPendingApproval, WOStatusCancelled},
	WOStatusPendingApproval: {WOStatusApproved, WOStatusCancelled},
	WOStatusApproved:        {WOStatusInProgress, WOStatusCancelled},
	WOStatusInProgress:      {WOStatusAwaitingReview, WOStatusOnHold, WOStatusCancelled},
	WOStatusAwaitingReview:  {WOStatusUnderReview},
	WOStatusUnderReview:     {WOStatusCompleted, WOStatusInProgress},
	WOStatusOnHold:          {WOStatusInProgress, WOStatusCancelled},
	WOStatusCompleted:       {},
	WOStatusCancelled:       {},
}

func (s WorkOrderStatus) IsAllowChange(newStatus WorkOrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == newStatus {
			return true
		}
	}
	return false
}

func (s WorkOrderStatus) IsTerminal() bool {
	return s == WOStatusCompleted || s == WOStatusCancelled
}

type WorkOrderType string

const (
	WOTypeInspection  WorkOrderType = "INSPECTION"
	WOTypeHullClean   WorkOrderType = "HULL_CLEAN"
	WOTypeMaintenance WorkOrderType = "MAINTENANCE"
	WOTypeSurvey      WorkOrderType = "SURVEY"
)

type WorkOrderPriority string

const (
	WOPriorityLow    WorkOrderPriority = "LOW"
	WOPriorityNormal WorkOrderPriority = "NORMAL"
	WOPriorityHigh   WorkOrderPriority = "HIGH"
	WOPriorityUrgent WorkOrderPriority = "URGENT"
)

type StepType string

const (
	StepTypeDataCapture      StepType = "DATA_CAPTURE"
	StepTypeReview           StepType = "REVIEW"
	StepTypeParallelReview   StepType = "PARALLEL_REVIEW"
	StepTypeReportGeneration StepType = "REPORT_GENERATION"
	StepTypeNotification     StepType = "NOTIFICATION"
)

// IsReview reports whether completing the step's tasks requires an
// explicit approval rather than a bare submission.
func (t StepType) IsReview() bool {
	return t == StepTypeReview || t == StepTypeParallelReview
}

type TaskType string

const (
	TaskTypeChecklist        TaskType = "CHECKLIST"
	TaskTypeFileUpload       TaskType = "FILE_UPLOAD"
	TaskTypeInspectionRecord TaskType = "INSPECTION_RECORD"
	TaskTypePhotoCapture     TaskType = "PHOTO_CAPTURE"
	TaskTypeNote             TaskType = "NOTE"
	TaskTypeFormFill         TaskType = "FORM_FILL"
	TaskTypeApproval         TaskType = "APPROVAL"
	TaskTypeSignature        TaskType = "SIGNATURE"
)

type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionApproved  SubmissionStatus = "APPROVED"
	SubmissionRejected  SubmissionStatus = "REJECTED"
)

type FormEntryStatus string

const (
	FormEntryPending    FormEntryStatus = "PENDING"
	FormEntryInProgress FormEntryStatus = "IN_PROGRESS"
	FormEntryCompleted  FormEntryStatus = "COMPLETED"
)
