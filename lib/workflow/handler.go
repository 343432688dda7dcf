package workflowhandler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"vessel-works-backend/db"
	"vessel-works-backend/lib/apperr"
	audithandler "vessel-works-backend/lib/audit"
	workflowstore "vessel-works-backend/lib/workflow/store"
	submissionstore "vessel-works-backend/lib/workflow/submission-store"
	workorderstore "vessel-works-backend/lib/workorder/store"
	"vessel-works-backend/models"
	workflowapimodels "vessel-works-backend/models/api/workflow"
	dbmodels "vessel-works-backend/models/db"
)

// Notifier is told when advancement enters a step that needs human
// attention. A nil notifier disables notifications.
type Notifier interface {
	StepEntered(workOrder dbmodels.WorkOrder, step dbmodels.WorkflowStep)
	WorkflowCompleted(workOrder dbmodels.WorkOrder)
}

type Provider interface {
	InitializeWorkflow(organisationID, workOrderID, workflowID, actorID string) error
	SubmitTask(workOrderID, taskID, actorID string, data workflowapimodels.TaskSubmitData) (submissionID string, err error)
	ApproveTask(workOrderID, taskID, actorID, notes string) error
	RejectTask(workOrderID, taskID, actorID, notes string) error
	// CheckAndAdvance re-evaluates the current step against a fresh
	// snapshot and moves the work order forward as far as it can go.
	CheckAndAdvance(workOrderID string) error
	GetWorkflowTemplates() ([]workflowapimodels.WorkflowView, error)
	GetWorkflow(id string) (workflowapimodels.WorkflowView, error)
	ListSubmissions(workOrderID string) ([]workflowapimodels.SubmissionView, error)
}

var Instance Provider

func NewHandler(notifier Notifier) {
	Instance = impl{
		workOrderStore:  workorderstore.NewInstance(db.DB),
		workflowStore:   workflowstore.NewInstance(db.DB),
		submissionStore: submissionstore.NewInstance(db.DB),
		audit:           audithandler.Instance,
		notifier:        notifier,
	}
}

func NewHandlerWithDeps(
	workOrders workorderstore.Provider,
	workflows workflowstore.Provider,
	submissions submissionstore.Provider,
	audit audithandler.Provider,
	notifier Notifier,
) Provider {
	return impl{
		workOrderStore:  workOrders,
		workflowStore:   workflows,
		submissionStore: submissions,
		audit:           audit,
		notifier:        notifier,
	}
}

type impl struct {
	workOrderStore  workorderstore.Provider
	workflowStore   workflowstore.Provider
	submissionStore submissionstore.Provider
	audit           audithandler.Provider
	notifier        Notifier
}

func (i impl) InitializeWorkflow(organisationID, workOrderID, workflowID, actorID string) error {
	logger := log.
		WithField("rec_id", workOrderID).
		WithField("workflow_id", workflowID)
	rec, err := i.workOrderStore.GetByID(organisationID, workOrderID)
	if err != nil {
		return err
	}
	if rec == nil {
		return apperr.NotFound("work order not found")
	}
	workflow, err := i.workflowStore.GetByID(workflowID)
	if err != nil {
		return err
	}
	if workflow == nil {
		return apperr.NotFound("workflow not found")
	}
	updMap := map[string]interface{}{
		"workflow_id": workflowID,
	}
	// With zero steps the pointer is left alone; the workflow simply
	// never advances anything.
	if len(workflow.Steps) > 0 {
		updMap["current_step_id"] = workflow.Steps[0].ID
	}
	err = i.workOrderStore.Update(organisationID, workOrderID, updMap)
	if err != nil {
		logger.WithError(err).Error("failed to initialize workflow")
		return err
	}
	i.audit.Log(audithandler.LogData{
		ActorID:     actorID,
		EntityType:  "WorkOrder",
		EntityID:    workOrderID,
		Action:      audithandler.ActionUpdate,
		Description: fmt.Sprintf("Attached workflow %q to %v", workflow.Name, rec.ReferenceNumber),
	})
	logger.Info("workflow initialized")
	return nil
}

func (i impl) SubmitTask(workOrderID, taskID, actorID string, data workflowapimodels.TaskSubmitData) (string, error) {
	logger := log.
		WithField("rec_id", workOrderID).
		WithField("task_id", taskID)
	rec, err := i.workOrderStore.GetForAdvance(workOrderID)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", apperr.NotFound("work order not found")
	}
	if step := currentStep(rec); step != nil && !stepHasTask(*step, taskID) {
		return "", apperr.Validation("task does not belong to the current workflow step")
	}

	payload := data.Data
	if payload == nil {
		payload = map[string]interface{}{}
	}
	rawData, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize submission data")
	}
	submissionID, err := i.submissionStore.Create(dbmodels.TaskSubmission{
		TaskID:      taskID,
		WorkOrderID: workOrderID,
		UserID:      actorID,
		Data:        string(rawData),
		Notes:       data.Notes,
		Signature:   data.Signature,
		Status:      models.SubmissionSubmitted,
		SubmittedAt: time.Now(),
	})
	if err != nil {
		logger.WithError(err).Error("failed to create task submission")
		return "", err
	}
	i.audit.Log(audithandler.LogData{
		ActorID:     actorID,
		EntityType:  "WorkOrder",
		EntityID:    workOrderID,
		Action:      audithandler.ActionSubmission,
		Description: fmt.Sprintf("Submitted task %v on %v", taskID, rec.ReferenceNumber),
	})
	// Advancement is best effort from the submitter's perspective; the
	// submission stands either way.
	if err = i.CheckAndAdvance(workOrderID); err != nil {
		logger.WithError(err).Error("step advancement failed after submission")
	}
	return submissionID, nil
}

func (i impl) ApproveTask(workOrderID, taskID, actorID, notes string) error {
	err := i.review(workOrderID, taskID, actorID, notes, models.SubmissionApproved)
	if err != nil {
		return err
	}
	if err = i.CheckAndAdvance(workOrderID); err != nil {
		log.
			WithField("rec_id", workOrderID).
			WithError(err).
			Error("step advancement failed after approval")
	}
	return nil
}

func (i impl) RejectTask(workOrderID, taskID, actorID, notes string) error {
	// Rejection never advances; the task has to be resubmitted.
	return i.review(workOrderID, taskID, actorID, notes, models.SubmissionRejected)
}

func (i impl) review(workOrderID, taskID, actorID, notes string, status models.SubmissionStatus) error {
	logger := log.
		WithField("rec_id", workOrderID).
		WithField("task_id", taskID).
		WithField("status", status)
	submission, err := i.submissionStore.LatestSubmitted(taskID, workOrderID)
	if err != nil {
		return err
	}
	if submission == nil {
		return apperr.NotFound("no pending submission for this task")
	}
	now := time.Now()
	err = i.submissionStore.Update(submission.ID, map[string]interface{}{
		"status":       status,
		"reviewed_at":  now,
		"reviewed_by":  actorID,
		"review_notes": notes,
	})
	if err != nil {
		logger.WithError(err).Error("failed to review task submission")
		return err
	}
	action := audithandler.ActionApproval
	if status == models.SubmissionRejected {
		action = audithandler.ActionRejection
	}
	i.audit.Log(audithandler.LogData{
		ActorID:     actorID,
		EntityType:  "WorkOrder",
		EntityID:    workOrderID,
		Action:      action,
		Description: fmt.Sprintf("Reviewed task %v as %v", taskID, status),
	})
	logger.Info("task submission reviewed")
	return nil
}

func (i impl) CheckAndAdvance(workOrderID string) error {
	// The notification auto-skip is a loop bounded by the step count, so
	// a workflow made entirely of notification steps still terminates.
	for hop := 0; ; hop++ {
		rec, err := i.workOrderStore.GetForAdvance(workOrderID)
		if err != nil {
			return err
		}
		if rec == nil || rec.Workflow == nil || rec.CurrentStepID == nil {
			return nil
		}
		steps := rec.Workflow.Steps
		if hop > len(steps) {
			return nil
		}
		stepIdx := -1
		for idx := range steps {
			if steps[idx].ID == *rec.CurrentStepID {
				stepIdx = idx
				break
			}
		}
		// A stale pointer, e.g. after a workflow edit, silently stops
		// advancement rather than guessing a position.
		if stepIdx == -1 {
			return nil
		}
		step := steps[stepIdx]
		if !stepSatisfied(step, rec.TaskSubmissions) {
			return nil
		}

		if stepIdx == len(steps)-1 {
			return i.completeWorkflow(*rec)
		}
		next := steps[stepIdx+1]
		err = i.workOrderStore.UpdateByID(workOrderID, map[string]interface{}{
			"current_step_id": next.ID,
		})
		if err != nil {
			return err
		}
		log.
			WithField("rec_id", workOrderID).
			WithField("step_id", next.ID).
			WithField("step_name", next.Name).
			Info("work order advanced to next step")
		if i.notifier != nil {
			i.notifier.StepEntered(*rec, next)
		}
		if next.Type != models.StepTypeNotification {
			return nil
		}
	}
}

// completeWorkflow is the only path that forces COMPLETED without
// consulting the lifecycle transition table. Workflow completion is
// authoritative over manual lifecycle control.
func (i impl) completeWorkflow(rec dbmodels.WorkOrder) error {
	now := time.Now()
	err := i.workOrderStore.UpdateByID(rec.ID, map[string]interface{}{
		"status":          models.WOStatusCompleted,
		"completed_at":    now,
		"actual_end":      now,
		"current_step_id": nil,
	})
	if err != nil {
		return err
	}
	i.audit.Log(audithandler.LogData{
		ActorID:      models.SystemUser,
		EntityType:   "WorkOrder",
		EntityID:     rec.ID,
		Action:       audithandler.ActionStatusChange,
		Description:  fmt.Sprintf("Workflow completed, work order %v closed", rec.ReferenceNumber),
		PreviousData: map[string]interface{}{"status": rec.Status},
		NewData:      map[string]interface{}{"status": models.WOStatusCompleted},
	})
	log.
		WithField("rec_id", rec.ID).
		Info("workflow finished, work order completed")
	if i.notifier != nil {
		i.notifier.WorkflowCompleted(rec)
	}
	return nil
}

// stepSatisfied reports whether every required task in the step has a
// submission meeting the step-type predicate. Review-type steps demand
// an approved submission; anything else accepts submitted or approved.
// Zero required tasks means trivially satisfied.
func stepSatisfied(step dbmodels.WorkflowStep, submissions []dbmodels.TaskSubmission) bool {
	for _, task := range step.Tasks {
		if !task.IsRequired {
			continue
		}
		if !taskSatisfied(step.Type, task.ID, submissions) {
			return false
		}
	}
	return true
}

func taskSatisfied(stepType models.StepType, taskID string, submissions []dbmodels.TaskSubmission) bool {
	for _, submission := range submissions {
		if submission.TaskID != taskID {
			continue
		}
		if submission.Status == models.SubmissionApproved {
			return true
		}
		if !stepType.IsReview() && submission.Status == models.SubmissionSubmitted {
			return true
		}
	}
	return false
}

func currentStep(rec *dbmodels.WorkOrder) *dbmodels.WorkflowStep {
	if rec.Workflow == nil || rec.CurrentStepID == nil {
		return nil
	}
	for idx := range rec.Workflow.Steps {
		if rec.Workflow.Steps[idx].ID == *rec.CurrentStepID {
			return &rec.Workflow.Steps[idx]
		}
	}
	return nil
}

func stepHasTask(step dbmodels.WorkflowStep, taskID string) bool {
	for _, task := range step.Tasks {
		if task.ID == taskID {
			return true
		}
	}
	return false
}

func (i impl) GetWorkflowTemplates() ([]workflowapimodels.WorkflowView, error) {
	recList, err := i.workflowStore.ListTemplates()
	if err != nil {
		log.WithError(err).Error("failed to list workflow templates")
		return nil, err
	}
	result := make([]workflowapimodels.WorkflowView, 0, len(recList))
	for _, rec := range recList {
		result = append(result, workflowapimodels.WorkflowConvert(rec))
	}
	return result, nil
}

func (i impl) GetWorkflow(id string) (workflowapimodels.WorkflowView, error) {
	rec, err := i.workflowStore.GetByID(id)
	if err != nil {
		return workflowapimodels.WorkflowView{}, err
	}
	if rec == nil {
		return workflowapimodels.WorkflowView{}, apperr.NotFound("workflow not found")
	}
	return workflowapimodels.WorkflowConvert(*rec), nil
}

func (i impl) ListSubmissions(workOrderID string) ([]workflowapimodels.SubmissionView, error) {
	recList, err := i.submissionStore.ListByWorkOrder(workOrderID)
	if err != nil {
		return nil, err
	}
	result := make([]workflowapimodels.SubmissionView, 0, len(recList))
	for _, rec := range recList {
		result = append(result, workflowapimodels.SubmissionConvert(rec))
	}
	return result, nil
}
