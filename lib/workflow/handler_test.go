package workflowhandler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vessel-works-backend/lib/apperr"
	audithandler "vessel-works-backend/lib/audit"
	"vessel-works-backend/models"
	workflowapimodels "vessel-works-backend/models/api/workflow"
	workorderapimodels "vessel-works-backend/models/api/workorder"
	dbmodels "vessel-works-backend/models/db"
)

type fakeWorkOrderStore struct {
	rec         *dbmodels.WorkOrder
	submissions *[]dbmodels.TaskSubmission
}

func (f *fakeWorkOrderStore) Create(rec dbmodels.WorkOrder) (string, error) { return rec.ID, nil }

func (f *fakeWorkOrderStore) GetByID(organisationID, id string) (*dbmodels.WorkOrder, error) {
	if f.rec == nil || f.rec.ID != id || f.rec.OrganisationID != organisationID {
		return nil, nil
	}
	return f.snapshot(), nil
}

func (f *fakeWorkOrderStore) GetForAdvance(id string) (*dbmodels.WorkOrder, error) {
	if f.rec == nil || f.rec.ID != id {
		return nil, nil
	}
	return f.snapshot(), nil
}

// snapshot mimics a fresh database read including the latest submissions.
func (f *fakeWorkOrderStore) snapshot() *dbmodels.WorkOrder {
	clone := *f.rec
	if f.submissions != nil {
		clone.TaskSubmissions = append([]dbmodels.TaskSubmission{}, *f.submissions...)
	}
	return &clone
}

func (f *fakeWorkOrderStore) Update(organisationID, id string, updMap map[string]interface{}) error {
	return f.UpdateByID(id, updMap)
}

func (f *fakeWorkOrderStore) UpdateByID(id string, updMap map[string]interface{}) error {
	if v, ok := updMap["current_step_id"]; ok {
		if v == nil {
			f.rec.CurrentStepID = nil
		} else {
			stepID := v.(string)
			f.rec.CurrentStepID = &stepID
		}
	}
	if v, ok := updMap["workflow_id"]; ok {
		workflowID := v.(string)
		f.rec.WorkflowID = &workflowID
	}
	if v, ok := updMap["status"]; ok {
		f.rec.Status = v.(models.WorkOrderStatus)
	}
	if v, ok := updMap["completed_at"]; ok {
		at := v.(time.Time)
		f.rec.CompletedAt = &at
	}
	if v, ok := updMap["actual_end"]; ok {
		at := v.(time.Time)
		f.rec.ActualEnd = &at
	}
	return nil
}

func (f *fakeWorkOrderStore) SoftDelete(organisationID, id string) error { return nil }

func (f *fakeWorkOrderStore) List(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) ([]dbmodels.WorkOrder, error) {
	return nil, nil
}

func (f *fakeWorkOrderStore) ListCount(organisationID, userID string, filter workorderapimodels.WorkOrderFilter) (int64, error) {
	return 0, nil
}

func (f *fakeWorkOrderStore) LastReferenceSuffix(prefix string) (int, error) { return 0, nil }

func (f *fakeWorkOrderStore) HasAccess(id, userID, organisationID string, orgScope bool) (bool, error) {
	return true, nil
}

func (f *fakeWorkOrderStore) ListOverdue(before time.Time) ([]dbmodels.WorkOrder, error) {
	return nil, nil
}

type fakeWorkflowStore struct {
	workflow *dbmodels.Workflow
}

func (f *fakeWorkflowStore) GetByID(id string) (*dbmodels.Workflow, error) {
	if f.workflow == nil || f.workflow.ID != id {
		return nil, nil
	}
	return f.workflow, nil
}

func (f *fakeWorkflowStore) ListTemplates() ([]dbmodels.Workflow, error) {
	if f.workflow == nil {
		return []dbmodels.Workflow{}, nil
	}
	return []dbmodels.Workflow{*f.workflow}, nil
}

type fakeSubmissionStore struct {
	items  []dbmodels.TaskSubmission
	nextID int
}

func (f *fakeSubmissionStore) Create(rec dbmodels.TaskSubmission) (string, error) {
	f.nextID++
	rec.ID = fmt.Sprintf("sub-%d", f.nextID)
	rec.CreatedAt = time.Now()
	f.items = append(f.items, rec)
	return rec.ID, nil
}

func (f *fakeSubmissionStore) LatestSubmitted(taskID, workOrderID string) (*dbmodels.TaskSubmission, error) {
	for idx := len(f.items) - 1; idx >= 0; idx-- {
		rec := f.items[idx]
		if rec.TaskID == taskID && rec.WorkOrderID == workOrderID && rec.Status == models.SubmissionSubmitted {
			return &rec, nil
		}
	}
	return nil, nil
}

func (f *fakeSubmissionStore) Update(id string, updMap map[string]interface{}) error {
	for idx := range f.items {
		if f.items[idx].ID != id {
			continue
		}
		if v, ok := updMap["status"]; ok {
			f.items[idx].Status = v.(models.SubmissionStatus)
		}
		return nil
	}
	return nil
}

func (f *fakeSubmissionStore) ListByWorkOrder(workOrderID string) ([]dbmodels.TaskSubmission, error) {
	result := []dbmodels.TaskSubmission{}
	for _, rec := range f.items {
		if rec.WorkOrderID == workOrderID {
			result = append(result, rec)
		}
	}
	return result, nil
}

type fakeAudit struct {
	entries []audithandler.LogData
}

func (f *fakeAudit) Log(data audithandler.LogData) { f.entries = append(f.entries, data) }

func (f *fakeAudit) History(entityType, entityID string, limit int) ([]dbmodels.AuditEntry, error) {
	return nil, nil
}

type fakeNotifier struct {
	entered   []string
	completed []string
}

func (f *fakeNotifier) StepEntered(workOrder dbmodels.WorkOrder, step dbmodels.WorkflowStep) {
	f.entered = append(f.entered, step.Name)
}

func (f *fakeNotifier) WorkflowCompleted(workOrder dbmodels.WorkOrder) {
	f.completed = append(f.completed, workOrder.ID)
}

func step(id, name string, order int, stepType models.StepType, tasks ...dbmodels.Task) dbmodels.WorkflowStep {
	rec := dbmodels.WorkflowStep{
		Name:  name,
		Order: order,
		Type:  stepType,
		Tasks: tasks,
	}
	rec.ID = id
	return rec
}

func task(id string, required bool) dbmodels.Task {
	rec := dbmodels.Task{
		Name:       id,
		TaskType:   models.TaskTypeChecklist,
		IsRequired: required,
	}
	rec.ID = id
	return rec
}

type fixture struct {
	handler     Provider
	workOrders  *fakeWorkOrderStore
	submissions *fakeSubmissionStore
	audit       *fakeAudit
	notifier    *fakeNotifier
}

func newFixture(workflow *dbmodels.Workflow) fixture {
	workOrder := &dbmodels.WorkOrder{
		Status:   models.WOStatusInProgress,
		Workflow: workflow,
	}
	workOrder.ID = "wo-1"
	workOrder.OrganisationID = "org-1"
	workOrder.ReferenceNumber = "WO-20260115-0001"
	if workflow != nil {
		workOrder.WorkflowID = &workflow.ID
		if len(workflow.Steps) > 0 {
			first := workflow.Steps[0].ID
			workOrder.CurrentStepID = &first
		}
	}
	submissions := &fakeSubmissionStore{}
	workOrders := &fakeWorkOrderStore{rec: workOrder, submissions: &submissions.items}
	audit := &fakeAudit{}
	notifier := &fakeNotifier{}
	return fixture{
		handler:     NewHandlerWithDeps(workOrders, &fakeWorkflowStore{workflow: workflow}, submissions, audit, notifier),
		workOrders:  workOrders,
		submissions: submissions,
		audit:       audit,
		notifier:    notifier,
	}
}

func inspectionWorkflow() *dbmodels.Workflow {
	workflow := &dbmodels.Workflow{
		Name: "Hull inspection",
		Steps: []dbmodels.WorkflowStep{
			step("step-a", "Data capture", 1, models.StepTypeDataCapture, task("task-a1", true)),
			step("step-b", "Review", 2, models.StepTypeReview, task("task-b1", true)),
			step("step-c", "Report", 3, models.StepTypeReportGeneration, task("task-c1", true)),
		},
	}
	workflow.ID = "wf-1"
	return workflow
}

func TestSubmitAndAdvance(t *testing.T) {
	t.Run("submitting the required task moves to the next step", func(t *testing.T) {
		f := newFixture(inspectionWorkflow())

		_, err := f.handler.SubmitTask("wo-1", "task-a1", "user-1", workflowapimodels.TaskSubmitData{})
		require.NoError(t, err)

		require.NotNil(t, f.workOrders.rec.CurrentStepID)
		require.Equal(t, "step-b", *f.workOrders.rec.CurrentStepID)
		require.Equal(t, []string{"Review"}, f.notifier.entered)
	})

	t.Run("review step holds until the submission is approved", func(t *testing.T) {
		f := newFixture(inspectionWorkflow())

		_, err := f.handler.SubmitTask("wo-1", "task-a1", "user-1", workflowapimodels.TaskSubmitData{})
		require.NoError(t, err)
		_, err = f.handler.SubmitTask("wo-1", "task-b1", "user-1", workflowapimodels.TaskSubmitData{})
		require.NoError(t, err)
		require.Equal(t, "step-b", *f.workOrders.rec.CurrentStepID)

		err = f.handler.ApproveTask("wo-1", "task-b1", "reviewer-1", "looks good")
		require.NoError(t, err)
		require.Equal(t, "step-c", *f.workOrders.rec.CurrentStepID)
	})

	t.Run("rejection keeps the step and a resubmission restarts review", func(t *testing.T) {
		f := newFixture(inspectionWorkflow())

		_, err := f.handler.SubmitTask("wo-1", "task-a1", "user-1", workflowapimodels.TaskSubmitData{})
		require.NoError(t, err)
		_, err = f.handler.SubmitTask("wo-1", "task-b1", "user-1", workflowapimodels.TaskSubmitData{})
		require.NoError(t, err)

		err = f.handler.RejectTask("wo-1", "task-b1", "reviewer-1", "incomplete readings")
		require.NoError(t, err)
		require.Equal(t, "step-b", *f.workOrders.rec.CurrentStepID)

		_, err = f.handler.SubmitTask("wo-1", "task-b1", "user-1", workflowapimodels.TaskSubmitData{})
		require.NoError(t, err)
		err = f.handler.ApproveTask("wo-1", "task-b1", "reviewer-1", "")
		require.NoError(t, err)
		require.Equal(t, "step-c", *f.workOrders.rec.CurrentStepID)
	})

	t.Run("finishing the last step completes the work order", func(t *testing.T) {
		f := newFixture(inspectionWorkflow())

		_, err := f.handler.SubmitTask("wo-1", "task-a1", "user-1", workflowapimodels.TaskSubmitData{})
		require.NoError(t, err)
		_, err = f.handler.SubmitTask("wo-1", "task-b1", "user-1", workflowapimodels.TaskSubmitData{})
		require.NoError(t, err)
		err = f.handler.ApproveTask("wo-1", "task-b1", "reviewer-1", "")
		require.NoError(t, err)

		_, err = f.handler.SubmitTask("wo-1", "task-c1", "user-1", workflowapimodels.TaskSubmitData{})
		require.NoError(t, err)

		rec := f.workOrders.rec
		require.Equal(t, models.WOStatusCompleted, rec.Status)
		require.Nil(t, rec.CurrentStepID)
		require.NotNil(t, rec.CompletedAt)
		require.NotNil(t, rec.ActualEnd)
		require.Equal(t, []string{"wo-1"}, f.notifier.completed)
	})

	t.Run("optional tasks do not gate advancement", func(t *testing.T) {
		workflow := inspectionWorkflow()
		workflow.Steps[0].Tasks = append(workflow.Steps[0].Tasks, task("task-a2", false))
		f := newFixture(workflow)

		_, err := f.handler.SubmitTask("wo-1", "task-a1", "user-1", workflowapimodels.TaskSubmitData{})
		require.NoError(t, err)
		require.Equal(t, "step-b", *f.workOrders.rec.CurrentStepID)
	})
}

func TestNotificationStepSkip(t *testing.T) {
	t.Run("notification steps are passed through in one advancement", func(t *testing.T) {
		workflow := &dbmodels.Workflow{
			Name: "With notices",
			Steps: []dbmodels.WorkflowStep{
				step("step-a", "Capture", 1, models.StepTypeDataCapture, task("task-a1", true)),
				step("step-n1", "Notify office", 2, models.StepTypeNotification),
				step("step-n2", "Notify owner", 3, models.StepTypeNotification),
				step("step-b", "Wrap up", 4, models.StepTypeDataCapture, task("task-b1", true)),
			},
		}
		workflow.ID = "wf-1"
		f := newFixture(workflow)

		_, err := f.handler.SubmitTask("wo-1", "task-a1", "user-1", workflowapimodels.TaskSubmitData{})
		require.NoError(t, err)

		require.Equal(t, "step-b", *f.workOrders.rec.CurrentStepID)
		require.Equal(t, []string{"Notify office", "Notify owner", "Wrap up"}, f.notifier.entered)
	})

	t.Run("a workflow ending in notification steps completes", func(t *testing.T) {
		workflow := &dbmodels.Workflow{
			Name: "Notice tail",
			Steps: []dbmodels.WorkflowStep{
				step("step-a", "Capture", 1, models.StepTypeDataCapture, task("task-a1", true)),
				step("step-n1", "Notify office", 2, models.StepTypeNotification),
			},
		}
		workflow.ID = "wf-1"
		f := newFixture(workflow)

		_, err := f.handler.SubmitTask("wo-1", "task-a1", "user-1", workflowapimodels.TaskSubmitData{})
		require.NoError(t, err)

		require.Equal(t, models.WOStatusCompleted, f.workOrders.rec.Status)
		require.Nil(t, f.workOrders.rec.CurrentStepID)
	})
}

func TestSubmitValidation(t *testing.T) {
	t.Run("a task outside the current step is rejected", func(t *testing.T) {
		f := newFixture(inspectionWorkflow())

		_, err := f.handler.SubmitTask("wo-1", "task-b1", "user-1", workflowapimodels.TaskSubmitData{})
		require.Error(t, err)
		appErr, ok := apperr.AsAppError(err)
		require.True(t, ok)
		require.Equal(t, apperr.CodeValidation, appErr.Code)
		require.Equal(t, "step-a", *f.workOrders.rec.CurrentStepID)
	})

	t.Run("approval without a pending submission is not found", func(t *testing.T) {
		f := newFixture(inspectionWorkflow())

		err := f.handler.ApproveTask("wo-1", "task-a1", "reviewer-1", "")
		require.Error(t, err)
		require.True(t, apperr.IsNotFound(err))
	})

	t.Run("unknown work order is not found", func(t *testing.T) {
		f := newFixture(inspectionWorkflow())

		_, err := f.handler.SubmitTask("missing", "task-a1", "user-1", workflowapimodels.TaskSubmitData{})
		require.Error(t, err)
		require.True(t, apperr.IsNotFound(err))
	})
}

func TestCheckAndAdvanceEdgeCases(t *testing.T) {
	t.Run("stale current step pointer stops silently", func(t *testing.T) {
		f := newFixture(inspectionWorkflow())
		stale := "step-gone"
		f.workOrders.rec.CurrentStepID = &stale

		require.NoError(t, f.handler.CheckAndAdvance("wo-1"))
		require.Equal(t, "step-gone", *f.workOrders.rec.CurrentStepID)
	})

	t.Run("no workflow attached is a no-op", func(t *testing.T) {
		f := newFixture(nil)
		require.NoError(t, f.handler.CheckAndAdvance("wo-1"))
	})

	t.Run("unsatisfied step does not move", func(t *testing.T) {
		f := newFixture(inspectionWorkflow())
		require.NoError(t, f.handler.CheckAndAdvance("wo-1"))
		require.Equal(t, "step-a", *f.workOrders.rec.CurrentStepID)
	})
}

func TestInitializeWorkflow(t *testing.T) {
	t.Run("sets the workflow and first step", func(t *testing.T) {
		workflow := inspectionWorkflow()
		f := newFixture(nil)
		deps := f.workOrders
		handler := NewHandlerWithDeps(deps, &fakeWorkflowStore{workflow: workflow}, f.submissions, f.audit, f.notifier)

		err := handler.InitializeWorkflow("org-1", "wo-1", "wf-1", "user-1")
		require.NoError(t, err)
		require.NotNil(t, deps.rec.WorkflowID)
		require.Equal(t, "wf-1", *deps.rec.WorkflowID)
		require.NotNil(t, deps.rec.CurrentStepID)
		require.Equal(t, "step-a", *deps.rec.CurrentStepID)
	})

	t.Run("unknown workflow is not found", func(t *testing.T) {
		f := newFixture(nil)
		err := f.handler.InitializeWorkflow("org-1", "wo-1", "wf-missing", "user-1")
		require.Error(t, err)
		require.True(t, apperr.IsNotFound(err))
	})
}
