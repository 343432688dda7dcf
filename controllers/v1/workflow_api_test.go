package apiv1

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	accesshandler "vessel-works-backend/lib/access"
	workflowhandler "vessel-works-backend/lib/workflow"
	"vessel-works-backend/models"
	workflowapimodels "vessel-works-backend/models/api/workflow"
)

type fakeAccess struct {
	approvers map[string]bool
}

func (f *fakeAccess) CanView(workOrderID, userID, organisationID string, role models.UserRole) (bool, error) {
	return true, nil
}

func (f *fakeAccess) CanWrite(workOrderID, userID, organisationID string, role models.UserRole) (bool, error) {
	return true, nil
}

func (f *fakeAccess) CanApprove(workOrderID, userID, organisationID string, role models.UserRole) (bool, error) {
	return f.approvers[userID], nil
}

func (f *fakeAccess) CanAdmin(workOrderID, userID, organisationID string, role models.UserRole) (bool, error) {
	return false, nil
}

type fakeWorkflow struct {
	approved []string
	rejected []string
}

func (f *fakeWorkflow) InitializeWorkflow(organisationID, workOrderID, workflowID, actorID string) error {
	return nil
}

func (f *fakeWorkflow) SubmitTask(workOrderID, taskID, actorID string, data workflowapimodels.TaskSubmitData) (string, error) {
	return "sub-1", nil
}

func (f *fakeWorkflow) ApproveTask(workOrderID, taskID, actorID, notes string) error {
	f.approved = append(f.approved, taskID)
	return nil
}

func (f *fakeWorkflow) RejectTask(workOrderID, taskID, actorID, notes string) error {
	f.rejected = append(f.rejected, taskID)
	return nil
}

func (f *fakeWorkflow) CheckAndAdvance(workOrderID string) error { return nil }

func (f *fakeWorkflow) GetWorkflowTemplates() ([]workflowapimodels.WorkflowView, error) {
	return nil, nil
}

func (f *fakeWorkflow) GetWorkflow(id string) (workflowapimodels.WorkflowView, error) {
	return workflowapimodels.WorkflowView{}, nil
}

func (f *fakeWorkflow) ListSubmissions(workOrderID string) ([]workflowapimodels.SubmissionView, error) {
	return nil, nil
}

// claimsAs stands in for the jwt middleware so handlers see the same
// Locals shape the real guard leaves behind.
func claimsAs(userID string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		ctx.Locals("user", &jwt.Token{Claims: jwt.MapClaims{
			"sub":  userID,
			"org":  "org-1",
			"role": string(models.OrgUserRole),
		}})
		return ctx.Next()
	}
}

func newReviewApp(userID string, access *fakeAccess, workflow *fakeWorkflow) *fiber.App {
	accesshandler.Instance = access
	workflowhandler.Instance = workflow
	app := fiber.New()
	app.Use(claimsAs(userID))
	InitWorkflowApiRouters(app)
	return app
}

func TestReviewRouteGating(t *testing.T) {
	t.Run("non approver gets forbidden and nothing runs", func(t *testing.T) {
		workflow := &fakeWorkflow{}
		app := newReviewApp("member-1", &fakeAccess{approvers: map[string]bool{}}, workflow)

		for _, action := range []string{"approve", "reject"} {
			req := httptest.NewRequest(fiber.MethodPost, "/work_order/wo-1/workflow/task/task-1/"+action, strings.NewReader(`{"notes":""}`))
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		}
		require.Empty(t, workflow.approved)
		require.Empty(t, workflow.rejected)
	})

	t.Run("approver passes through to the handler", func(t *testing.T) {
		workflow := &fakeWorkflow{}
		app := newReviewApp("reviewer-1", &fakeAccess{approvers: map[string]bool{"reviewer-1": true}}, workflow)

		req := httptest.NewRequest(fiber.MethodPost, "/work_order/wo-1/workflow/task/task-1/approve", strings.NewReader(`{"notes":"ok"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.Equal(t, []string{"task-1"}, workflow.approved)
	})
}
