package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"vessel-works-backend/controllers"
	accesshandler "vessel-works-backend/lib/access"
	"vessel-works-backend/lib/apperr"
	workflowhandler "vessel-works-backend/lib/workflow"
	"vessel-works-backend/middleware"
	apimodels "vessel-works-backend/models/api"
	workflowapimodels "vessel-works-backend/models/api/workflow"
)

type workflowApiController struct {
	controllers.BaseAPIController
}

func InitWorkflowApiRouters(app *fiber.App) {
	controller := workflowApiController{}
	app.Route("workflow", func(router fiber.Router) {
		router.Get("templates", controller.templates)
		router.Get(":id", controller.getByID)
	})
	app.Route("work_order/:id/workflow", func(router fiber.Router) {
		router.Post("init/:workflow_id", controller.initialize)
		router.Get("submissions", controller.submissions)
		router.Post("task/:task_id/submit", controller.submitTask)
		router.Post("task/:task_id/approve", controller.approveTask)
		router.Post("task/:task_id/reject", controller.rejectTask)
	})
}

func (c *workflowApiController) templates(ctx *fiber.Ctx) error {
	resp, err := workflowhandler.Instance.GetWorkflowTemplates()
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func (c *workflowApiController) getByID(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := workflowhandler.Instance.GetWorkflow(id)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func (c *workflowApiController) initialize(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	workflowID := ctx.Params("workflow_id")
	if workflowID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("workflow id is required"))
	}
	err = workflowhandler.Instance.InitializeWorkflow(middleware.GetUserOrg(ctx), id, workflowID, middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *workflowApiController) submissions(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := workflowhandler.Instance.ListSubmissions(id)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func (c *workflowApiController) submitTask(ctx *fiber.Ctx) error {
	id, taskID, err := c.taskParams(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload workflowapimodels.TaskSubmitData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	submissionID, err := workflowhandler.Instance.SubmitTask(id, taskID, middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(submissionID))
}

func (c *workflowApiController) approveTask(ctx *fiber.Ctx) error {
	return c.review(ctx, workflowhandler.Instance.ApproveTask)
}

func (c *workflowApiController) rejectTask(ctx *fiber.Ctx) error {
	return c.review(ctx, workflowhandler.Instance.RejectTask)
}

func (c *workflowApiController) review(ctx *fiber.Ctx, reviewFn func(workOrderID, taskID, actorID, notes string) error) error {
	id, taskID, err := c.taskParams(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = c.requireApprove(ctx, id); err != nil {
		return c.SendError(ctx, err)
	}
	var payload workflowapimodels.TaskReviewData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = reviewFn(id, taskID, middleware.GetUserID(ctx), payload.Notes); err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *workflowApiController) requireApprove(ctx *fiber.Ctx, workOrderID string) error {
	allowed, err := accesshandler.Instance.CanApprove(workOrderID, middleware.GetUserID(ctx), middleware.GetUserOrg(ctx), middleware.GetUserRole(ctx))
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("approve access required")
	}
	return nil
}

func (c *workflowApiController) taskParams(ctx *fiber.Ctx) (id, taskID string, err error) {
	id, err = c.GetID(ctx)
	if err != nil {
		return "", "", err
	}
	taskID = ctx.Params("task_id")
	if taskID == "" {
		return "", "", errors.New("task id is required")
	}
	return id, taskID, nil
}
