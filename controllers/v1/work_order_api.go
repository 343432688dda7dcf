package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"vessel-works-backend/controllers"
	accesshandler "vessel-works-backend/lib/access"
	"vessel-works-backend/lib/apperr"
	audithandler "vessel-works-backend/lib/audit"
	collabhandler "vessel-works-backend/lib/collab"
	workorderhandler "vessel-works-backend/lib/workorder"
	"vessel-works-backend/middleware"
	apimodels "vessel-works-backend/models/api"
	workorderapimodels "vessel-works-backend/models/api/workorder"
)

type workOrderApiController struct {
	controllers.BaseAPIController
}

func InitWorkOrderApiRouters(app *fiber.App) {
	controller := workOrderApiController{}
	app.Route("work_order", func(router fiber.Router) {
		router.Post("", controller.create)
		router.Post("list", controller.list)
		router.Get(":id", controller.getByID)
		router.Put(":id", controller.update)
		router.Delete(":id", controller.delete)
		router.Put(":id/status", controller.changeStatus)
		router.Post(":id/assign", controller.assign)
		router.Delete(":id/assign/:user_id", controller.unassign)
		router.Get(":id/room_status", controller.roomStatus)
		router.Get(":id/audit", controller.auditHistory)
	})
}

func (c *workOrderApiController) create(ctx *fiber.Ctx) error {
	var payload workorderapimodels.WorkOrderCreateData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, err := workorderhandler.Instance.Create(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

func (c *workOrderApiController) list(ctx *fiber.Ctx) error {
	var filter workorderapimodels.WorkOrderFilter
	if err := c.BodyParser(ctx, &filter); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, rowCount, err := workorderhandler.Instance.List(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), filter)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

func (c *workOrderApiController) getByID(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := workorderhandler.Instance.GetByID(middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func (c *workOrderApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload workorderapimodels.WorkOrderUpdateData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = c.requireWrite(ctx, id); err != nil {
		return c.SendError(ctx, err)
	}
	err = workorderhandler.Instance.Update(middleware.GetUserOrg(ctx), id, middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *workOrderApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = c.requireAdmin(ctx, id); err != nil {
		return c.SendError(ctx, err)
	}
	err = workorderhandler.Instance.SoftDelete(middleware.GetUserOrg(ctx), id, middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *workOrderApiController) changeStatus(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload workorderapimodels.StatusChangeData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = c.requireWrite(ctx, id); err != nil {
		return c.SendError(ctx, err)
	}
	err = workorderhandler.Instance.ChangeStatus(middleware.GetUserOrg(ctx), id, middleware.GetUserID(ctx), payload.Status, payload.Reason)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *workOrderApiController) assign(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload workorderapimodels.AssignData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = c.requireAdmin(ctx, id); err != nil {
		return c.SendError(ctx, err)
	}
	err = workorderhandler.Instance.Assign(middleware.GetUserOrg(ctx), id, payload.UserID, payload.Role, middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusOK)
}

func (c *workOrderApiController) unassign(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	userID := ctx.Params("user_id")
	if userID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("user id is required"))
	}
	if err = c.requireAdmin(ctx, id); err != nil {
		return c.SendError(ctx, err)
	}
	err = workorderhandler.Instance.Unassign(middleware.GetUserOrg(ctx), id, userID, middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusOK)
}

// roomStatus is the REST bridge into live collaboration presence.
func (c *workOrderApiController) roomStatus(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	allowed, err := accesshandler.Instance.CanView(id, middleware.GetUserID(ctx), middleware.GetUserOrg(ctx), middleware.GetUserRole(ctx))
	if err != nil {
		return c.SendError(ctx, err)
	}
	if !allowed {
		return c.SendError(ctx, apperr.NotFound("work order not found"))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(collabhandler.Manager.RoomStatus(id)))
}

func (c *workOrderApiController) auditHistory(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	limit := ctx.QueryInt("limit", 100)
	list, err := audithandler.Instance.History("WorkOrder", id, limit)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

func (c *workOrderApiController) requireWrite(ctx *fiber.Ctx, workOrderID string) error {
	allowed, err := accesshandler.Instance.CanWrite(workOrderID, middleware.GetUserID(ctx), middleware.GetUserOrg(ctx), middleware.GetUserRole(ctx))
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("write access required")
	}
	return nil
}

func (c *workOrderApiController) requireAdmin(ctx *fiber.Ctx, workOrderID string) error {
	allowed, err := accesshandler.Instance.CanAdmin(workOrderID, middleware.GetUserID(ctx), middleware.GetUserOrg(ctx), middleware.GetUserRole(ctx))
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("admin access required")
	}
	return nil
}
