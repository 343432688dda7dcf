package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"vessel-works-backend/controllers"
	vesselhandler "vessel-works-backend/lib/vessel"
	"vessel-works-backend/middleware"
	apimodels "vessel-works-backend/models/api"
	vesselapimodels "vessel-works-backend/models/api/vessel"
)

type vesselApiController struct {
	controllers.BaseAPIController
}

func InitVesselApiRouters(app *fiber.App) {
	controller := vesselApiController{}
	app.Route("vessel", func(router fiber.Router) {
		router.Post("", controller.create)
		router.Get("", controller.list)
		router.Get(":id", controller.get)
		router.Put(":id", controller.update)
		router.Delete(":id", controller.delete)
		router.Post(":id/component", controller.addComponent)
		router.Delete(":id/component/:component_id", controller.deleteComponent)
	})
}

func (c *vesselApiController) create(ctx *fiber.Ctx) error {
	payload := vesselapimodels.VesselData{}
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	id, err := vesselhandler.Instance.Create(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

func (c *vesselApiController) list(ctx *fiber.Ctx) error {
	resp, err := vesselhandler.Instance.List(middleware.GetUserOrg(ctx))
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func (c *vesselApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := vesselhandler.Instance.GetByID(middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func (c *vesselApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	payload := vesselapimodels.VesselData{}
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = vesselhandler.Instance.Update(middleware.GetUserOrg(ctx), id, middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(true))
}

func (c *vesselApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = vesselhandler.Instance.SoftDelete(middleware.GetUserOrg(ctx), id, middleware.GetUserID(ctx))
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(true))
}

func (c *vesselApiController) addComponent(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	payload := vesselapimodels.ComponentData{}
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	componentID, err := vesselhandler.Instance.AddComponent(middleware.GetUserOrg(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(componentID))
}

func (c *vesselApiController) deleteComponent(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	componentID := ctx.Params("component_id")
	if componentID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("component id is required"))
	}
	err = vesselhandler.Instance.DeleteComponent(middleware.GetUserOrg(ctx), id, componentID)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(true))
}
