package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"vessel-works-backend/controllers"
	workformhandler "vessel-works-backend/lib/workform"
	"vessel-works-backend/middleware"
	apimodels "vessel-works-backend/models/api"
)

type workFormApiController struct {
	controllers.BaseAPIController
}

func InitWorkFormApiRouters(app *fiber.App) {
	controller := workFormApiController{}
	app.Route("work_order/:id/form", func(router fiber.Router) {
		router.Post("generate", controller.generate)
		router.Get("", controller.entries)
		router.Get("export", controller.exportJSON)
	})
}

func (c *workFormApiController) generate(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := workformhandler.Instance.GenerateForm(middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func (c *workFormApiController) entries(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := workformhandler.Instance.ListByWorkOrder(id)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

func (c *workFormApiController) exportJSON(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	raw, err := workformhandler.Instance.FormDataJSON(id)
	if err != nil {
		return c.SendError(ctx, err)
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Status(fiber.StatusOK).SendString(raw)
}
