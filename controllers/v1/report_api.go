package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"vessel-works-backend/controllers"
	reporthandler "vessel-works-backend/lib/report"
	"vessel-works-backend/middleware"
	apimodels "vessel-works-backend/models/api"
	workorderapimodels "vessel-works-backend/models/api/workorder"
)

type reportApiController struct {
	controllers.BaseAPIController
}

func InitReportApiRouters(app *fiber.App) {
	controller := reportApiController{}
	app.Route("report", func(router fiber.Router) {
		router.Get("work_order/:id/inspection.pdf", controller.inspectionPDF)
		router.Get("work_order/:id/inspection.xlsx", controller.inspectionXLSX)
		router.Post("register.xlsx", controller.registerXLSX)
	})
}

func (c *reportApiController) inspectionPDF(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	fileName, body, err := reporthandler.Instance.InspectionPDF(middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, err)
	}
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.Send(body)
}

func (c *reportApiController) inspectionXLSX(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	fileName, file, err := reporthandler.Instance.InspectionXLSX(middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, err)
	}
	ctx.Set(fiber.HeaderContentType, "application/vnd.ms-excel")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(file)
}

func (c *reportApiController) registerXLSX(ctx *fiber.Ctx) error {
	payload := workorderapimodels.WorkOrderFilter{}
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	payload.Limit = 1000
	fileName, file, err := reporthandler.Instance.RegisterXLSX(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, err)
	}
	ctx.Set(fiber.HeaderContentType, "application/vnd.ms-excel")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(file)
}
