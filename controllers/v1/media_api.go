package apiv1

import (
	"io"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"vessel-works-backend/controllers"
	mediahandler "vessel-works-backend/lib/media"
	"vessel-works-backend/middleware"
	apimodels "vessel-works-backend/models/api"
)

type mediaApiController struct {
	controllers.BaseAPIController
}

func InitMediaApiRouters(app *fiber.App) {
	controller := mediaApiController{}
	app.Route("media", func(router fiber.Router) {
		router.Post("upload/:id", controller.upload)
		router.Get(":id", controller.download)
		router.Delete(":id", controller.delete)
	})
}

// upload accepts a multipart file attached to the work order given by
// the path id.
func (c *mediaApiController) upload(ctx *fiber.Ctx) error {
	workOrderID, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	body, err := file.Open()
	if err != nil {
		log.WithError(err).Error("failed to open uploaded file")
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	defer body.Close()

	id, err := mediahandler.Instance.Upload(
		ctx.UserContext(),
		middleware.GetUserOrg(ctx),
		workOrderID,
		middleware.GetUserID(ctx),
		file.Filename,
		file.Header.Get(fiber.HeaderContentType),
		body,
		file.Size,
	)
	if err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

func (c *mediaApiController) download(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	rec, reader, err := mediahandler.Instance.Download(ctx.UserContext(), id)
	if err != nil {
		return c.SendError(ctx, err)
	}
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		log.WithError(err).Error("failed to read media body")
		return c.SendError(ctx, err)
	}
	if rec.ContentType != "" {
		ctx.Set(fiber.HeaderContentType, rec.ContentType)
	}
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+rec.FileName+`"`)
	return ctx.Send(body)
}

func (c *mediaApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = mediahandler.Instance.Delete(ctx.UserContext(), id); err != nil {
		return c.SendError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(true))
}
