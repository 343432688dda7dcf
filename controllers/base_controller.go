package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"vessel-works-backend/lib/apperr"
	apimodels "vessel-works-backend/models/api"
)

type BaseAPIController struct{}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		log.WithError(err).Error("failed to parse request body")
		return errors.New("failed to read request data")
	}
	return nil
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (string, error) {
	id := ctx.Params("id")
	if id == "" {
		return "", errors.New("record id is required")
	}
	return id, nil
}

// SendError maps typed application errors to their status; everything
// else is a 500 with the detail kept out of the response body.
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		return ctx.Status(status).JSON(apimodels.NewError("internal error"))
	}
	return ctx.Status(status).JSON(apimodels.NewError(err.Error()))
}
