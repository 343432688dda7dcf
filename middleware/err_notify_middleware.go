package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

type errNotifyPayload struct {
	Code   int    `json:"code"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Error  string `json:"error"`
}

var errNotifyClient = &http.Client{Timeout: 5 * time.Second}

// ErrNotify posts a summary of every 5xx response to the given webhook.
// Delivery happens off the request goroutine and failures only warn.
func ErrNotify(addr string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		statusCode := c.Response().StatusCode()
		if statusCode < http.StatusInternalServerError {
			return err
		}

		var parsed struct {
			Message string `json:"message"`
		}
		msg := string(c.Response().Body())
		if json.Unmarshal(c.Response().Body(), &parsed) == nil && parsed.Message != "" {
			msg = parsed.Message
		}

		path := c.OriginalURL()
		if r := c.Route(); r != nil {
			path = r.Path
		}
		payload := errNotifyPayload{
			Code:   statusCode,
			Method: c.Method(),
			Path:   path,
			Error:  msg,
		}

		go func() {
			body, mErr := json.Marshal(payload)
			if mErr != nil {
				return
			}
			resp, reqErr := errNotifyClient.Post(addr, "application/json", bytes.NewReader(body))
			if reqErr != nil {
				log.WithError(reqErr).Warn("failed to deliver error notification")
				return
			}
			resp.Body.Close()
		}()
		return err
	}
}
