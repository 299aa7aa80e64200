package server

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/finastack/folio/config"
	"github.com/finastack/folio/gateway"
	"github.com/finastack/folio/procedures"
)

func GetTimestamp(c *fiber.Ctx) error {
	return c.JSON(time.Now().Unix())
}

type CallbackController struct {
	Engine *procedures.Engine
}

// DataFileCallback receives the asynchronous data-file result.
// Delivery is at-least-once; the engine treats replays as no-ops, so a
// duplicate still gets a 200.
func (ctrl *CallbackController) DataFileCallback(c *fiber.Ctx) error {
	response := &gateway.DataFileResponse{}
	if err := c.BodyParser(response); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed payload"})
	}

	if err := ctrl.Engine.HandleDataCallback(response); err != nil {
		config.Logger.Errorf("data-file callback %s: %v", response.ID, err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
