package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/finastack/folio/procedures"
)

func SetupRouter(engine *procedures.Engine) *fiber.App {
	app := fiber.New()

	controller := &CallbackController{Engine: engine}

	app.Get("/api/v1/public/timestamp", GetTimestamp)
	app.Post("/api/v1/import/data-file/callback", controller.DataFileCallback)

	return app
}
