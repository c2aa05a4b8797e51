package routes

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/meetsik24/Split-Bill-Platform-Backend/config"
	"github.com/meetsik24/Split-Bill-Platform-Backend/controller"
)

func InitRoutes(ussdCtl *controller.USSDController, billCtl *controller.BillController) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	v1 := app.Group("/billsplit/api/v1/")
	v1.All("/service-status", controller.ServiceStatusCheck)
	v1.All("/ussd", ussdCtl.Webhook)

	v1.Post("/bills", billCtl.CreateBill)
	v1.Get("/bills", billCtl.ListByCreator)
	v1.Get("/bills/:id", billCtl.GetBill)
	v1.Post("/bills/:id/payments", billCtl.MarkPaid)

	// session diagnostics never reach a production configuration
	if config.IsDevMode() {
		v1.Get("/sessions/count", ussdCtl.SessionCount)
		v1.Get("/sessions/:id", ussdCtl.GetSession)
		v1.Delete("/sessions", ussdCtl.ClearSessions)
	}

	return app
}
