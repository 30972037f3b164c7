package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/sadanews/sada/internal/middleware"
)

// SetupRoutes wires the public and admin endpoints onto the app.
func SetupRoutes(app *fiber.App, handlers *Handlers, adminKey string) {
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	api := app.Group("/api/v1")

	api.Get("/health", handlers.HealthCheck)

	articles := api.Group("/articles")
	{
		articles.Get("", handlers.ListArticles)
		articles.Get("/:id", handlers.GetArticle)
	}

	admin := api.Group("/admin", middleware.AdminOnly(adminKey))
	{
		admin.Post("/articles", handlers.CreateArticle)
		admin.Put("/articles/:id", handlers.UpdateArticle)
		admin.Delete("/articles/:id", handlers.DeleteArticle)
		admin.Post("/articles/:id/featured", handlers.ToggleFeatured)

		admin.Get("/sync/config", handlers.GetSyncConfig)
		admin.Patch("/sync/config", handlers.UpdateSyncConfig)
		admin.Post("/sync/run", handlers.RunSync)
		admin.Get("/sync/status", handlers.SyncStatus)

		admin.Post("/webhook/articles", handlers.ReceiveWebhook)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
