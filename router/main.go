package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskhive/go-tasks/handlers"
	"github.com/taskhive/go-tasks/middleware"
	"github.com/taskhive/go-tasks/store"
)

func SetupRoutes(app *fiber.App, h *handlers.Handler, s store.Store) {
	app.Get("/health", handlers.HandleHealthCheck)

	protected := middleware.Protected(s)

	users := app.Group("/users")
	users.Post("/", h.HandleSignup)
	users.Post("/login", h.HandleLogin)
	users.Post("/logout", protected, h.HandleLogout)
	users.Post("/logoutAll", protected, h.HandleLogoutAll)
	users.Get("/me", protected, h.HandleMe)
	users.Patch("/me", protected, h.HandleUpdateMe)
	users.Delete("/me", protected, h.HandleDeleteMe)
	users.Post("/me/avatar", protected, h.HandleUploadAvatar)
	users.Delete("/me/avatar", protected, h.HandleDeleteAvatar)
	users.Get("/:id/avatar", h.HandleGetAvatar)

	tasks := app.Group("/tasks", protected)
	tasks.Post("/", h.HandleCreateTask)
	tasks.Get("/", h.HandleAllTasks)
	tasks.Get("/:id", h.HandleGetOneTask)
	tasks.Patch("/:id", h.HandleUpdateTask)
	tasks.Delete("/:id", h.HandleDeleteTask)

	app.Get("/events", protected, h.HandleEvents)
}
