package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router mounts a group of routes on the application.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter mounts the JSON API backed by c.
func InstallRouter(app *fiber.App, c *Container) {
	setup(app, NewApiRouter(c))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
