package router

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/redis/go-redis/v9"

	apiv1 "github.com/ManuelReschke/TaskFox/internal/api/v1"
	"github.com/ManuelReschke/TaskFox/internal/pkg/env"
	"github.com/ManuelReschke/TaskFox/internal/pkg/middleware"
)

type ApiRouter struct {
	container *Container
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(h.limiterConfig()))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiServer := apiv1.NewAPIServer(h.container.Controllers())
	apiv1.RegisterHandlers(v1, apiServer, apiv1.Middlewares{
		Auth:  middleware.APIKeyAuthMiddleware(h.container.Repos),
		Admin: middleware.RequireAdmin,
	})
}

func NewApiRouter(c *Container) *ApiRouter {
	return &ApiRouter{container: c}
}

// limiterConfig keys requests by client IP. Webhooks are exempt.
func (h ApiRouter) limiterConfig() limiter.Config {
	cfg := h.container.cfg
	limit := cfg.LimiterMax
	if limit <= 0 {
		limit = 120
	}
	window := cfg.LimiterWindow
	if window <= 0 {
		window = time.Minute
	}

	lc := limiter.Config{
		Max:        limit,
		Expiration: window,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/v1/webhooks/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "Too many requests",
			})
		},
	}
	if cfg.Cache != nil {
		lc.Storage = newLimiterStorage(cfg.Cache)
	}
	return lc
}

// newLimiterStorage shares counters across instances. It reuses the cache
// connection settings on a separate database.
func newLimiterStorage(client *redis.Client) fiber.Storage {
	opts := client.Options()
	host, port := "localhost", 6379
	if h, p, err := net.SplitHostPort(opts.Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: opts.Password,
		Database: env.GetInt("LIMITER_CACHE_DB", 1),
		Reset:    false,
	})
}
