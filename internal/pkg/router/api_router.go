package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/subkassa/autopay/app/controllers"
	"github.com/subkassa/autopay/internal/pkg/env"
	"github.com/subkassa/autopay/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// Cabinet endpoints, authenticated per user.
	cabinet := v1.Group("/payment-methods", middleware.APITokenAuthMiddleware())
	cabinet.Get("/", controllers.HandleListPaymentMethods)
	cabinet.Delete("/:id", controllers.HandleDeletePaymentMethod)

	// Operational endpoints, guarded by the static admin token.
	admin := v1.Group("/admin", middleware.AdminAuthMiddleware())
	admin.Post("/recurring/run", controllers.HandleRecurringRun)
	admin.Get("/recurring/status", controllers.HandleRecurringStatus)
	admin.Post("/recurring/start", controllers.HandleRecurringStart)
	admin.Post("/recurring/stop", controllers.HandleRecurringStop)
}

// newLimiterStorage keeps rate limit counters in Redis so limits survive
// restarts and are shared between instances. Database 1 keeps them apart
// from the charge locks on database 0.
func newLimiterStorage() fiber.Storage {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redisstorage.New(redisstorage.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     port,
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: 1,
		Reset:    false,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
