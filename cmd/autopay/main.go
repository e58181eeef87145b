package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/subkassa/autopay/app/controllers"
	"github.com/subkassa/autopay/app/models"
	"github.com/subkassa/autopay/app/repository"
	"github.com/subkassa/autopay/internal/pkg/cache"
	"github.com/subkassa/autopay/internal/pkg/database"
	"github.com/subkassa/autopay/internal/pkg/env"
	"github.com/subkassa/autopay/internal/pkg/gateway"
	"github.com/subkassa/autopay/internal/pkg/middleware"
	"github.com/subkassa/autopay/internal/pkg/notify"
	"github.com/subkassa/autopay/internal/pkg/pricing"
	"github.com/subkassa/autopay/internal/pkg/recurring"
	"github.com/subkassa/autopay/internal/pkg/router"
)

func main() {
	app, service := NewApplication()

	// Graceful shutdown: stop the charge loop first so an in-flight pass
	// finishes, then drain the HTTP server.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Println("Shutting down...")
		service.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

func NewApplication() (*fiber.App, *recurring.Service) {
	env.SetupEnvFile()
	models.DefaultAutopayLeadDays = env.GetEnvInt("AUTOPAY_DEFAULT_LEAD_DAYS", 3)

	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()

	gatewayClient := gateway.NewClient()

	notifier, err := notify.NewTelegramNotifier()
	if err != nil {
		log.Fatalf("Failed to initialize Telegram notifier: %v", err)
	}

	calculator := pricing.NewCalculator(repos.Tariff, env.GetEnvInt64("AUTOPAY_MONTH_PRICE_KOPEKS", 29900))

	service := recurring.NewService(recurring.ConfigFromEnv(), recurring.Deps{
		Subscriptions: repos.Subscription,
		Methods:       repos.SavedPaymentMethod,
		Tariffs:       repos.Tariff,
		Payments:      repos.Payment,
		Prices:        calculator,
		Gateway:       gatewayClient,
		Notifier:      notifier,
		Locks:         recurring.NewCacheLocker(),
	})
	controllers.SetRecurringService(service)
	service.Start()

	// init fiber app
	app := fiber.New()

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", middleware.AdminAuthMiddleware(), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app, service
}
