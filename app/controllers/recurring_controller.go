package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/subkassa/autopay/internal/pkg/recurring"
)

var recurringService *recurring.Service

// SetRecurringService wires the scheduler into the admin endpoints.
func SetRecurringService(service *recurring.Service) {
	recurringService = service
}

func requireRecurringService(c *fiber.Ctx) (*recurring.Service, error) {
	if recurringService == nil {
		return nil, c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "unavailable", "message": "Recurring service is not initialized"})
	}
	return recurringService, nil
}

// HandleRecurringRun triggers one charge pass synchronously and returns its stats.
func HandleRecurringRun(c *fiber.Ctx) error {
	service, err := requireRecurringService(c)
	if service == nil {
		return err
	}

	stats := service.ProcessRecurringCharges(c.Context())
	return c.JSON(stats)
}

// HandleRecurringStatus reports the scheduler state.
func HandleRecurringStatus(c *fiber.Ctx) error {
	service, err := requireRecurringService(c)
	if service == nil {
		return err
	}

	return c.JSON(fiber.Map{
		"enabled":          service.Enabled(),
		"running":          service.IsRunning(),
		"interval_minutes": int(service.Interval().Minutes()),
	})
}

// HandleRecurringStart launches the charge loop.
func HandleRecurringStart(c *fiber.Ctx) error {
	service, err := requireRecurringService(c)
	if service == nil {
		return err
	}

	if !service.Enabled() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "Recurring charges are disabled"})
	}

	service.Start()
	return c.JSON(fiber.Map{"success": true, "running": service.IsRunning()})
}

// HandleRecurringStop halts the charge loop, letting an in-flight pass finish.
func HandleRecurringStop(c *fiber.Ctx) error {
	service, err := requireRecurringService(c)
	if service == nil {
		return err
	}

	service.Stop()
	return c.JSON(fiber.Map{"success": true, "running": service.IsRunning()})
}
