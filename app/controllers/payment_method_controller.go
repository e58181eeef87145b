package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/subkassa/autopay/app/models"
	"github.com/subkassa/autopay/app/repository"
	"github.com/subkassa/autopay/internal/pkg/middleware"
)

// paymentMethodResponse is the cabinet view of a saved method. The gateway
// token never leaves the server, only masked card data does.
type paymentMethodResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Type            string    `json:"type"`
	CardFirstSix    string    `json:"card_first_six,omitempty"`
	CardLastFour    string    `json:"card_last_four,omitempty"`
	CardType        string    `json:"card_type,omitempty"`
	CardExpiryMonth string    `json:"card_expiry_month,omitempty"`
	CardExpiryYear  string    `json:"card_expiry_year,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toPaymentMethodResponse(method models.SavedPaymentMethod) paymentMethodResponse {
	return paymentMethodResponse{
		ID:              method.ID,
		Title:           method.DisplayTitle(),
		Type:            method.Type,
		CardFirstSix:    method.CardFirstSix,
		CardLastFour:    method.CardLastFour,
		CardType:        method.CardType,
		CardExpiryMonth: method.CardExpiryMonth,
		CardExpiryYear:  method.CardExpiryYear,
		CreatedAt:       method.CreatedAt,
	}
}

// HandleListPaymentMethods returns the active saved methods of the
// authenticated user, newest first.
func HandleListPaymentMethods(c *fiber.Ctx) error {
	userID := middleware.AuthenticatedUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing user context"})
	}

	repo := repository.GetGlobalFactory().GetSavedPaymentMethodRepository()
	methods, err := repo.GetActiveByUser(userID)
	if err != nil {
		log.Printf("failed to list payment methods for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load payment methods"})
	}

	items := make([]paymentMethodResponse, 0, len(methods))
	for _, method := range methods {
		items = append(items, toPaymentMethodResponse(method))
	}

	return c.JSON(fiber.Map{
		"items": items,
		"total": len(items),
	})
}

// HandleDeletePaymentMethod deactivates one of the user's saved methods.
// The row stays in the database, the method just stops being usable.
func HandleDeletePaymentMethod(c *fiber.Ctx) error {
	userID := middleware.AuthenticatedUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing user context"})
	}

	methodID, err := c.ParamsInt("id")
	if err != nil || methodID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid payment method id"})
	}

	repo := repository.GetGlobalFactory().GetSavedPaymentMethodRepository()
	methods, err := repo.GetActiveByUser(userID)
	if err != nil {
		log.Printf("failed to load payment methods for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load payment methods"})
	}

	// Ownership check: only the user's own active methods can be unlinked.
	var found bool
	for _, method := range methods {
		if method.ID == uint(methodID) {
			found = true
			break
		}
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Saved payment method not found"})
	}

	if err := repo.Deactivate(uint(methodID)); err != nil {
		log.Printf("failed to deactivate payment method %d: %v", methodID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to unlink payment method"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment method successfully unlinked",
	})
}
