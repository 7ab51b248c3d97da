package payment

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"pharmacy-backend/internal/user"
)

type Handler struct {
	provider Provider
}

func NewHandler(provider Provider) *Handler {
	return &Handler{provider: provider}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/payments/intent", h.createIntent)
}

type createIntentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (h *Handler) createIntent(c *fiber.Ctx) error {
	if _, err := user.GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if h.provider == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "payments are not configured"})
	}

	payload := new(createIntentRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	intent, err := h.provider.CreateIntent(c.Context(), payload.Amount, payload.Currency)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, ErrProviderDown):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(intent)
}
