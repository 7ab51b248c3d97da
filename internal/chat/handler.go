package chat

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pharmacy-backend/internal/user"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/chats", h.send)
	app.Get("/api/v1/chats", h.conversations)
	app.Get("/api/v1/chats/:counterpartyId<[0-9]+>", h.messages)
}

type sendRequest struct {
	ReceiverID int    `json:"receiverId"`
	Message    string `json:"message"`
}

func (h *Handler) send(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(sendRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	m, err := h.service.Send(userID, user.IsAdminFromCtx(c), payload.ReceiverID, payload.Message)
	if err != nil {
		switch err {
		case ErrEmptyMessage:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case user.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Receiver not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *Handler) conversations(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	convos, err := h.service.Conversations()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(convos)
}

func (h *Handler) messages(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	counterpartyID, err := strconv.Atoi(c.Params("counterpartyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid counterparty id"})
	}

	msgs, err := h.service.Messages(userID, user.IsAdminFromCtx(c), counterpartyID)
	if err != nil {
		switch err {
		case ErrForbidden:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return c.JSON(msgs)
}
