package manufacturer

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pharmacy-backend/internal/product"
	"pharmacy-backend/internal/user"
)

type Handler struct {
	service  *Service
	products *product.Service
}

func NewHandler(s *Service, products *product.Service) *Handler {
	return &Handler{service: s, products: products}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/manufacturers", h.list)
	app.Get("/api/v1/manufacturers/:id<[0-9]+>", h.getByID)
	app.Get("/api/v1/manufacturers/:id<[0-9]+>/products", h.getProducts)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/manufacturers", h.create)
	app.Put("/api/v1/manufacturers/:id<[0-9]+>", h.update)
	app.Delete("/api/v1/manufacturers/:id<[0-9]+>", h.delete)
}

type manufacturerRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (h *Handler) list(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}

func (h *Handler) getByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid manufacturer id"})
	}

	m, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "manufacturer not found"})
	}
	return c.JSON(m)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid manufacturer id"})
	}

	if _, err := h.service.GetByID(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "manufacturer not found"})
	}
	return c.JSON(h.products.ListByManufacturerID(id))
}

func (h *Handler) create(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
	}

	payload := new(manufacturerRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name is required"})
	}

	created, err := h.service.Create(Manufacturer{
		Name:        payload.Name,
		Description: payload.Description,
		Image:       payload.Image,
	})
	if err != nil {
		if err == ErrNameExists {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Manufacturer already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) update(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid manufacturer id"})
	}

	payload := new(manufacturerRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.Update(id, Manufacturer{
		Name:        payload.Name,
		Description: payload.Description,
		Image:       payload.Image,
	})
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "manufacturer not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(updated)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid manufacturer id"})
	}

	if err := h.service.Delete(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "manufacturer not found"})
	}
	return c.JSON(fiber.Map{"message": "Manufacturer removed"})
}
