package product

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"pharmacy-backend/internal/ocr"
	"pharmacy-backend/internal/user"
)

// Handler delegates product operations to the product service. The OCR
// client is optional; without it the searchOCR endpoint reports 503.
type Handler struct {
	service *Service
	scanner ocr.Client
}

func NewHandler(s *Service, scanner ocr.Client) *Handler {
	return &Handler{service: s, scanner: scanner}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products/search", h.search)
	app.Get("/api/v1/products", h.list)
	app.Get("/api/v1/products/:id<[0-9]+>", h.getByID)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/products", h.create)
	app.Put("/api/v1/products/:id<[0-9]+>", h.update)
	app.Delete("/api/v1/products/:id<[0-9]+>", h.delete)

	app.Post("/api/v1/products/:id<[0-9]+>/reviews", h.addReview)
	app.Delete("/api/v1/products/:id<[0-9]+>/reviews/:index<[0-9]+>", h.deleteReview)

	app.Post("/api/v1/products/searchOCR", h.searchOCR)
}

type productRequest struct {
	Name           string   `json:"name"`
	CategoryID     *int     `json:"categoryId"`
	ManufacturerID int      `json:"manufacturerId"`
	Price          float64  `json:"price"`
	Description    string   `json:"description"`
	Stock          int      `json:"stockLevel"`
	Images         []string `json:"images"`
}

// updateRequest uses pointers so omitted fields are distinguishable from
// explicit zeroes: `{"stockLevel":0}` clears the stock, a body without the
// field leaves it alone.
type updateRequest struct {
	Name           *string  `json:"name"`
	CategoryID     *int     `json:"categoryId"`
	ManufacturerID *int     `json:"manufacturerId"`
	Price          *float64 `json:"price"`
	Description    *string  `json:"description"`
	Stock          *int     `json:"stockLevel"`
	Images         []string `json:"images"`
}

func (h *Handler) list(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}

func (h *Handler) getByID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	p, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}
	return c.JSON(p)
}

func (h *Handler) search(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "search query is required"})
	}
	return c.JSON(h.service.Search(q))
}

func (h *Handler) create(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin access required"})
	}

	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Name == "" || payload.ManufacturerID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name and manufacturerId are required"})
	}
	if payload.Stock < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "stockLevel cannot be negative"})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	created, err := h.service.Create(Product{
		Name:           payload.Name,
		CategoryID:     payload.CategoryID,
		ManufacturerID: payload.ManufacturerID,
		Price:          payload.Price,
		Description:    payload.Description,
		Stock:          payload.Stock,
		Images:         payload.Images,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		if err == ErrNameExists {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Product already exists."})
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
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	payload := new(updateRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Stock != nil && *payload.Stock < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "stockLevel cannot be negative"})
	}

	updated, err := h.service.Update(id, UpdateInput{
		Name:           payload.Name,
		CategoryID:     payload.CategoryID,
		ManufacturerID: payload.ManufacturerID,
		Price:          payload.Price,
		Description:    payload.Description,
		Stock:          payload.Stock,
		Images:         payload.Images,
	})
	if err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
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
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	if err := h.service.Delete(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}
	return c.JSON(fiber.Map{"message": "Product removed"})
}

type reviewRequest struct {
	Name    string `json:"name"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) addReview(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	if _, err := user.GetUserIDFromCtx(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(reviewRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Name == "" || payload.Comment == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name and comment are required"})
	}

	updated, err := h.service.AddReview(id, payload.Name, payload.Rating, payload.Comment)
	if err != nil {
		switch err {
		case ErrInvalidRating:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(updated)
}

func (h *Handler) deleteReview(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid review index"})
	}

	updated, err := h.service.DeleteReview(id, index)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		case ErrNoSuchReview:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "review not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(updated)
}

type ocrSearchRequest struct {
	Image string `json:"image"`
}

// searchOCR sends the uploaded image to the external text-extraction
// provider and runs a keyword search over the extracted words.
func (h *Handler) searchOCR(c *fiber.Ctx) error {
	if h.scanner == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "OCR is not configured"})
	}

	payload := new(ocrSearchRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Image == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "image is required"})
	}

	text, err := h.scanner.ExtractText(c.Context(), payload.Image)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "Error processing the image for OCR."})
	}

	words := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == ',' || r == '.' || r == ';'
	})

	return c.JSON(fiber.Map{
		"text":     text,
		"products": h.service.SearchKeywords(words),
	})
}
