package order

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pharmacy-backend/internal/cart"
	"pharmacy-backend/internal/product"
	"pharmacy-backend/internal/user"
)

// Handler exposes checkout and order history. Admin listings are enriched
// with customer names and product snapshots so the dashboard does not need
// extra round trips.
type Handler struct {
	service  *Service
	carts    *cart.Service
	users    user.ServiceInterface
	products product.ServiceInterface
}

func NewHandler(s *Service, carts *cart.Service, users user.ServiceInterface, products product.ServiceInterface) *Handler {
	return &Handler{service: s, carts: carts, users: users, products: products}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/cart/checkout", h.checkout)
	// static segments before the :id route so "all" is not parsed as an id
	app.Get("/api/v1/orders/all", h.listAll)
	app.Get("/api/v1/orders/canceled/all", h.listAllCanceled)
	app.Get("/api/v1/orders/canceled", h.listCanceled)
	app.Get("/api/v1/orders", h.listMine)
	app.Put("/api/v1/orders/:id<[0-9]+>/status", h.updateStatus)
	app.Delete("/api/v1/orders/:id<[0-9]+>", h.cancel)
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(CheckoutRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// no explicit items means "buy my whole cart"
	if len(payload.Items) == 0 && h.carts != nil {
		lines, err := h.carts.Lines(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
		for _, l := range lines {
			payload.Items = append(payload.Items, CheckoutItem{ProductID: l.ProductID, Quantity: l.Quantity})
		}
	}

	ord, err := h.service.Checkout(userID, *payload)
	if err != nil {
		switch err {
		case ErrEmptyOrder, ErrIncompleteAddress, ErrInvalidPhone, ErrInvalidPayment:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case ErrProductNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
		case ErrInsufficientStock:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(ord)
}

func (h *Handler) listMine(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.service.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) listAll(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	orders, err := h.service.ListAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(h.enrich(orders))
}

func (h *Handler) listCanceled(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.service.ListCanceledByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) listAllCanceled(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	orders, err := h.service.ListAllCanceled()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(h.enrich(orders))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	if !user.IsAdminFromCtx(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	payload := new(updateStatusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	switch payload.Status {
	case StatusOnDelivery, StatusDelivered, StatusCanceled:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unknown status"})
	}

	ord, err := h.service.UpdateStatus(orderID, payload.Status)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(ord)
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orderID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}

	ord, err := h.service.Cancel(orderID, userID, user.IsAdminFromCtx(c))
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		case ErrForbidden:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": err.Error()})
		case ErrDelivered:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(ord)
}

// enrich attaches customer names and current product snapshots for the
// admin views. Lookups are best effort; a deleted user or product leaves
// the corresponding field empty rather than failing the listing.
func (h *Handler) enrich(orders []Order) []Order {
	for i := range orders {
		if h.users != nil {
			if u, err := h.users.GetByID(orders[i].UserID); err == nil {
				orders[i].UserName = u.DisplayName()
			}
		}
		if h.products == nil {
			continue
		}
		ids := make([]int, 0, len(orders[i].Items))
		for _, it := range orders[i].Items {
			ids = append(ids, it.ProductID)
		}
		prods, err := h.products.ListByIDs(ids)
		if err != nil {
			continue
		}
		snapshots := make(map[string]product.Snapshot, len(prods))
		for _, p := range prods {
			snapshots[strconv.Itoa(p.ID)] = p.Snapshot()
		}
		orders[i].Products = snapshots
	}
	return orders
}
