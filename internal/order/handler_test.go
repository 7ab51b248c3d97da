package order

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"pharmacy-backend/internal/cart"
	"pharmacy-backend/internal/notify"
	"pharmacy-backend/internal/product"
	"pharmacy-backend/internal/user"
)

func makeAppWithOrderHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id, "is_admin": c.Get("X-Admin") == "true"}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func newOrderHandlerFixture() (*Handler, *cart.InMemoryRepository) {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Ibuprofen 200mg", Price: 10.00, Stock: 10},
		{ID: 2, Name: "Cough Syrup", Price: 5.00, Stock: 3},
	})
	productService := product.NewService(products)
	carts := cart.NewInMemoryRepository()
	cartService := cart.NewService(carts, productService)
	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: 42, Email: "jane@example.com", FirstName: "Jane", LastName: "Doe"},
		{ID: 1, Email: "admin@example.com", FirstName: "Sam", LastName: "Admin", IsAdmin: true},
	}))

	repo := NewInMemoryRepository(products, carts)
	service := NewService(repo, users, notify.NopSender{})
	return NewHandler(service, cartService, users, productService), carts
}

const checkoutBody = `{
	"shippingAddress": {"address": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "US"},
	"phoneNumber": "5551234567",
	"paymentMethod": "card"
}`

func TestCheckoutRoute_UsesCartWhenNoItemsGiven(t *testing.T) {
	handler, carts := newOrderHandlerFixture()
	app := makeAppWithOrderHandler(handler)

	carts.Mutate(42, func([]cart.Line) ([]cart.Line, error) {
		return []cart.Line{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}, nil
	})

	req := httptest.NewRequest("POST", "/api/v1/cart/checkout", strings.NewReader(checkoutBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("expected 201, got %d: %s", res.StatusCode, string(b))
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"totalAmount":25`) {
		t.Fatalf("expected total 25 in response, got %s", string(b))
	}

	// checkout consumed the cart
	lines, _ := carts.Get(42)
	if len(lines) != 0 {
		t.Fatalf("expected empty cart after checkout, got %+v", lines)
	}

	// an empty cart cannot be checked out again
	req2 := httptest.NewRequest("POST", "/api/v1/cart/checkout", strings.NewReader(checkoutBody))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart checkout, got %d", res2.StatusCode)
	}
}

func TestOrderRoutes_AdminGuards(t *testing.T) {
	handler, _ := newOrderHandlerFixture()
	app := makeAppWithOrderHandler(handler)

	for _, path := range []string{"/api/v1/orders/all", "/api/v1/orders/canceled/all"} {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("X-User-ID", "42")
		res, _ := app.Test(req)
		if res.StatusCode != fiber.StatusForbidden {
			t.Fatalf("expected 403 for %s as customer, got %d", path, res.StatusCode)
		}
	}

	req := httptest.NewRequest("PUT", "/api/v1/orders/1/status", strings.NewReader(`{"status":"Delivered"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for status update as customer, got %d", res.StatusCode)
	}
}

func TestOrderRoutes_AdminListingIsEnriched(t *testing.T) {
	handler, _ := newOrderHandlerFixture()
	app := makeAppWithOrderHandler(handler)

	body := `{"items":[{"productId":1,"quantity":1}],` + checkoutBody[1:]
	req := httptest.NewRequest("POST", "/api/v1/cart/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	if res, _ := app.Test(req); res.StatusCode != fiber.StatusCreated {
		t.Fatalf("setup checkout failed with %d", res.StatusCode)
	}

	list := httptest.NewRequest("GET", "/api/v1/orders/all", nil)
	list.Header.Set("X-User-ID", "1")
	list.Header.Set("X-Admin", "true")
	res, _ := app.Test(list)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for admin listing, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"userName":"Jane Doe"`) {
		t.Fatalf("expected customer name in admin listing, got %s", string(b))
	}
	if !strings.Contains(string(b), "Ibuprofen") {
		t.Fatalf("expected product snapshot in admin listing, got %s", string(b))
	}
}

func TestOrderRoutes_CancelAndStatus(t *testing.T) {
	handler, _ := newOrderHandlerFixture()
	app := makeAppWithOrderHandler(handler)

	body := `{"items":[{"productId":2,"quantity":1}],` + checkoutBody[1:]
	req := httptest.NewRequest("POST", "/api/v1/cart/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	if res, _ := app.Test(req); res.StatusCode != fiber.StatusCreated {
		t.Fatalf("setup checkout failed with %d", res.StatusCode)
	}

	// admin marks the order delivered
	mark := httptest.NewRequest("PUT", "/api/v1/orders/1/status", strings.NewReader(`{"status":"Delivered"}`))
	mark.Header.Set("Content-Type", "application/json")
	mark.Header.Set("X-User-ID", "1")
	mark.Header.Set("X-Admin", "true")
	if res, _ := app.Test(mark); res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for status update, got %d", res.StatusCode)
	}

	// delivered orders cannot be cancelled, even by their owner
	cancel := httptest.NewRequest("DELETE", "/api/v1/orders/1", nil)
	cancel.Header.Set("X-User-ID", "42")
	res, _ := app.Test(cancel)
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for delivered cancel, got %d", res.StatusCode)
	}
}
