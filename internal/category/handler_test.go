package category

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"pharmacy-backend/internal/product"
)

func makeAppWithCategoryHandler(h *Handler) *fiber.App {
	app := fiber.New()
	h.RegisterPublicRoutes(app)
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

func TestCategoryRoutes(t *testing.T) {
	painRelief := 1
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Aspirin 100mg", CategoryID: &painRelief},
		{ID: 2, Name: "Vitamin C 1000mg"},
	})
	repo := NewInMemoryRepository([]Category{{ID: 1, Name: "Pain relief"}})
	handler := NewHandler(NewService(repo), product.NewService(products))
	app := makeAppWithCategoryHandler(handler)

	// listing and category products are public
	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/categories", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for list, got %d", res.StatusCode)
	}

	res2, _ := app.Test(httptest.NewRequest("GET", "/api/v1/categories/1/products", nil))
	b2, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b2), "Aspirin") || strings.Contains(string(b2), "Vitamin") {
		t.Fatalf("expected only pain relief products, got %s", string(b2))
	}

	res3, _ := app.Test(httptest.NewRequest("GET", "/api/v1/categories/9/products", nil))
	if res3.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown category, got %d", res3.StatusCode)
	}

	// mutations are admin only
	req := httptest.NewRequest("POST", "/api/v1/categories", strings.NewReader(`{"name":"Vitamins"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res4, _ := app.Test(req)
	if res4.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for customer create, got %d", res4.StatusCode)
	}

	admin := httptest.NewRequest("POST", "/api/v1/categories", strings.NewReader(`{"name":"Vitamins"}`))
	admin.Header.Set("Content-Type", "application/json")
	admin.Header.Set("X-User-ID", "1")
	admin.Header.Set("X-Admin", "true")
	res5, _ := app.Test(admin)
	if res5.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 for admin create, got %d", res5.StatusCode)
	}

	dup := httptest.NewRequest("POST", "/api/v1/categories", strings.NewReader(`{"name":"Vitamins"}`))
	dup.Header.Set("Content-Type", "application/json")
	dup.Header.Set("X-User-ID", "1")
	dup.Header.Set("X-Admin", "true")
	res6, _ := app.Test(dup)
	if res6.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d", res6.StatusCode)
	}
}
