package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"pharmacy-backend/internal/cart"
	"pharmacy-backend/internal/category"
	"pharmacy-backend/internal/chat"
	"pharmacy-backend/internal/config"
	"pharmacy-backend/internal/manufacturer"
	"pharmacy-backend/internal/notify"
	"pharmacy-backend/internal/ocr"
	"pharmacy-backend/internal/order"
	"pharmacy-backend/internal/payment"
	"pharmacy-backend/internal/product"
	"pharmacy-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		panic("JWT_SECRET is not set")
	}

	app := fiber.New()
	setupCORS(app, cfg.AllowOrigins)
	app.Use(requestLogger)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	bootstrapSchema(db)

	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo)

	var scanner ocr.Client
	if cfg.OCREndpoint != "" {
		scanner = ocr.NewHTTPClient(cfg.OCREndpoint)
	}
	productHandler := product.NewHandler(productService, scanner)

	categoryHandler := category.NewHandler(category.NewService(category.NewPostgresRepository(db)), productService)
	manufacturerHandler := manufacturer.NewHandler(manufacturer.NewService(manufacturer.NewPostgresRepository(db)), productService)

	cartService := cart.NewService(cart.NewPostgresRepository(db), productService)
	cartHandler := cart.NewHandler(cartService)

	var notifier notify.Sender = notify.NopSender{}
	if cfg.NotifyEndpoint != "" {
		notifier = notify.NewWebhookSender(cfg.NotifyEndpoint)
	}
	orderService := order.NewService(order.NewPostgresRepository(db), userService, notifier)
	orderHandler := order.NewHandler(orderService, cartService, userService, productService)

	// the hub both feeds messages into the chat service and receives the
	// stored copies back for fan-out, so it is wired in after construction
	chatService := chat.NewService(chat.NewPostgresRepository(db), userService, nil, cfg.SharedAdminID)
	hub := chat.NewHub(chatService)
	chatService.SetPublisher(hub)
	chatHandler := chat.NewHandler(chatService)

	var provider payment.Provider
	if cfg.PaymentEndpoint != "" {
		provider = payment.NewHTTPProvider(cfg.PaymentEndpoint)
	}
	paymentHandler := payment.NewHandler(provider)

	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	manufacturerHandler.RegisterPublicRoutes(app)

	// websocket clients authenticate with a token query parameter instead of
	// the Authorization header, so the hub mounts before the JWT middleware
	hub.RegisterRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	}))

	userHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	categoryHandler.RegisterProtectedRoutes(app)
	manufacturerHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	chatHandler.RegisterProtectedRoutes(app)
	paymentHandler.RegisterProtectedRoutes(app)

	if err := app.Listen(cfg.Addr); err != nil {
		panic(err)
	}
}

func setupCORS(app *fiber.App, allowOrigins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	fmt.Printf("%s %s -> %d (%v)\n", c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
	return err
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}
	if err := db.Ping(); err != nil {
		panic(err)
	}
	return db
}

// bootstrapSchema creates every table the repositories expect. All
// statements are idempotent so restarts against an existing database are
// harmless.
func bootstrapSchema(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			category_id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS manufacturers (
			manufacturer_id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			product_id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			category_id INT,
			manufacturer_id INT,
			price NUMERIC NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			stock_level INT NOT NULL DEFAULT 0,
			images TEXT[] NOT NULL DEFAULT '{}',
			average_rating NUMERIC NOT NULL DEFAULT 0,
			ratings_count INT NOT NULL DEFAULT 0,
			reviews JSONB NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS carts (
			user_id INT PRIMARY KEY,
			items JSONB NOT NULL DEFAULT '[]',
			version INT NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			items JSONB NOT NULL DEFAULT '[]',
			total_amount NUMERIC NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT '',
			ship_address TEXT NOT NULL DEFAULT '',
			ship_city TEXT NOT NULL DEFAULT '',
			ship_postal_code TEXT NOT NULL DEFAULT '',
			ship_country TEXT NOT NULL DEFAULT '',
			phone_number TEXT NOT NULL DEFAULT '',
			payment_method TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS canceled_orders (
			order_id INT PRIMARY KEY,
			user_id INT NOT NULL,
			items JSONB NOT NULL DEFAULT '[]',
			total_amount NUMERIC NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT '',
			ship_address TEXT NOT NULL DEFAULT '',
			ship_city TEXT NOT NULL DEFAULT '',
			ship_postal_code TEXT NOT NULL DEFAULT '',
			ship_country TEXT NOT NULL DEFAULT '',
			phone_number TEXT NOT NULL DEFAULT '',
			payment_method TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id SERIAL PRIMARY KEY,
			sender_id INT NOT NULL,
			receiver_id INT NOT NULL,
			body TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			panic(err)
		}
	}
}
