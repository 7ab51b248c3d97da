package order

import (
	"database/sql"
	"encoding/json"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	orderColumns = `order_id, user_id, items, total_amount, status, ship_address, ship_city, ship_postal_code, ship_country, phone_number, payment_method, created_at, updated_at`

	lockProductQuery = `SELECT price, stock_level FROM products WHERE product_id = $1 FOR UPDATE`

	decrementStockQuery = `UPDATE products SET stock_level = stock_level - $1 WHERE product_id = $2`

	insertOrderQuery = `
		INSERT INTO orders (user_id, items, total_amount, status, ship_address, ship_city, ship_postal_code, ship_country, phone_number, payment_method, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING order_id
	`

	clearCartOnCheckoutQuery = `
		INSERT INTO carts (user_id, items, version) VALUES ($1, '[]', 1)
		ON CONFLICT (user_id) DO UPDATE SET items = '[]', version = carts.version + 1
	`

	getOrderQuery = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`

	lockOrderQuery = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1 FOR UPDATE`

	listOrdersByUserQuery = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY order_id`

	listAllOrdersQuery = `SELECT ` + orderColumns + ` FROM orders ORDER BY order_id`

	updateOrderStatusQuery = `UPDATE orders SET status = $1, updated_at = $2 WHERE order_id = $3`

	insertCanceledOrderQuery = `
		INSERT INTO canceled_orders (order_id, user_id, items, total_amount, status, ship_address, ship_city, ship_postal_code, ship_country, phone_number, payment_method, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`

	deleteOrderQuery = `DELETE FROM orders WHERE order_id = $1`

	listCanceledByUserQuery = `SELECT ` + orderColumns + ` FROM canceled_orders WHERE user_id = $1 ORDER BY order_id`

	listAllCanceledQuery = `SELECT ` + orderColumns + ` FROM canceled_orders ORDER BY order_id`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Checkout runs the whole conversion inside one transaction: every product
// is locked and re-checked, stock is decremented, the order is written with
// frozen unit prices and the cart is cleared. Any failure rolls the lot
// back, so a rejected checkout never leaves stock partially decremented.
func (r *PostgresRepository) Checkout(ord Order, items []CheckoutItem) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	ord.Items = make([]Item, 0, len(items))
	ord.TotalAmount = 0
	for _, it := range items {
		var price float64
		var stock int
		if err := tx.QueryRow(lockProductQuery, it.ProductID).Scan(&price, &stock); err != nil {
			if err == sql.ErrNoRows {
				return Order{}, ErrProductNotFound
			}
			return Order{}, err
		}
		if stock < it.Quantity {
			return Order{}, ErrInsufficientStock
		}
		if _, err := tx.Exec(decrementStockQuery, it.Quantity, it.ProductID); err != nil {
			return Order{}, err
		}
		ord.Items = append(ord.Items, Item{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: price})
		ord.TotalAmount += price * float64(it.Quantity)
	}

	itemsJSON, err := json.Marshal(ord.Items)
	if err != nil {
		return Order{}, err
	}

	ord.Status = StatusOnDelivery
	if err := tx.QueryRow(
		insertOrderQuery,
		ord.UserID,
		itemsJSON,
		ord.TotalAmount,
		ord.Status,
		ord.ShippingAddress.Address,
		ord.ShippingAddress.City,
		ord.ShippingAddress.PostalCode,
		ord.ShippingAddress.Country,
		ord.PhoneNumber,
		ord.PaymentMethod,
		ord.CreatedAt,
		ord.UpdatedAt,
	).Scan(&ord.OrderID); err != nil {
		return Order{}, err
	}

	if _, err := tx.Exec(clearCartOnCheckoutQuery, ord.UserID); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) GetByID(orderID int) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(getOrderQuery, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	return r.queryMany(listOrdersByUserQuery, userID)
}

func (r *PostgresRepository) ListAll() ([]Order, error) {
	return r.queryMany(listAllOrdersQuery)
}

func (r *PostgresRepository) UpdateStatus(orderID int, status, updatedAt string) (Order, error) {
	result, err := r.db.Exec(updateOrderStatusQuery, status, updatedAt, orderID)
	if err != nil {
		return Order{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Order{}, err
	}
	if affected == 0 {
		return Order{}, ErrNotFound
	}

	return r.GetByID(orderID)
}

// Cancel moves the order into canceled_orders and removes the original in
// one transaction. At rest the order exists in exactly one of the two
// tables.
func (r *PostgresRepository) Cancel(orderID int) (Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	ord, err := scanOrder(tx.QueryRow(lockOrderQuery, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}

	if ord.Status == StatusDelivered {
		return Order{}, ErrDelivered
	}

	itemsJSON, err := json.Marshal(ord.Items)
	if err != nil {
		return Order{}, err
	}

	ord.Status = StatusCanceled
	if _, err := tx.Exec(
		insertCanceledOrderQuery,
		ord.OrderID,
		ord.UserID,
		itemsJSON,
		ord.TotalAmount,
		ord.Status,
		ord.ShippingAddress.Address,
		ord.ShippingAddress.City,
		ord.ShippingAddress.PostalCode,
		ord.ShippingAddress.Country,
		ord.PhoneNumber,
		ord.PaymentMethod,
		ord.CreatedAt,
		ord.UpdatedAt,
	); err != nil {
		return Order{}, err
	}

	if _, err := tx.Exec(deleteOrderQuery, orderID); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) ListCanceledByUser(userID int) ([]Order, error) {
	return r.queryMany(listCanceledByUserQuery, userID)
}

func (r *PostgresRepository) ListAllCanceled() ([]Order, error) {
	return r.queryMany(listAllCanceledQuery)
}

func (r *PostgresRepository) queryMany(query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ord)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(scanner rowScanner) (Order, error) {
	ord := Order{}
	var itemsJSON []byte
	var createdAt, updatedAt sql.NullString

	if err := scanner.Scan(
		&ord.OrderID,
		&ord.UserID,
		&itemsJSON,
		&ord.TotalAmount,
		&ord.Status,
		&ord.ShippingAddress.Address,
		&ord.ShippingAddress.City,
		&ord.ShippingAddress.PostalCode,
		&ord.ShippingAddress.Country,
		&ord.PhoneNumber,
		&ord.PaymentMethod,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Order{}, err
	}

	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &ord.Items); err != nil {
			return Order{}, err
		}
	}
	if ord.Items == nil {
		ord.Items = []Item{}
	}
	if createdAt.Valid {
		ord.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		ord.UpdatedAt = updatedAt.String
	}

	return ord, nil
}
