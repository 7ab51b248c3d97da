package product

import (
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `product_id, name, category_id, manufacturer_id, price, description, stock_level, images, average_rating, ratings_count, reviews, created_at, updated_at`

	listProductsQuery = `SELECT ` + productColumns + ` FROM products ORDER BY product_id`

	getProductByIDQuery = `SELECT ` + productColumns + ` FROM products WHERE product_id = $1`

	getProductByNameQuery = `SELECT ` + productColumns + ` FROM products WHERE name = $1`

	listProductsByIDsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE product_id = ANY($1::int[])
		ORDER BY array_position($1::int[], product_id)
	`

	listByCategoryQuery = `SELECT ` + productColumns + ` FROM products WHERE category_id = $1 ORDER BY product_id`

	listByManufacturerQuery = `SELECT ` + productColumns + ` FROM products WHERE manufacturer_id = $1 ORDER BY product_id`

	searchProductsQuery = `SELECT ` + productColumns + ` FROM products WHERE name ILIKE '%' || $1 || '%' ORDER BY product_id`

	insertProductQuery = `
		INSERT INTO products (name, category_id, manufacturer_id, price, description, stock_level, images, average_rating, ratings_count, reviews, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING product_id
	`

	updateProductQuery = `
		UPDATE products
		SET name = $1, category_id = $2, manufacturer_id = $3, price = $4,
			description = $5, stock_level = $6, images = $7, updated_at = $8
		WHERE product_id = $9
	`

	saveReviewsQuery = `
		UPDATE products
		SET reviews = $1, average_rating = $2, ratings_count = $3
		WHERE product_id = $4
	`

	deleteProductQuery = `DELETE FROM products WHERE product_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() []Product {
	return r.queryMany(listProductsQuery)
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) GetByName(name string) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductByNameQuery, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) ListByIDs(ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}

	rows, err := r.db.Query(listProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PostgresRepository) ListByCategoryID(categoryID int) []Product {
	return r.queryMany(listByCategoryQuery, categoryID)
}

func (r *PostgresRepository) ListByManufacturerID(manufacturerID int) []Product {
	return r.queryMany(listByManufacturerQuery, manufacturerID)
}

func (r *PostgresRepository) Search(query string) []Product {
	return r.queryMany(searchProductsQuery, query)
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	reviewsJSON, err := json.Marshal(reviewsOrEmpty(p.Reviews))
	if err != nil {
		return Product{}, err
	}

	var id int
	err = r.db.QueryRow(
		insertProductQuery,
		p.Name,
		p.CategoryID,
		p.ManufacturerID,
		p.Price,
		p.Description,
		p.Stock,
		pq.Array(p.Images),
		p.AverageRating,
		p.RatingsCount,
		reviewsJSON,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return Product{}, err
	}

	p.ID = id
	return p, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	result, err := r.db.Exec(
		updateProductQuery,
		p.Name,
		p.CategoryID,
		p.ManufacturerID,
		p.Price,
		p.Description,
		p.Stock,
		pq.Array(p.Images),
		p.UpdatedAt,
		id,
	)
	if err != nil {
		return Product{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Product{}, err
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}

	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteProductQuery, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) SaveReviews(id int, reviews []Review, average float64, count int) (Product, error) {
	reviewsJSON, err := json.Marshal(reviewsOrEmpty(reviews))
	if err != nil {
		return Product{}, err
	}

	result, err := r.db.Exec(saveReviewsQuery, reviewsJSON, average, count, id)
	if err != nil {
		return Product{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Product{}, err
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}

	return r.GetByID(id)
}

func (r *PostgresRepository) queryMany(query string, args ...any) []Product {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return []Product{}
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	var categoryID sql.NullInt64
	var reviewsJSON []byte
	var createdAt, updatedAt sql.NullString

	if err := scanner.Scan(
		&p.ID,
		&p.Name,
		&categoryID,
		&p.ManufacturerID,
		&p.Price,
		&p.Description,
		&p.Stock,
		pq.Array(&p.Images),
		&p.AverageRating,
		&p.RatingsCount,
		&reviewsJSON,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Product{}, err
	}

	if categoryID.Valid {
		id := int(categoryID.Int64)
		p.CategoryID = &id
	}
	if len(reviewsJSON) > 0 {
		if err := json.Unmarshal(reviewsJSON, &p.Reviews); err != nil {
			return Product{}, err
		}
	}
	if p.Reviews == nil {
		p.Reviews = []Review{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.String
	}

	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func reviewsOrEmpty(reviews []Review) []Review {
	if reviews == nil {
		return []Review{}
	}
	return reviews
}
