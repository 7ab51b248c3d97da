package category

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	listCategoriesQuery   = `SELECT category_id, name, description, image FROM categories ORDER BY category_id`
	getCategoryByIDQuery  = `SELECT category_id, name, description, image FROM categories WHERE category_id = $1`
	getCategoryByNameQry  = `SELECT category_id, name, description, image FROM categories WHERE name = $1`
	insertCategoryQuery   = `INSERT INTO categories (name, description, image) VALUES ($1, $2, $3) RETURNING category_id`
	updateCategoryQuery   = `UPDATE categories SET name = $1, description = $2, image = $3 WHERE category_id = $4`
	deleteCategoryQuery   = `DELETE FROM categories WHERE category_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() []Category {
	rows, err := r.db.Query(listCategoriesQuery)
	if err != nil {
		return []Category{}
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			continue
		}
		out = append(out, cat)
	}
	return out
}

func (r *PostgresRepository) GetByID(id int) (Category, error) {
	cat, err := scanCategory(r.db.QueryRow(getCategoryByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Category{}, ErrNotFound
		}
		return Category{}, err
	}
	return cat, nil
}

func (r *PostgresRepository) GetByName(name string) (Category, error) {
	cat, err := scanCategory(r.db.QueryRow(getCategoryByNameQry, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return Category{}, ErrNotFound
		}
		return Category{}, err
	}
	return cat, nil
}

func (r *PostgresRepository) Create(cat Category) (Category, error) {
	var id int
	if err := r.db.QueryRow(insertCategoryQuery, cat.Name, cat.Description, cat.Image).Scan(&id); err != nil {
		return Category{}, err
	}
	cat.ID = id
	return cat, nil
}

func (r *PostgresRepository) Update(id int, cat Category) (Category, error) {
	result, err := r.db.Exec(updateCategoryQuery, cat.Name, cat.Description, cat.Image, id)
	if err != nil {
		return Category{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Category{}, err
	}
	if affected == 0 {
		return Category{}, ErrNotFound
	}

	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteCategoryQuery, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(scanner rowScanner) (Category, error) {
	cat := Category{}
	var description, image sql.NullString
	if err := scanner.Scan(&cat.ID, &cat.Name, &description, &image); err != nil {
		return Category{}, err
	}
	if description.Valid {
		cat.Description = description.String
	}
	if image.Valid {
		cat.Image = image.String
	}
	return cat, nil
}
