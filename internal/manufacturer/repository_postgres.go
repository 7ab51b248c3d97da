package manufacturer

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	listManufacturersQuery  = `SELECT manufacturer_id, name, description, image FROM manufacturers ORDER BY manufacturer_id`
	getManufacturerByIDQry  = `SELECT manufacturer_id, name, description, image FROM manufacturers WHERE manufacturer_id = $1`
	getManufacturerByName   = `SELECT manufacturer_id, name, description, image FROM manufacturers WHERE name = $1`
	insertManufacturerQuery = `INSERT INTO manufacturers (name, description, image) VALUES ($1, $2, $3) RETURNING manufacturer_id`
	updateManufacturerQuery = `UPDATE manufacturers SET name = $1, description = $2, image = $3 WHERE manufacturer_id = $4`
	deleteManufacturerQuery = `DELETE FROM manufacturers WHERE manufacturer_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() []Manufacturer {
	rows, err := r.db.Query(listManufacturersQuery)
	if err != nil {
		return []Manufacturer{}
	}
	defer rows.Close()

	out := make([]Manufacturer, 0)
	for rows.Next() {
		m, err := scanManufacturer(rows)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (r *PostgresRepository) GetByID(id int) (Manufacturer, error) {
	m, err := scanManufacturer(r.db.QueryRow(getManufacturerByIDQry, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Manufacturer{}, ErrNotFound
		}
		return Manufacturer{}, err
	}
	return m, nil
}

func (r *PostgresRepository) GetByName(name string) (Manufacturer, error) {
	m, err := scanManufacturer(r.db.QueryRow(getManufacturerByName, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return Manufacturer{}, ErrNotFound
		}
		return Manufacturer{}, err
	}
	return m, nil
}

func (r *PostgresRepository) Create(m Manufacturer) (Manufacturer, error) {
	var id int
	if err := r.db.QueryRow(insertManufacturerQuery, m.Name, m.Description, m.Image).Scan(&id); err != nil {
		return Manufacturer{}, err
	}
	m.ID = id
	return m, nil
}

func (r *PostgresRepository) Update(id int, m Manufacturer) (Manufacturer, error) {
	result, err := r.db.Exec(updateManufacturerQuery, m.Name, m.Description, m.Image, id)
	if err != nil {
		return Manufacturer{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return Manufacturer{}, err
	}
	if affected == 0 {
		return Manufacturer{}, ErrNotFound
	}

	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteManufacturerQuery, id)
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

func scanManufacturer(scanner rowScanner) (Manufacturer, error) {
	m := Manufacturer{}
	var description, image sql.NullString
	if err := scanner.Scan(&m.ID, &m.Name, &description, &image); err != nil {
		return Manufacturer{}, err
	}
	if description.Valid {
		m.Description = description.String
	}
	if image.Valid {
		m.Image = image.String
	}
	return m, nil
}
