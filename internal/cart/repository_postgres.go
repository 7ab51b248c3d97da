package cart

import (
	"database/sql"
	"encoding/json"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartQuery = `SELECT items, version FROM carts WHERE user_id = $1`

	// the WHERE version guard makes the write conditional on nobody else
	// having touched the cart since we read it
	saveCartQuery = `
		UPDATE carts SET items = $1, version = version + 1
		WHERE user_id = $2 AND version = $3
	`

	insertCartQuery = `
		INSERT INTO carts (user_id, items, version) VALUES ($1, $2, 1)
		ON CONFLICT (user_id) DO NOTHING
	`

	clearCartQuery = `
		INSERT INTO carts (user_id, items, version) VALUES ($1, '[]', 1)
		ON CONFLICT (user_id) DO UPDATE SET items = '[]', version = carts.version + 1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(userID int) ([]Line, error) {
	lines, _, err := r.load(userID)
	return lines, err
}

// Mutate applies fn under optimistic concurrency: load lines and version,
// transform, write back guarded by the version. One retry on conflict.
func (r *PostgresRepository) Mutate(userID int, fn func(lines []Line) ([]Line, error)) ([]Line, error) {
	for attempt := 0; attempt < 2; attempt++ {
		lines, version, err := r.load(userID)
		if err != nil {
			return nil, err
		}

		next, err := fn(lines)
		if err != nil {
			return nil, err
		}

		itemsJSON, err := json.Marshal(next)
		if err != nil {
			return nil, err
		}

		if version == 0 {
			// no row yet for this user
			if _, err := r.db.Exec(insertCartQuery, userID, itemsJSON); err != nil {
				return nil, err
			}
			// a concurrent insert may have won; re-check via the guarded update
			result, err := r.db.Exec(saveCartQuery, itemsJSON, userID, 1)
			if err != nil {
				return nil, err
			}
			if n, _ := result.RowsAffected(); n == 1 {
				return next, nil
			}
			continue
		}

		result, err := r.db.Exec(saveCartQuery, itemsJSON, userID, version)
		if err != nil {
			return nil, err
		}
		if n, _ := result.RowsAffected(); n == 1 {
			return next, nil
		}
	}

	return nil, ErrConflict
}

func (r *PostgresRepository) Clear(userID int) error {
	_, err := r.db.Exec(clearCartQuery, userID)
	return err
}

func (r *PostgresRepository) load(userID int) ([]Line, int, error) {
	var itemsJSON []byte
	var version int
	err := r.db.QueryRow(getCartQuery, userID).Scan(&itemsJSON, &version)
	if err == sql.ErrNoRows {
		return []Line{}, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	lines := []Line{}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &lines); err != nil {
			return nil, 0, err
		}
	}
	return lines, version, nil
}
