package chat

import "database/sql"

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertMessageQuery = `
		INSERT INTO chat_messages (sender_id, receiver_id, body, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	messagesBetweenQuery = `
		SELECT id, sender_id, receiver_id, body, is_admin, created_at
		FROM chat_messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY id
	`
	// the customer side of a message is the receiver when the shared admin
	// sent it, the sender otherwise
	conversationsQuery = `
		SELECT customer_id, body, created_at FROM (
			SELECT DISTINCT ON (customer_id) customer_id, body, created_at, id
			FROM (
				SELECT CASE WHEN is_admin THEN receiver_id ELSE sender_id END AS customer_id,
				       body, created_at, id
				FROM chat_messages
			) AS m
			ORDER BY customer_id, id DESC
		) AS latest
		ORDER BY id DESC
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(m Message) (Message, error) {
	err := r.db.QueryRow(insertMessageQuery, m.SenderID, m.ReceiverID, m.Body, m.IsAdmin, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

func (r *PostgresRepository) Between(a, b int) ([]Message, error) {
	rows, err := r.db.Query(messagesBetweenQuery, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.IsAdmin, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Conversations() ([]Conversation, error) {
	rows, err := r.db.Query(conversationsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.CustomerID, &c.LastMessage, &c.LastAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
