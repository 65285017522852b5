package store

import (
	"context"
	"database/sql"
	"fmt"

	"toursales/internal/purchase/models"
)

// PostgresStore persists tickets in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, ticket *models.Ticket) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tickets (user_id, tour_id, quantity, total, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		ticket.UserID, ticket.TourID, ticket.Quantity, ticket.Total, ticket.CreatedAt,
	).Scan(&ticket.ID)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// ListViews returns the denormalized history, newest first. Tours are joined
// with LEFT JOIN so tickets against a deleted tour still list, with an empty
// title. The total column is normalized through toAmount at the read
// boundary.
func (s *PostgresStore) ListViews(ctx context.Context, filter models.TicketFilter) ([]models.TicketView, error) {
	query := `
		SELECT t.id, u.name, u.cedula, COALESCE(tr.title, ''), t.quantity, t.total, t.created_at
		FROM tickets t
		JOIN users u ON u.id = t.user_id
		LEFT JOIN tours tr ON tr.id = t.tour_id
		WHERE ($1 = 0 OR t.id = $1)
		  AND ($2 = '' OR u.cedula = $2)
		ORDER BY t.created_at DESC, t.id DESC`

	rows, err := s.db.QueryContext(ctx, query, filter.TicketID, filter.Cedula)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	views := make([]models.TicketView, 0)
	for rows.Next() {
		var v models.TicketView
		var rawTotal any
		if err := rows.Scan(&v.ID, &v.Name, &v.Cedula, &v.Tour, &v.Quantity, &rawTotal, &v.DatePurchase); err != nil {
			return nil, fmt.Errorf("scan ticket view: %w", err)
		}
		v.Total = toAmount(rawTotal)
		views = append(views, v)
	}
	return views, rows.Err()
}
