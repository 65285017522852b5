package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"toursales/internal/identity/models"
	"toursales/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL. The unique index on cedula is
// the authoritative dedup mechanism; concurrent creates race to the index and
// losers surface sentinel.ErrAlreadyUsed.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByCedula(ctx context.Context, cedula string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, cedula, name, email, created_at
		FROM users WHERE cedula = $1`, cedula)
	return scanUser(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, cedula, name, email, created_at
		FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PostgresStore) CreateIfCedulaAvailable(ctx context.Context, user *models.User) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (cedula, name, email, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		user.Cedula, user.Name, user.Email, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Cedula, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
