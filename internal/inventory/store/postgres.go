package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toursales/internal/inventory/models"
	"toursales/pkg/platform/sentinel"
)

// PostgresStore persists tours in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const tourColumns = `id, title, description, price, capacity, available_spots, image_url, created_at, updated_at`

func (s *PostgresStore) List(ctx context.Context) ([]*models.Tour, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tourColumns+` FROM tours ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tours: %w", err)
	}
	defer rows.Close()

	var tours []*models.Tour
	for rows.Next() {
		tour, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, tour)
	}
	return tours, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Tour, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tourColumns+` FROM tours WHERE id = $1`, id)
	tour, err := scanTour(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return tour, err
}

func (s *PostgresStore) Create(ctx context.Context, tour *models.Tour) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tours (title, description, price, capacity, available_spots, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		tour.Title, tour.Description, tour.Price, tour.Capacity,
		tour.AvailableSpots, tour.ImageURL, tour.CreatedAt, tour.UpdatedAt,
	).Scan(&tour.ID)
	if err != nil {
		return fmt.Errorf("insert tour: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, tour *models.Tour) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tours
		SET title = $1, description = $2, price = $3, capacity = $4,
		    available_spots = $5, image_url = $6, updated_at = $7
		WHERE id = $8`,
		tour.Title, tour.Description, tour.Price, tour.Capacity,
		tour.AvailableSpots, tour.ImageURL, tour.UpdatedAt, tour.ID,
	)
	if err != nil {
		return fmt.Errorf("update tour: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tours WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tour: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// ReserveSpots decrements the counter with a single conditional UPDATE, so
// the capacity check and the decrement are one atomic statement and the
// counter can never go below zero. Zero rows affected means either the tour
// is missing or the spots ran out; a follow-up read distinguishes the two.
func (s *PostgresStore) ReserveSpots(ctx context.Context, id int64, quantity int, now time.Time) (*models.Tour, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE tours
		SET available_spots = available_spots - $1, updated_at = $2
		WHERE id = $3 AND available_spots >= $1
		RETURNING `+tourColumns,
		quantity, now, id,
	)
	tour, err := scanTour(row)
	if err == nil {
		return tour, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, findErr := s.FindByID(ctx, id); errors.Is(findErr, sentinel.ErrNotFound) {
		return nil, sentinel.ErrNotFound
	}
	return nil, sentinel.ErrInvalidState
}

// ReleaseSpots is the compensating increment, capped at capacity.
func (s *PostgresStore) ReleaseSpots(ctx context.Context, id int64, quantity int, now time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tours
		SET available_spots = LEAST(available_spots + $1, capacity), updated_at = $2
		WHERE id = $3`,
		quantity, now, id,
	)
	if err != nil {
		return fmt.Errorf("release spots: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTour(row rowScanner) (*models.Tour, error) {
	var t models.Tour
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Price, &t.Capacity,
		&t.AvailableSpots, &t.ImageURL, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan tour: %w", err)
	}
	return &t, nil
}
