package repository

import (
	"context"
	"database/sql"
)

// TheaterRecord mirrors the theaters table for catalog browsing.
type TheaterRecord struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	City        string `json:"city"`
	Address     string `json:"address"`
	ScreenCount uint32 `json:"screen_count"`
}

// TheaterRepo provides read access to theaters.
type TheaterRepo struct {
	db *sql.DB
}

// NewTheaterRepo returns a TheaterRepo bound to the given database.
func NewTheaterRepo(db *sql.DB) *TheaterRepo { return &TheaterRepo{db: db} }

// List returns all theaters, optionally filtered by city.
func (r *TheaterRepo) List(ctx context.Context, city string) ([]TheaterRecord, error) {
	query := `SELECT id, name, city, address, screen_count FROM theaters`
	var args []interface{}
	if city != "" {
		query += ` WHERE city = ?`
		args = append(args, city)
	}
	query += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	theaters := []TheaterRecord{}
	for rows.Next() {
		var t TheaterRecord
		if err := rows.Scan(&t.ID, &t.Name, &t.City, &t.Address, &t.ScreenCount); err != nil {
			return nil, err
		}
		theaters = append(theaters, t)
	}
	return theaters, rows.Err()
}

// GetByID retrieves one theater. Returns ErrTheaterNotFound when absent.
func (r *TheaterRepo) GetByID(ctx context.Context, id uint64) (*TheaterRecord, error) {
	var t TheaterRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, city, address, screen_count FROM theaters WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.City, &t.Address, &t.ScreenCount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTheaterNotFound
		}
		return nil, err
	}
	return &t, nil
}
