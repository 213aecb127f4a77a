package repository

import (
	"context"
	"database/sql"
	"strings"
)

// MovieRecord mirrors the movies table for catalog browsing. Dates are
// formatted as strings for direct JSON serialization in the public API.
type MovieRecord struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	DurationMin uint32 `json:"duration_min"`
	Rating      string `json:"rating"`
	PosterURL   string `json:"poster_url"`
	Description string `json:"description"`
	ReleaseDate string `json:"release_date"`
}

// MovieRepo provides read access to the movie catalog.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = `id, title, genre, duration_min, rating, poster_url, description,
	DATE_FORMAT(release_date, '%Y-%m-%d')`

// List returns the catalog, optionally filtered by a case-insensitive
// title/genre search term.
func (r *MovieRepo) List(ctx context.Context, search string) ([]MovieRecord, error) {
	query := `SELECT ` + movieColumns + ` FROM movies`
	var args []interface{}
	if s := strings.TrimSpace(search); s != "" {
		query += ` WHERE LOWER(title) LIKE ? OR LOWER(genre) LIKE ?`
		like := "%" + strings.ToLower(s) + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY release_date DESC, title`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := []MovieRecord{}
	for rows.Next() {
		var m MovieRecord
		if err := rows.Scan(&m.ID, &m.Title, &m.Genre, &m.DurationMin, &m.Rating,
			&m.PosterURL, &m.Description, &m.ReleaseDate); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// GetByID retrieves one movie. Returns ErrMovieNotFound when absent.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*MovieRecord, error) {
	var m MovieRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id,
	).Scan(&m.ID, &m.Title, &m.Genre, &m.DurationMin, &m.Rating,
		&m.PosterURL, &m.Description, &m.ReleaseDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}
