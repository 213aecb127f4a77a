package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/karthikykr/MovieTicketBooking/internal/repository"
)

// BrowseHandler serves the public catalog: movies, theaters and showtimes.
// These routes sit behind the response cache; they never reflect live hold
// state.
type BrowseHandler struct {
	Movies    *repository.MovieRepo
	Theaters  *repository.TheaterRepo
	Showtimes *repository.ShowtimeRepo
}

func NewBrowseHandler(m *repository.MovieRepo, t *repository.TheaterRepo, s *repository.ShowtimeRepo) *BrowseHandler {
	return &BrowseHandler{Movies: m, Theaters: t, Showtimes: s}
}

// ListMovies returns the catalog, filtered by an optional ?q= search term
// matched against title and genre.
func (h *BrowseHandler) ListMovies(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	movies, err := h.Movies.List(ctx, c.QueryParam("q"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": movies})
}

// GetMovie returns one movie by id.
func (h *BrowseHandler) GetMovie(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, m)
}

// ListTheaters returns theaters, filtered by an optional ?city= parameter.
func (h *BrowseHandler) ListTheaters(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	theaters, err := h.Theaters.List(ctx, c.QueryParam("city"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"theaters": theaters})
}

// ListShowtimes returns the screening slots of a movie, optionally filtered
// by ?date=YYYY-MM-DD.
func (h *BrowseHandler) ListShowtimes(c echo.Context) error {
	movieID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	date := c.QueryParam("date")
	if date != "" {
		if _, perr := time.Parse("2006-01-02", date); perr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	// Verify the movie exists so an unknown id reads as 404, not an empty list.
	if _, err := h.Movies.GetByID(ctx, movieID); err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	slots, err := h.Showtimes.ListSlotsByMovie(ctx, movieID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"movie_id": movieID, "showtimes": slots})
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
