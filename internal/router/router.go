// Package router wires URL paths to handlers and applies route middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/karthikykr/MovieTicketBooking/internal/config"
	"github.com/karthikykr/MovieTicketBooking/internal/handler"
	"github.com/karthikykr/MovieTicketBooking/internal/middleware"
)

// Handlers groups everything the route table needs.
type Handlers struct {
	Auth    *handler.AuthHandler
	Browse  *handler.BrowseHandler
	SeatMap *handler.SeatMapHandler
	Booking *handler.BookingHandler
	Live    *handler.LiveHandler
}

// Register sets up the full route table. Public browse routes go through
// the response cache; auth and booking writes go through the rate limiter;
// booking management requires a valid access token. The live WebSocket
// route does its own token check because browsers cannot send headers on
// upgrade requests.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limited := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	cached := middleware.ResponseCache(config.LoadCacheConfig(), rdb)

	// Session endpoints. Logout needs the caller's identity.
	auth := e.Group("/v1/auth", limited)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout, middleware.JWTAuth(cfg.JWTSecret))

	// Public catalog. Cached; never reflects live hold state.
	e.GET("/v1/movies", h.Browse.ListMovies, cached)
	e.GET("/v1/movies/:id", h.Browse.GetMovie, cached)
	e.GET("/v1/movies/:id/showtimes", h.Browse.ListShowtimes, cached)
	e.GET("/v1/theaters", h.Browse.ListTheaters, cached)

	// Seat state. The REST snapshot is public, the WebSocket is not.
	e.GET("/v1/slots/:id/seats", h.SeatMap.GetSeatMap)
	e.GET("/v1/slots/:id/live", h.Live.Live)

	// Booking endpoints, all authenticated.
	protected := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole("CUSTOMER", "ADMIN"))
	protected.GET("/me", h.Auth.Me)
	protected.POST("/slots/:id/book", h.Booking.Book, limited)
	protected.GET("/my-bookings", h.Booking.MyBookings)
	protected.GET("/bookings/:id", h.Booking.GetBooking)
	protected.DELETE("/bookings/:id", h.Booking.CancelBooking, limited)
}
