package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/karthikykr/MovieTicketBooking/internal/booking"
	"github.com/karthikykr/MovieTicketBooking/internal/config"
	"github.com/karthikykr/MovieTicketBooking/internal/database"
	"github.com/karthikykr/MovieTicketBooking/internal/handler"
	"github.com/karthikykr/MovieTicketBooking/internal/hold"
	"github.com/karthikykr/MovieTicketBooking/internal/queue"
	"github.com/karthikykr/MovieTicketBooking/internal/realtime"
	"github.com/karthikykr/MovieTicketBooking/internal/repository"
	"github.com/karthikykr/MovieTicketBooking/internal/router"
	queuepublisher "github.com/karthikykr/MovieTicketBooking/internal/service"
)

func main() {
	// .env is optional; real deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := config.Load()
	bcfg := config.LoadBookingConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	movies := repository.NewMovieRepo(db)
	theaters := repository.NewTheaterRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	seatMap := repository.NewSeatMapRepo(db)
	bookings := repository.NewBookingRepo(db)

	registry := hold.NewRegistry(bcfg.HoldTTL)
	hub := realtime.NewHub(registry)
	publisher := queuepublisher.NewEventPublisher(showtimes)
	commits := booking.NewService(seatMap, registry, hub, publisher,
		bcfg.TaxRateBps, bcfg.CommitRetries, bcfg.CommitRetryBackoff)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := hold.NewSweeper(registry, hub, bcfg.SweepInterval)
	go sweeper.Run(ctx)
	go queue.StartNotificationConsumer()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, users, tokens),
		Browse:  handler.NewBrowseHandler(movies, theaters, showtimes),
		SeatMap: handler.NewSeatMapHandler(cfg.JWTSecret, seatMap, registry),
		Booking: handler.NewBookingHandler(commits, bookings, seatMap, hub),
		Live:    handler.NewLiveHandler(cfg.JWTSecret, seatMap, registry, hub),
	}, cfg, rdb)

	go func() {
		<-ctx.Done()
		log.Printf("shutting down")
		_ = e.Shutdown(context.Background())
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
