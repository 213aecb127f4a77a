package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/karthikykr/MovieTicketBooking/internal/booking"
	"github.com/karthikykr/MovieTicketBooking/internal/realtime"
	"github.com/karthikykr/MovieTicketBooking/internal/repository"
)

// fullRefundWindow is how long before the showtime a cancellation still
// refunds the full amount; inside the window half is refunded.
const fullRefundWindow = 24 * time.Hour

// BookingHandler serves the commit and booking management endpoints.
type BookingHandler struct {
	Svc      *booking.Service
	Bookings *repository.BookingRepo
	SeatMap  *repository.SeatMapRepo
	Rooms    *realtime.Hub
}

func NewBookingHandler(svc *booking.Service, b *repository.BookingRepo, sm *repository.SeatMapRepo, rooms *realtime.Hub) *BookingHandler {
	return &BookingHandler{Svc: svc, Bookings: b, SeatMap: sm, Rooms: rooms}
}

type bookReq struct {
	Seats         []string `json:"seats"`
	DiscountCents uint32   `json:"discount_cents"`
}

// Book commits the caller's held seats into a confirmed booking.
//
// Error mapping: seats not held by the caller or lost to another booking
// answer 409 with the failing seat labels; an exhausted transient retry
// answers 503 so the client can resubmit the identical request.
func (h *BookingHandler) Book(c echo.Context) error {
	slotID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	b, err := h.Svc.Commit(ctx, slotID, req.Seats, currentUser(c), req.DiscountCents)
	if err != nil {
		if su, ok := repository.IsSeatUnavailable(err); ok {
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "seats_unavailable",
				"seats": su.SeatLabels,
			})
		}
		switch {
		case errors.Is(err, booking.ErrNoSeats):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats required"})
		case errors.Is(err, repository.ErrSlotNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		case errors.Is(err, repository.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown seat"})
		case errors.Is(err, booking.ErrTransient):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "try_again"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking": echo.Map{
			"id":             b.ID,
			"reference":      b.Reference,
			"status":         b.Status,
			"slot_id":        b.SlotID,
			"total_cents":    b.TotalCents,
			"tax_cents":      b.TaxCents,
			"discount_cents": b.DiscountCents,
			"final_cents":    b.FinalCents,
		},
		"seats": req.Seats,
	})
}

// MyBookings lists the caller's bookings, newest first.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	details, err := h.Bookings.ListByUser(ctx, currentUser(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": details})
}

// GetBooking returns one booking owned by the caller.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	d, err := h.Bookings.GetByIDForUser(ctx, bookingID, currentUser(c))
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, d)
}

// CancelBooking cancels a booking before its showtime starts. Seats return
// to AVAILABLE and everyone watching the slot gets seat_released events.
// The refund is the full paid amount when cancelled at least 24 hours ahead
// and half of it afterwards.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	userID := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	d, err := h.Bookings.GetByIDForUser(ctx, bookingID, userID)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	refund := refundFor(d.FinalCents, d.StartsAt)

	seats, slotID, err := h.Bookings.Cancel(ctx, h.SeatMap, bookingID, userID, refund)
	if err != nil {
		switch err {
		case repository.ErrBookingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking not cancellable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	for _, label := range seats {
		h.Rooms.SeatReleased(slotID, label)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking_id":   bookingID,
		"status":       "CANCELLED",
		"refund_cents": refund,
		"seats":        seats,
	})
}

// refundFor computes the refund from the paid amount and the show start,
// given as the RFC 3339 string the booking queries return. An unparsable
// start falls back to the reduced refund.
func refundFor(finalCents uint32, startsAt string) uint32 {
	start, err := time.Parse(time.RFC3339, startsAt)
	if err != nil {
		return finalCents / 2
	}
	if time.Until(start) >= fullRefundWindow {
		return finalCents
	}
	return finalCents / 2
}
