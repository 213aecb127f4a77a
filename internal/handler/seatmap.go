package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/karthikykr/MovieTicketBooking/internal/hold"
	"github.com/karthikykr/MovieTicketBooking/internal/middleware"
	"github.com/karthikykr/MovieTicketBooking/internal/model"
	"github.com/karthikykr/MovieTicketBooking/internal/realtime"
	"github.com/karthikykr/MovieTicketBooking/internal/repository"
)

// SeatMapHandler serves point-in-time seat snapshots over REST. The same
// reconciliation of durable status and live holds backs the WebSocket join
// snapshot.
type SeatMapHandler struct {
	Secret   string
	Seats    *repository.SeatMapRepo
	Registry *hold.Registry
}

func NewSeatMapHandler(secret string, seats *repository.SeatMapRepo, reg *hold.Registry) *SeatMapHandler {
	return &SeatMapHandler{Secret: secret, Seats: seats, Registry: reg}
}

// GetSeatMap returns every seat of a slot with its effective status. The
// route is public; when a valid bearer token is supplied, seats held by the
// caller are flagged held_by_me.
func (h *SeatMapHandler) GetSeatMap(c echo.Context) error {
	slotID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	seats, err := h.Seats.GetSeats(ctx, slotID)
	if err != nil {
		if err == repository.ErrSlotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var viewer uint64
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		viewer, _, _ = middleware.ParseAccessToken(h.Secret, strings.TrimPrefix(auth, "Bearer "))
	}

	views := BuildSeatViews(seats, h.Registry.List(slotID), viewer)
	return c.JSON(http.StatusOK, echo.Map{"slot_id": slotID, "seats": views})
}

// BuildSeatViews overlays live holds on the durable seat rows. Booked wins
// over held; a hold on a booked seat is a leftover the sweeper will clear.
func BuildSeatViews(seats []model.SlotSeat, holds map[string]uint64, viewer uint64) []realtime.SeatView {
	views := make([]realtime.SeatView, 0, len(seats))
	for _, s := range seats {
		v := realtime.SeatView{
			SeatLabel:  s.SeatLabel,
			SeatType:   s.SeatType,
			Status:     "available",
			PriceCents: s.PriceCents,
		}
		if s.Status == model.SeatBooked {
			v.Status = "booked"
		} else if holder, held := holds[s.SeatLabel]; held {
			v.Status = "held"
			v.HeldByMe = viewer != 0 && holder == viewer
		}
		views = append(views, v)
	}
	return views
}
