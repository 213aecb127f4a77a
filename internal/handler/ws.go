package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/karthikykr/MovieTicketBooking/internal/hold"
	"github.com/karthikykr/MovieTicketBooking/internal/middleware"
	"github.com/karthikykr/MovieTicketBooking/internal/realtime"
	"github.com/karthikykr/MovieTicketBooking/internal/repository"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients come from arbitrary origins; auth is the bearer token.
	CheckOrigin: func(*http.Request) bool { return true },
}

// LiveHandler upgrades GET /v1/slots/:id/live to a WebSocket and attaches
// the connection to the slot's room.
type LiveHandler struct {
	Secret   string
	Seats    *repository.SeatMapRepo
	Registry *hold.Registry
	Hub      *realtime.Hub
}

func NewLiveHandler(secret string, seats *repository.SeatMapRepo, reg *hold.Registry, hub *realtime.Hub) *LiveHandler {
	return &LiveHandler{Secret: secret, Seats: seats, Registry: reg, Hub: hub}
}

// Live authenticates the caller, verifies the slot, upgrades the connection
// and runs the client until it disconnects. The access token is taken from
// the Authorization header or, for browser WebSocket clients that cannot set
// headers, from the token query parameter.
func (h *LiveHandler) Live(c echo.Context) error {
	slotID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	raw := c.QueryParam("token")
	if raw == "" {
		if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			raw = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	userID, _, err := middleware.ParseAccessToken(h.Secret, raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
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

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}

	client := realtime.NewClient(h.Hub, conn, slotID, userID, uuid.NewString())
	h.Hub.Join(client)

	// The snapshot goes out after joining the room, so an event raced in
	// between is at worst a duplicate of what the snapshot already shows.
	views := BuildSeatViews(seats, h.Registry.List(slotID), userID)
	if err := client.SendSnapshot(realtime.NewSnapshot(slotID, views)); err != nil {
		c.Logger().Warnf("live: snapshot send failed for slot %d: %v", slotID, err)
	}

	client.Run()
	return nil
}
