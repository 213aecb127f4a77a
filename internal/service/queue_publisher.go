// Package queue_publisher publishes domain events to RabbitMQ. Publishing is
// best effort: failures are logged and never interrupt the request flow that
// produced the event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/karthikykr/MovieTicketBooking/internal/model"
	q "github.com/karthikykr/MovieTicketBooking/internal/queue"
	"github.com/karthikykr/MovieTicketBooking/internal/repository"
)

// publishTimeout bounds one dial-and-publish attempt so a dead broker cannot
// pin goroutines indefinitely.
const publishTimeout = 10 * time.Second

// EventPublisher enriches confirmed bookings with their show context and
// publishes them to the booking.confirmed queue. It satisfies the publisher
// contract of the booking service.
type EventPublisher struct {
	showtimes *repository.ShowtimeRepo
}

// NewEventPublisher returns an EventPublisher that resolves slot context
// through the given repository.
func NewEventPublisher(showtimes *repository.ShowtimeRepo) *EventPublisher {
	return &EventPublisher{showtimes: showtimes}
}

// BookingConfirmed builds a BookingConfirmedEvent and hands it to the broker
// on a background goroutine. The caller's context is not reused because the
// HTTP request finishes before the publish does.
func (p *EventPublisher) BookingConfirmed(_ context.Context, b *model.Booking, seatLabels []string) {
	ev := q.BookingConfirmedEvent{
		BookingID:   b.ID,
		Reference:   b.Reference,
		UserID:      b.UserID,
		SlotID:      b.SlotID,
		SeatLabels:  seatLabels,
		TotalCents:  b.TotalCents,
		TaxCents:    b.TaxCents,
		FinalCents:  b.FinalCents,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if slot, err := p.showtimes.GetSlot(ctx, b.SlotID); err == nil {
			ev.MovieTitle = slot.MovieTitle
			ev.TheaterName = slot.TheaterName
			ev.ShowDate = slot.ShowDate
			ev.StartsAt = slot.StartsAt.UTC().Format(time.RFC3339)
			ev.Format = slot.Format
		} else {
			log.Printf("rabbitmq: slot lookup for event failed: %v", err)
		}
		if err := publish(ctx, ev); err != nil {
			log.Printf("rabbitmq: publish booking.confirmed failed: %v", err)
		}
	}()
}

func publish(ctx context.Context, ev q.BookingConfirmedEvent) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so confirmations survive a broker restart.
	if _, err := ch.QueueDeclare(q.BookingConfirmedQueue, true, false, false, false, nil); err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"", q.BookingConfirmedQueue, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}
