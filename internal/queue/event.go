// Package queue defines message payloads exchanged over the message
// broker and the consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// ReservationCreatedQueue is the default durable queue for new reservations.
const ReservationCreatedQueue = "reservation.created"

// ReservationCreatedEvent is published after a reservation has been
// committed.  It carries enough about each ticket for consumers to log
// or notify without querying the database.
type ReservationCreatedEvent struct {
	EventID       string        `json:"event_id"`
	ReservationID uint64        `json:"reservation_id"`
	UserID        uint64        `json:"user_id"`
	CreatedAt     string        `json:"created_at"`
	Tickets       []EventTicket `json:"tickets"`
}

type EventTicket struct {
	PerformanceID uint64 `json:"performance_id"`
	Row           int    `json:"row"`
	Seat          int    `json:"seat"`
	PlayTitle     string `json:"play_title,omitempty"`
	HallName      string `json:"theatre_hall_name,omitempty"`
	ShowTime      string `json:"show_time,omitempty"`
}

// NewReservationCreatedEvent builds the event for r with a fresh id.
func NewReservationCreatedEvent(r model.Reservation) ReservationCreatedEvent {
	ev := ReservationCreatedEvent{
		EventID:       uuid.NewString(),
		ReservationID: r.ID,
		UserID:        r.UserID,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
		Tickets:       make([]EventTicket, 0, len(r.Tickets)),
	}
	for _, t := range r.Tickets {
		et := EventTicket{PerformanceID: t.PerformanceID, Row: t.Row, Seat: t.Seat}
		if p := t.Performance; p != nil {
			et.ShowTime = p.ShowTime.UTC().Format(time.RFC3339)
			if p.Play != nil {
				et.PlayTitle = p.Play.Title
			}
			if p.TheatreHall != nil {
				et.HallName = p.TheatreHall.Name
			}
		}
		ev.Tickets = append(ev.Tickets, et)
	}
	return ev
}
