package serializer

import (
	"strings"
	"time"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// Write payloads.  PATCH handlers seed these from the stored entity
// before binding so that absent keys keep their current value; the
// reservation handler is the exception, see ReservationInput.

type GenreInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

func GenreInputFrom(g model.Genre) GenreInput { return GenreInput{Name: g.Name} }

func (in GenreInput) Model(id uint64) model.Genre {
	return model.Genre{ID: id, Name: strings.TrimSpace(in.Name)}
}

type ActorInput struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"required,max=255"`
}

func ActorInputFrom(a model.Actor) ActorInput {
	return ActorInput{FirstName: a.FirstName, LastName: a.LastName}
}

func (in ActorInput) Model(id uint64) model.Actor {
	return model.Actor{ID: id, FirstName: strings.TrimSpace(in.FirstName), LastName: strings.TrimSpace(in.LastName)}
}

// PlayInput replaces both link sets on write.  Missing lists mean no
// links on POST and PUT.
type PlayInput struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	Genres      []uint64 `json:"genres" validate:"dive,gt=0"`
	Actors      []uint64 `json:"actors" validate:"dive,gt=0"`
}

func PlayInputFrom(p model.Play) PlayInput {
	return PlayInput{Title: p.Title, Description: p.Description, Genres: p.GenreIDs(), Actors: p.ActorIDs()}
}

type TheatreHallInput struct {
	Name       string `json:"name" validate:"required,max=255"`
	Rows       int    `json:"rows" validate:"required,gt=0"`
	SeatsInRow int    `json:"seats_in_row" validate:"required,gt=0"`
}

func TheatreHallInputFrom(h model.TheatreHall) TheatreHallInput {
	return TheatreHallInput{Name: h.Name, Rows: h.Rows, SeatsInRow: h.SeatsInRow}
}

func (in TheatreHallInput) Model(id uint64) model.TheatreHall {
	return model.TheatreHall{ID: id, Name: strings.TrimSpace(in.Name), Rows: in.Rows, SeatsInRow: in.SeatsInRow}
}

type PerformanceInput struct {
	Play        uint64    `json:"play" validate:"required"`
	TheatreHall uint64    `json:"theatre_hall" validate:"required"`
	ShowTime    time.Time `json:"show_time" validate:"required"`
}

func PerformanceInputFrom(p model.Performance) PerformanceInput {
	return PerformanceInput{Play: p.PlayID, TheatreHall: p.TheatreHallID, ShowTime: p.ShowTime}
}

func (in PerformanceInput) Model(id uint64) model.Performance {
	return model.Performance{ID: id, PlayID: in.Play, TheatreHallID: in.TheatreHall, ShowTime: in.ShowTime.UTC()}
}

// TicketInput only checks presence; hall bounds and availability are
// checked by the store inside the write transaction.
type TicketInput struct {
	Row         int    `json:"row" validate:"required"`
	Seat        int    `json:"seat" validate:"required"`
	Performance uint64 `json:"performance" validate:"required"`
}

// ReservationInput is bound fresh on every write.  A PATCH falls back
// to ReservationInputFrom only when the body has no tickets.
type ReservationInput struct {
	Tickets []TicketInput `json:"tickets" validate:"required,min=1,dive"`
}

func ReservationInputFrom(r model.Reservation) ReservationInput {
	in := ReservationInput{Tickets: make([]TicketInput, 0, len(r.Tickets))}
	for _, t := range r.Tickets {
		in.Tickets = append(in.Tickets, TicketInput{Row: t.Row, Seat: t.Seat, Performance: t.PerformanceID})
	}
	return in
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
