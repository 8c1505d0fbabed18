// Package serializer projects domain models onto the JSON shapes served
// by the API and declares the write payloads accepted from clients.
// Every function here is pure: none of them read from or write to the
// store.
package serializer

import (
	"time"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// Genre is the only genre shape.
type Genre struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

func NewGenre(g model.Genre) Genre { return Genre{ID: g.ID, Name: g.Name} }

func NewGenres(gs []model.Genre) []Genre {
	out := make([]Genre, 0, len(gs))
	for _, g := range gs {
		out = append(out, NewGenre(g))
	}
	return out
}

// Actor is the only actor shape.  FullName is computed on output.
type Actor struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

func NewActor(a model.Actor) Actor {
	return Actor{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, FullName: a.FullName()}
}

func NewActors(as []model.Actor) []Actor {
	out := make([]Actor, 0, len(as))
	for _, a := range as {
		out = append(out, NewActor(a))
	}
	return out
}

// Play is returned by create and update: links are plain ids, the same
// shape the client sent.
type Play struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []uint64 `json:"genres"`
	Actors      []uint64 `json:"actors"`
}

func NewPlay(p model.Play) Play {
	return Play{ID: p.ID, Title: p.Title, Description: p.Description, Genres: p.GenreIDs(), Actors: p.ActorIDs()}
}

// PlayList flattens the links to genre names and actor full names.
type PlayList struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
}

func NewPlayList(p model.Play) PlayList {
	out := PlayList{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Genres:      make([]string, 0, len(p.Genres)),
		Actors:      make([]string, 0, len(p.Actors)),
	}
	for _, g := range p.Genres {
		out.Genres = append(out.Genres, g.Name)
	}
	for _, a := range p.Actors {
		out.Actors = append(out.Actors, a.FullName())
	}
	return out
}

func NewPlayLists(ps []model.Play) []PlayList {
	out := make([]PlayList, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewPlayList(p))
	}
	return out
}

// PlayDetail nests the full genre and actor objects.
type PlayDetail struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Genres      []Genre `json:"genres"`
	Actors      []Actor `json:"actors"`
}

func NewPlayDetail(p model.Play) PlayDetail {
	return PlayDetail{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Genres:      NewGenres(p.Genres),
		Actors:      NewActors(p.Actors),
	}
}

// TheatreHall carries the computed capacity.
type TheatreHall struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Rows       int    `json:"rows"`
	SeatsInRow int    `json:"seats_in_row"`
	Capacity   int    `json:"capacity"`
}

func NewTheatreHall(h model.TheatreHall) TheatreHall {
	return TheatreHall{ID: h.ID, Name: h.Name, Rows: h.Rows, SeatsInRow: h.SeatsInRow, Capacity: h.Capacity()}
}

func NewTheatreHalls(hs []model.TheatreHall) []TheatreHall {
	out := make([]TheatreHall, 0, len(hs))
	for _, h := range hs {
		out = append(out, NewTheatreHall(h))
	}
	return out
}

// Performance is the write shape: foreign keys as ids.
type Performance struct {
	ID          uint64    `json:"id"`
	Play        uint64    `json:"play"`
	TheatreHall uint64    `json:"theatre_hall"`
	ShowTime    time.Time `json:"show_time"`
}

func NewPerformance(p model.Performance) Performance {
	return Performance{ID: p.ID, Play: p.PlayID, TheatreHall: p.TheatreHallID, ShowTime: p.ShowTime.UTC()}
}

// PerformanceList is the flat summary used in listings and inside
// reservation tickets.  It expects Play and TheatreHall to be joined.
type PerformanceList struct {
	ID                  uint64    `json:"id"`
	PlayTitle           string    `json:"play_title"`
	TheatreHallName     string    `json:"theatre_hall_name"`
	TheatreHallCapacity int       `json:"theatre_hall_capacity"`
	TicketsAvailable    int       `json:"tickets_available"`
	ShowTime            time.Time `json:"show_time"`
}

func NewPerformanceList(p model.Performance) PerformanceList {
	out := PerformanceList{ID: p.ID, ShowTime: p.ShowTime.UTC(), TicketsAvailable: p.TicketsAvailable()}
	if p.Play != nil {
		out.PlayTitle = p.Play.Title
	}
	if p.TheatreHall != nil {
		out.TheatreHallName = p.TheatreHall.Name
		out.TheatreHallCapacity = p.TheatreHall.Capacity()
	}
	return out
}

func NewPerformanceLists(ps []model.Performance) []PerformanceList {
	out := make([]PerformanceList, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewPerformanceList(p))
	}
	return out
}

// Place is one sold seat.
type Place struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

// PerformanceDetail nests the play list shape, the hall and the seats
// already sold.
type PerformanceDetail struct {
	ID          uint64      `json:"id"`
	ShowTime    time.Time   `json:"show_time"`
	Play        PlayList    `json:"play"`
	TheatreHall TheatreHall `json:"theatre_hall"`
	TakenPlaces []Place     `json:"taken_places"`
}

func NewPerformanceDetail(p model.Performance) PerformanceDetail {
	out := PerformanceDetail{ID: p.ID, ShowTime: p.ShowTime.UTC(), TakenPlaces: make([]Place, 0, len(p.TakenPlaces))}
	if p.Play != nil {
		out.Play = NewPlayList(*p.Play)
	}
	if p.TheatreHall != nil {
		out.TheatreHall = NewTheatreHall(*p.TheatreHall)
	}
	for _, pl := range p.TakenPlaces {
		out.TakenPlaces = append(out.TakenPlaces, Place{Row: pl.Row, Seat: pl.Seat})
	}
	return out
}

// Ticket is the write shape nested in Reservation.
type Ticket struct {
	ID          uint64 `json:"id"`
	Row         int    `json:"row"`
	Seat        int    `json:"seat"`
	Performance uint64 `json:"performance"`
}

// TicketList nests the performance summary.
type TicketList struct {
	ID          uint64          `json:"id"`
	Row         int             `json:"row"`
	Seat        int             `json:"seat"`
	Performance PerformanceList `json:"performance"`
}

func NewTicketList(t model.Ticket) TicketList {
	out := TicketList{ID: t.ID, Row: t.Row, Seat: t.Seat}
	if t.Performance != nil {
		out.Performance = NewPerformanceList(*t.Performance)
	} else {
		out.Performance = PerformanceList{ID: t.PerformanceID}
	}
	return out
}

// Reservation is returned by create, update and retrieve.
type Reservation struct {
	ID        uint64    `json:"id"`
	Tickets   []Ticket  `json:"tickets"`
	CreatedAt time.Time `json:"created_at"`
}

func NewReservation(r model.Reservation) Reservation {
	out := Reservation{ID: r.ID, CreatedAt: r.CreatedAt.UTC(), Tickets: make([]Ticket, 0, len(r.Tickets))}
	for _, t := range r.Tickets {
		out.Tickets = append(out.Tickets, Ticket{ID: t.ID, Row: t.Row, Seat: t.Seat, Performance: t.PerformanceID})
	}
	return out
}

// ReservationList nests each ticket's performance summary.
type ReservationList struct {
	ID        uint64       `json:"id"`
	Tickets   []TicketList `json:"tickets"`
	CreatedAt time.Time    `json:"created_at"`
}

func NewReservationList(r model.Reservation) ReservationList {
	out := ReservationList{ID: r.ID, CreatedAt: r.CreatedAt.UTC(), Tickets: make([]TicketList, 0, len(r.Tickets))}
	for _, t := range r.Tickets {
		out.Tickets = append(out.Tickets, NewTicketList(t))
	}
	return out
}

func NewReservationLists(rs []model.Reservation) []ReservationList {
	out := make([]ReservationList, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewReservationList(r))
	}
	return out
}

// Page wraps one page of a paginated collection.
type Page[T any] struct {
	Count    int `json:"count"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Results  []T `json:"results"`
}
