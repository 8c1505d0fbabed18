package router_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
	"github.com/iliyamo/theatre-reservation/internal/utils"
)

// memory is an in-process stand-in for the MySQL repositories.  Each
// resource gets a thin adapter type so the List/GetByID names of the
// store interfaces do not collide.
type memory struct {
	mu           sync.Mutex
	next         uint64
	genres       map[uint64]model.Genre
	actors       map[uint64]model.Actor
	plays        map[uint64]repository.PlayWrite
	halls        map[uint64]model.TheatreHall
	performances map[uint64]model.Performance
	reservations map[uint64]model.Reservation
	users        map[uint64]model.User
	refresh      map[string]uint64
	published    []model.Reservation
}

func newMemory() *memory {
	return &memory{
		genres:       map[uint64]model.Genre{},
		actors:       map[uint64]model.Actor{},
		plays:        map[uint64]repository.PlayWrite{},
		halls:        map[uint64]model.TheatreHall{},
		performances: map[uint64]model.Performance{},
		reservations: map[uint64]model.Reservation{},
		users:        map[uint64]model.User{},
		refresh:      map[string]uint64{},
	}
}

func (m *memory) id() uint64 {
	m.next++
	return m.next
}

func sortedKeys[V any](src map[uint64]V) []uint64 {
	keys := make([]uint64, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func missing[V any](src map[uint64]V, ids []uint64) []string {
	var out []string
	for _, id := range ids {
		if _, ok := src[id]; !ok {
			out = append(out, fmt.Sprint(id))
		}
	}
	return out
}

// seed helpers

func (m *memory) addGenre(name string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.genres[id] = model.Genre{ID: id, Name: name}
	return id
}

func (m *memory) addActor(first, last string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.actors[id] = model.Actor{ID: id, FirstName: first, LastName: last}
	return id
}

func (m *memory) addPlay(title string, genres, actors []uint64) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.plays[id] = repository.PlayWrite{Title: title, Description: title + " description", GenreIDs: genres, ActorIDs: actors}
	return id
}

func (m *memory) addHall(name string, rows, seats int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.halls[id] = model.TheatreHall{ID: id, Name: name, Rows: rows, SeatsInRow: seats}
	return id
}

func (m *memory) addPerformance(play, hall uint64, at time.Time) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.performances[id] = model.Performance{ID: id, PlayID: play, TheatreHallID: hall, ShowTime: at.UTC()}
	return id
}

// genres

type genreStore struct{ *memory }

func (s genreStore) List(context.Context) ([]model.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Genre{}
	for _, id := range sortedKeys(s.genres) {
		out = append(out, s.genres[id])
	}
	return out, nil
}

func (s genreStore) GetByID(_ context.Context, id uint64) (*model.Genre, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.genres[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (s genreStore) Create(_ context.Context, g *model.Genre) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.genres {
		if strings.EqualFold(cur.Name, g.Name) {
			return repository.NewValidationError("name", "genre with this name already exists.")
		}
	}
	g.ID = s.id()
	s.genres[g.ID] = *g
	return nil
}

func (s genreStore) Update(_ context.Context, g *model.Genre) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.genres[g.ID]; !ok {
		return repository.ErrNotFound
	}
	s.genres[g.ID] = *g
	return nil
}

func (s genreStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.genres[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.genres, id)
	return nil
}

// actors

type actorStore struct{ *memory }

func (s actorStore) List(context.Context) ([]model.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Actor{}
	for _, id := range sortedKeys(s.actors) {
		out = append(out, s.actors[id])
	}
	return out, nil
}

func (s actorStore) GetByID(_ context.Context, id uint64) (*model.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (s actorStore) Create(_ context.Context, a *model.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	s.actors[a.ID] = *a
	return nil
}

func (s actorStore) Update(_ context.Context, a *model.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.actors[a.ID]; !ok {
		return repository.ErrNotFound
	}
	s.actors[a.ID] = *a
	return nil
}

func (s actorStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.actors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.actors, id)
	return nil
}

// plays

type playStore struct{ *memory }

// build must be called with mu held.
func (s playStore) build(id uint64) model.Play {
	w := s.plays[id]
	p := model.Play{ID: id, Title: w.Title, Description: w.Description, Genres: []model.Genre{}, Actors: []model.Actor{}}
	for _, gid := range w.GenreIDs {
		if g, ok := s.genres[gid]; ok {
			p.Genres = append(p.Genres, g)
		}
	}
	for _, aid := range w.ActorIDs {
		if a, ok := s.actors[aid]; ok {
			p.Actors = append(p.Actors, a)
		}
	}
	return p
}

func anyOf(have, want []uint64) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func (s playStore) Filter(_ context.Context, f repository.PlayFilter) ([]model.Play, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Play{}
	for _, id := range sortedKeys(s.plays) {
		w := s.plays[id]
		if len(f.ActorIDs) > 0 && !anyOf(w.ActorIDs, f.ActorIDs) {
			continue
		}
		if len(f.GenreIDs) > 0 && !anyOf(w.GenreIDs, f.GenreIDs) {
			continue
		}
		out = append(out, s.build(id))
	}
	return out, nil
}

func (s playStore) GetByID(_ context.Context, id uint64) (*model.Play, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plays[id]; !ok {
		return nil, repository.ErrNotFound
	}
	p := s.build(id)
	return &p, nil
}

func (s playStore) check(w repository.PlayWrite) error {
	verr := &repository.ValidationError{}
	if m := missing(s.genres, w.GenreIDs); len(m) > 0 {
		verr.Add("genres", "invalid pk "+strings.Join(m, ", ")+" - object does not exist.")
	}
	if m := missing(s.actors, w.ActorIDs); len(m) > 0 {
		verr.Add("actors", "invalid pk "+strings.Join(m, ", ")+" - object does not exist.")
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

func (s playStore) Create(_ context.Context, w repository.PlayWrite) (*model.Play, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(w); err != nil {
		return nil, err
	}
	id := s.id()
	s.plays[id] = w
	p := s.build(id)
	return &p, nil
}

func (s playStore) Update(_ context.Context, id uint64, w repository.PlayWrite) (*model.Play, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plays[id]; !ok {
		return nil, repository.ErrNotFound
	}
	if err := s.check(w); err != nil {
		return nil, err
	}
	s.plays[id] = w
	p := s.build(id)
	return &p, nil
}

// theatre halls

type hallStore struct{ *memory }

func (s hallStore) List(context.Context) ([]model.TheatreHall, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.TheatreHall{}
	for _, id := range sortedKeys(s.halls) {
		out = append(out, s.halls[id])
	}
	return out, nil
}

func (s hallStore) GetByID(_ context.Context, id uint64) (*model.TheatreHall, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.halls[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &h, nil
}

func (s hallStore) Create(_ context.Context, h *model.TheatreHall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.id()
	s.halls[h.ID] = *h
	return nil
}

func (s hallStore) Update(_ context.Context, h *model.TheatreHall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.halls[h.ID]; !ok {
		return repository.ErrNotFound
	}
	s.halls[h.ID] = *h
	return nil
}

func (s hallStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.halls[id]; !ok {
		return repository.ErrNotFound
	}
	for _, p := range s.performances {
		if p.TheatreHallID == id {
			return repository.ErrProtected
		}
	}
	delete(s.halls, id)
	return nil
}

// performances

type performanceStore struct{ *memory }

// taken must be called with mu held.  Seats held by reservation own
// are skipped.
func (m *memory) taken(perf, own uint64) []model.Place {
	out := []model.Place{}
	for _, rid := range sortedKeys(m.reservations) {
		if rid == own {
			continue
		}
		for _, t := range m.reservations[rid].Tickets {
			if t.PerformanceID == perf {
				out = append(out, model.Place{Row: t.Row, Seat: t.Seat})
			}
		}
	}
	return out
}

// summary must be called with mu held.
func (m *memory) summary(id uint64) model.Performance {
	p := m.performances[id]
	play := playStore{m}.build(p.PlayID)
	hall := m.halls[p.TheatreHallID]
	p.Play = &play
	p.TheatreHall = &hall
	p.TicketsSold = len(m.taken(id, 0))
	return p
}

func (s performanceStore) List(_ context.Context, f repository.PerformanceFilter) ([]model.Performance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Performance{}
	for _, id := range sortedKeys(s.performances) {
		p := s.performances[id]
		if f.PlayID != 0 && p.PlayID != f.PlayID {
			continue
		}
		if !f.Date.IsZero() && p.ShowTime.Format(time.DateOnly) != f.Date.Format(time.DateOnly) {
			continue
		}
		out = append(out, s.summary(id))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ShowTime.Before(out[j].ShowTime) })
	return out, nil
}

func (s performanceStore) GetByID(_ context.Context, id uint64) (*model.Performance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.performances[id]; !ok {
		return nil, repository.ErrNotFound
	}
	p := s.summary(id)
	p.TakenPlaces = s.taken(id, 0)
	return &p, nil
}

func (s performanceStore) check(p *model.Performance) error {
	verr := &repository.ValidationError{}
	if _, ok := s.plays[p.PlayID]; !ok {
		verr.Add("play", fmt.Sprintf("invalid pk %d - object does not exist.", p.PlayID))
	}
	if _, ok := s.halls[p.TheatreHallID]; !ok {
		verr.Add("theatre_hall", fmt.Sprintf("invalid pk %d - object does not exist.", p.TheatreHallID))
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

func (s performanceStore) Create(_ context.Context, p *model.Performance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(p); err != nil {
		return err
	}
	p.ID = s.id()
	s.performances[p.ID] = model.Performance{ID: p.ID, PlayID: p.PlayID, TheatreHallID: p.TheatreHallID, ShowTime: p.ShowTime}
	return nil
}

func (s performanceStore) Update(_ context.Context, p *model.Performance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.performances[p.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := s.check(p); err != nil {
		return err
	}
	s.performances[p.ID] = model.Performance{ID: p.ID, PlayID: p.PlayID, TheatreHallID: p.TheatreHallID, ShowTime: p.ShowTime}
	return nil
}

func (s performanceStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.performances[id]; !ok {
		return repository.ErrNotFound
	}
	if len(s.taken(id, 0)) > 0 {
		return repository.ErrProtected
	}
	delete(s.performances, id)
	return nil
}

// reservations

type reservationStore struct{ *memory }

func (s reservationStore) List(_ context.Context, page, pageSize int) ([]model.Reservation, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := sortedKeys(s.reservations)
	sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })
	out := []model.Reservation{}
	for i := (page - 1) * pageSize; i < len(keys) && i < page*pageSize; i++ {
		out = append(out, s.withSummaries(s.reservations[keys[i]]))
	}
	return out, len(keys), nil
}

func (s reservationStore) withSummaries(r model.Reservation) model.Reservation {
	tickets := make([]model.Ticket, len(r.Tickets))
	for i, t := range r.Tickets {
		p := s.summary(t.PerformanceID)
		t.Performance = &p
		tickets[i] = t
	}
	r.Tickets = tickets
	return r
}

func (s reservationStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r = s.withSummaries(r)
	return &r, nil
}

func (s reservationStore) validate(tickets []repository.TicketWrite, own uint64) error {
	if len(tickets) == 0 {
		return repository.NewValidationError("tickets", "at least one ticket is required.")
	}
	verr := &repository.ValidationError{}
	seen := map[string]bool{}
	for i, t := range tickets {
		field := fmt.Sprintf("tickets[%d]", i)
		p, ok := s.performances[t.PerformanceID]
		if !ok {
			verr.Add(field+".performance", "object does not exist.")
			continue
		}
		if !s.halls[p.TheatreHallID].Contains(t.Row, t.Seat) {
			verr.Add(field+".row", "outside the hall.")
			continue
		}
		key := fmt.Sprintf("%d/%d/%d", t.PerformanceID, t.Row, t.Seat)
		for _, pl := range s.taken(t.PerformanceID, own) {
			if pl.Row == t.Row && pl.Seat == t.Seat {
				verr.Add(field, "already taken.")
			}
		}
		if seen[key] {
			verr.Add(field, "requested more than once.")
		}
		seen[key] = true
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

func (s reservationStore) tickets(rid uint64, in []repository.TicketWrite) []model.Ticket {
	out := make([]model.Ticket, 0, len(in))
	for _, t := range in {
		out = append(out, model.Ticket{ID: s.id(), Row: t.Row, Seat: t.Seat, PerformanceID: t.PerformanceID, ReservationID: rid})
	}
	return out
}

func (s reservationStore) Create(_ context.Context, userID uint64, in []repository.TicketWrite) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.validate(in, 0); err != nil {
		return nil, err
	}
	id := s.id()
	r := model.Reservation{ID: id, UserID: userID, CreatedAt: time.Now().UTC()}
	r.Tickets = s.tickets(id, in)
	s.reservations[id] = r
	r = s.withSummaries(r)
	return &r, nil
}

func (s reservationStore) Update(_ context.Context, id uint64, in []repository.TicketWrite) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := s.validate(in, id); err != nil {
		return nil, err
	}
	r.Tickets = s.tickets(id, in)
	s.reservations[id] = r
	r = s.withSummaries(r)
	return &r, nil
}

func (s reservationStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.reservations, id)
	return nil
}

// events

type eventSink struct{ *memory }

func (s eventSink) ReservationCreated(_ context.Context, r model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, r)
	return nil
}

// accounts

type userStore struct{ *memory }

func (s userStore) Create(_ context.Context, email, password string, isStaff bool, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	id := s.id()
	s.users[id] = model.User{ID: id, Email: email, PasswordHash: hash, IsStaff: isStaff, CreatedAt: time.Now().UTC()}
	return id, nil
}

func (s userStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s userStore) GetByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type tokenStore struct{ *memory }

func (s tokenStore) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[hash] = userID
	return nil
}

func (s tokenStore) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.refresh[hash]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return uid, nil
}

func (s tokenStore) RevokeByHash(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refresh[hash]; !ok {
		return repository.ErrNotFound
	}
	delete(s.refresh, hash)
	return nil
}

func (s tokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, uid := range s.refresh {
		if uid == userID {
			delete(s.refresh, h)
		}
	}
	return nil
}
