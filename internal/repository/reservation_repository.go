package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservations and their
// tickets.  Tickets are written only through a reservation and every
// write runs in a single transaction: either the reservation and all
// of its tickets are stored or nothing is.  All timestamp fields are
// stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// TicketWrite is one requested seat.
type TicketWrite struct {
	Row           int
	Seat          int
	PerformanceID uint64
}

// List returns one page of reservations, newest first, with tickets
// and their performance/play/hall summaries joined in one query.  The
// second return value is the total number of reservations.
func (r *ReservationRepo) List(ctx context.Context, page, pageSize int) ([]model.Reservation, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&total); err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, created_at FROM reservations
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Reservation{}
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.CreatedAt); err != nil {
			return nil, 0, err
		}
		res.CreatedAt = res.CreatedAt.UTC()
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := loadTickets(ctx, r.db, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID returns a reservation with its tickets or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	var res model.Reservation
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, created_at FROM reservations WHERE id = ?`, id).
		Scan(&res.ID, &res.UserID, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	res.CreatedAt = res.CreatedAt.UTC()
	list := []model.Reservation{res}
	if err := loadTickets(ctx, r.db, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Create stores a reservation for userID with the given tickets.  The
// seats are validated against the hall layout and the tickets already
// sold for each performance; any problem rejects the whole reservation.
func (r *ReservationRepo) Create(ctx context.Context, userID uint64, tickets []TicketWrite) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := validateTickets(ctx, tx, tickets, 0); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO reservations (user_id) VALUES (?)`, userID)
	if err != nil {
		if isMissingRef(err) {
			return nil, NewValidationError("user", "user does not exist.")
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := insertTickets(ctx, tx, uint64(id), tickets); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update replaces the tickets of reservation id.  Seats currently held
// by this reservation count as free while validating.
func (r *ReservationRepo) Update(ctx context.Context, id uint64, tickets []TicketWrite) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM reservations WHERE id = ? FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := validateTickets(ctx, tx, tickets, id); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE reservation_id = ?`, id); err != nil {
		return nil, err
	}
	if err := insertTickets(ctx, tx, id, tickets); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes the reservation; its tickets cascade.
func (r *ReservationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

type seatKey struct {
	performance uint64
	row, seat   int
}

// validateTickets checks every requested seat inside tx.  The
// performance rows are locked FOR UPDATE, in ascending id order, so
// concurrent reservations for the same performance are serialised
// until commit; the UNIQUE
// (performance_id, row_num, seat_num) index backs this up.  Tickets of
// reservation `own` are ignored when looking for taken seats.
func validateTickets(ctx context.Context, tx *sql.Tx, tickets []TicketWrite, own uint64) error {
	if len(tickets) == 0 {
		return NewValidationError("tickets", "at least one ticket is required.")
	}
	perfIDs := make([]uint64, 0, len(tickets))
	for _, t := range tickets {
		perfIDs = append(perfIDs, t.PerformanceID)
	}
	perfIDs = dedupe(perfIDs)
	slices.Sort(perfIDs)

	halls := map[uint64]model.TheatreHall{}
	taken := map[seatKey]bool{}
	for _, pid := range perfIDs {
		var h model.TheatreHall
		err := tx.QueryRowContext(ctx, `SELECT h.id, h.num_rows, h.seats_in_row
			FROM performances p JOIN theatre_halls h ON h.id = p.theatre_hall_id
			WHERE p.id = ? FOR UPDATE`, pid).Scan(&h.ID, &h.Rows, &h.SeatsInRow)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return err
		}
		halls[pid] = h

		rows, err := tx.QueryContext(ctx, `SELECT row_num, seat_num FROM tickets
			WHERE performance_id = ? AND reservation_id <> ?`, pid, own)
		if err != nil {
			return err
		}
		for rows.Next() {
			k := seatKey{performance: pid}
			if err := rows.Scan(&k.row, &k.seat); err != nil {
				rows.Close()
				return err
			}
			taken[k] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}

	verr := &ValidationError{}
	seen := map[seatKey]bool{}
	for i, t := range tickets {
		field := fmt.Sprintf("tickets[%d]", i)
		h, ok := halls[t.PerformanceID]
		if !ok {
			verr.Add(field+".performance", invalidPKMessage([]uint64{t.PerformanceID}))
			continue
		}
		if t.Row < 1 || t.Row > h.Rows {
			verr.Add(field+".row", fmt.Sprintf("row must be in range [1, %d], not %d.", h.Rows, t.Row))
		}
		if t.Seat < 1 || t.Seat > h.SeatsInRow {
			verr.Add(field+".seat", fmt.Sprintf("seat must be in range [1, %d], not %d.", h.SeatsInRow, t.Seat))
		}
		if !h.Contains(t.Row, t.Seat) {
			continue
		}
		k := seatKey{performance: t.PerformanceID, row: t.Row, seat: t.Seat}
		switch {
		case taken[k]:
			verr.Add(field, fmt.Sprintf("row %d seat %d is already taken for performance %d.", t.Row, t.Seat, t.PerformanceID))
		case seen[k]:
			verr.Add(field, fmt.Sprintf("row %d seat %d is requested more than once.", t.Row, t.Seat))
		}
		seen[k] = true
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

func insertTickets(ctx context.Context, tx *sql.Tx, reservationID uint64, tickets []TicketWrite) error {
	query := `INSERT INTO tickets (row_num, seat_num, performance_id, reservation_id) VALUES `
	args := make([]any, 0, len(tickets)*4)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, t.Row, t.Seat, t.PerformanceID, reservationID)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicate(err) {
			return NewValidationError("tickets", "one of the requested seats has just been taken.")
		}
		return err
	}
	return nil
}

// loadTickets fills Tickets of every reservation, each with its
// performance, play and hall summary, using a single joined query.
func loadTickets(ctx context.Context, q querier, list []model.Reservation) error {
	if len(list) == 0 {
		return nil
	}
	idx := make(map[uint64]int, len(list))
	ids := make([]uint64, 0, len(list))
	for i := range list {
		list[i].Tickets = []model.Ticket{}
		idx[list[i].ID] = i
		ids = append(ids, list[i].ID)
	}
	rows, err := q.QueryContext(ctx, `SELECT t.id, t.row_num, t.seat_num, t.reservation_id,
			p.id, p.play_id, p.theatre_hall_id, p.show_time,
			pl.id, pl.title, pl.description,
			h.id, h.name, h.num_rows, h.seats_in_row,
			(SELECT COUNT(*) FROM tickets t2 WHERE t2.performance_id = p.id)
		FROM tickets t
		JOIN performances p ON p.id = t.performance_id
		JOIN plays pl ON pl.id = p.play_id
		JOIN theatre_halls h ON h.id = p.theatre_hall_id
		WHERE t.reservation_id IN (`+placeholders(len(ids))+`)
		ORDER BY t.id`, uintArgs(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			t    model.Ticket
			p    model.Performance
			play model.Play
			hall model.TheatreHall
		)
		if err := rows.Scan(&t.ID, &t.Row, &t.Seat, &t.ReservationID,
			&p.ID, &p.PlayID, &p.TheatreHallID, &p.ShowTime,
			&play.ID, &play.Title, &play.Description,
			&hall.ID, &hall.Name, &hall.Rows, &hall.SeatsInRow,
			&p.TicketsSold); err != nil {
			return err
		}
		p.ShowTime = p.ShowTime.UTC()
		p.Play = &play
		p.TheatreHall = &hall
		t.PerformanceID = p.ID
		t.Performance = &p
		if i, ok := idx[t.ReservationID]; ok {
			list[i].Tickets = append(list[i].Tickets, t)
		}
	}
	return rows.Err()
}
