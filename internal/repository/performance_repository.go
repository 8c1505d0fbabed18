package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// PerformanceFilter narrows the performance list.  Zero values disable
// a filter.  Date matches the UTC calendar day of show_time.
type PerformanceFilter struct {
	PlayID uint64
	Date   time.Time
}

// PerformanceRepo provides CRUD for performances.  Reads join the play
// and the hall (the equivalent of select_related) and count the sold
// tickets so list responses need no extra lookups.
type PerformanceRepo struct {
	db *sql.DB
}

// NewPerformanceRepo returns a new PerformanceRepo bound to the given database.
func NewPerformanceRepo(db *sql.DB) *PerformanceRepo { return &PerformanceRepo{db: db} }

const performanceSummarySelect = `SELECT p.id, p.play_id, p.theatre_hall_id, p.show_time,
		pl.id, pl.title, pl.description,
		h.id, h.name, h.num_rows, h.seats_in_row,
		(SELECT COUNT(*) FROM tickets t WHERE t.performance_id = p.id) AS tickets_sold
	FROM performances p
	JOIN plays pl ON pl.id = p.play_id
	JOIN theatre_halls h ON h.id = p.theatre_hall_id`

func scanPerformanceSummary(row interface{ Scan(...any) error }) (model.Performance, error) {
	var (
		p    model.Performance
		play model.Play
		hall model.TheatreHall
	)
	err := row.Scan(&p.ID, &p.PlayID, &p.TheatreHallID, &p.ShowTime,
		&play.ID, &play.Title, &play.Description,
		&hall.ID, &hall.Name, &hall.Rows, &hall.SeatsInRow,
		&p.TicketsSold)
	if err != nil {
		return model.Performance{}, err
	}
	p.ShowTime = p.ShowTime.UTC()
	p.Play = &play
	p.TheatreHall = &hall
	return p, nil
}

// List returns performances ordered by show time, then id.
func (r *PerformanceRepo) List(ctx context.Context, f PerformanceFilter) ([]model.Performance, error) {
	where := []string{}
	args := []any{}
	if f.PlayID != 0 {
		where = append(where, "p.play_id = ?")
		args = append(args, f.PlayID)
	}
	if !f.Date.IsZero() {
		day := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC)
		where = append(where, "p.show_time >= ? AND p.show_time < ?")
		args = append(args, day, day.AddDate(0, 0, 1))
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	rows, err := r.db.QueryContext(ctx, performanceSummarySelect+` WHERE `+cond+` ORDER BY p.show_time, p.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Performance{}
	for rows.Next() {
		p, err := scanPerformanceSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID returns the performance with its play (including genres and
// actors), hall and the list of taken places.
func (r *PerformanceRepo) GetByID(ctx context.Context, id uint64) (*model.Performance, error) {
	p, err := scanPerformanceSummary(r.db.QueryRowContext(ctx, performanceSummarySelect+` WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	plays := []model.Play{*p.Play}
	if err := loadPlayLinks(ctx, r.db, plays); err != nil {
		return nil, err
	}
	p.Play = &plays[0]

	rows, err := r.db.QueryContext(ctx, `SELECT row_num, seat_num FROM tickets WHERE performance_id = ? ORDER BY row_num, seat_num`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	p.TakenPlaces = []model.Place{}
	for rows.Next() {
		var pl model.Place
		if err := rows.Scan(&pl.Row, &pl.Seat); err != nil {
			return nil, err
		}
		p.TakenPlaces = append(p.TakenPlaces, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a performance after checking that the play and the
// hall exist.
func (r *PerformanceRepo) Create(ctx context.Context, p *model.Performance) error {
	if err := checkPerformanceRefs(ctx, r.db, p); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO performances (play_id, theatre_hall_id, show_time) VALUES (?, ?, ?)`,
		p.PlayID, p.TheatreHallID, p.ShowTime.UTC())
	if err != nil {
		if isMissingRef(err) {
			return NewValidationError("non_field_errors", "referenced play or theatre hall does not exist.")
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// Update overwrites play, hall and show time of p.ID.  Moving a
// performance with sold tickets to another hall is rejected because
// the tickets were validated against the old layout.
func (r *PerformanceRepo) Update(ctx context.Context, p *model.Performance) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var hallID uint64
	err = tx.QueryRowContext(ctx, `SELECT theatre_hall_id FROM performances WHERE id = ? FOR UPDATE`, p.ID).Scan(&hallID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if hallID != p.TheatreHallID {
		var sold int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE performance_id = ?`, p.ID).Scan(&sold); err != nil {
			return err
		}
		if sold > 0 {
			return NewValidationError("theatre_hall", "cannot move a performance with sold tickets to another hall.")
		}
	}
	if err := checkPerformanceRefs(ctx, tx, p); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE performances SET play_id = ?, theatre_hall_id = ?, show_time = ? WHERE id = ?`,
		p.PlayID, p.TheatreHallID, p.ShowTime.UTC(), p.ID)
	if err != nil {
		if isMissingRef(err) {
			return NewValidationError("non_field_errors", "referenced play or theatre hall does not exist.")
		}
		return err
	}
	if err := affectedOrNotFound(res); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a performance without tickets.  Performances with
// sold tickets are kept and ErrProtected is returned.
func (r *PerformanceRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE performance_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrProtected
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM performances WHERE id = ?`, id)
	if err != nil {
		if isReferenced(err) {
			return ErrProtected
		}
		return err
	}
	return affectedOrNotFound(res)
}

func checkPerformanceRefs(ctx context.Context, q querier, p *model.Performance) error {
	verr := &ValidationError{}
	ok, err := exists(ctx, q, "plays", p.PlayID)
	if err != nil {
		return err
	}
	if !ok {
		verr.Add("play", invalidPKMessage([]uint64{p.PlayID}))
	}
	ok, err = exists(ctx, q, "theatre_halls", p.TheatreHallID)
	if err != nil {
		return err
	}
	if !ok {
		verr.Add("theatre_hall", invalidPKMessage([]uint64{p.TheatreHallID}))
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}
