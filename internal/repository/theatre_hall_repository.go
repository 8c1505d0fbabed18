package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors is used to compare sentinel values

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// TheatreHallRepo provides methods to create, read, update and delete
// theatre halls.  It embeds a database handle to perform queries and
// commands.
type TheatreHallRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewTheatreHallRepo constructs a TheatreHallRepo with the given DB handle.
func NewTheatreHallRepo(db *sql.DB) *TheatreHallRepo {
	return &TheatreHallRepo{db: db}
}

const hallColumns = `id, name, num_rows, seats_in_row`

func scanHall(row interface{ Scan(...any) error }, h *model.TheatreHall) error {
	return row.Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow)
}

// List returns every hall ordered by id.
func (r *TheatreHallRepo) List(ctx context.Context) ([]model.TheatreHall, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+hallColumns+` FROM theatre_halls ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TheatreHall{}
	for rows.Next() {
		var h model.TheatreHall
		if err := scanHall(rows, &h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID retrieves a hall by its ID.  It returns ErrNotFound when no
// row is found.
func (r *TheatreHallRepo) GetByID(ctx context.Context, id uint64) (*model.TheatreHall, error) {
	var h model.TheatreHall
	err := scanHall(r.db.QueryRowContext(ctx, `SELECT `+hallColumns+` FROM theatre_halls WHERE id = ?`, id), &h)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

// Create inserts a new hall.  After insert the ID field of the hall
// will be set.
func (r *TheatreHallRepo) Create(ctx context.Context, h *model.TheatreHall) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO theatre_halls (name, num_rows, seats_in_row) VALUES (?, ?, ?)`,
		h.Name, h.Rows, h.SeatsInRow)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// Update overwrites the hall's name and layout.  Shrinking the layout
// below a sold seat is rejected so existing tickets stay inside the
// hall bounds.
func (r *TheatreHallRepo) Update(ctx context.Context, h *model.TheatreHall) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Reservations lock the hall row while validating seats.
	var locked uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM theatre_halls WHERE id = ? FOR UPDATE`, h.ID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	var maxRow, maxSeat sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT MAX(t.row_num), MAX(t.seat_num)
		FROM tickets t JOIN performances p ON p.id = t.performance_id
		WHERE p.theatre_hall_id = ?`, h.ID).Scan(&maxRow, &maxSeat)
	if err != nil {
		return err
	}
	verr := &ValidationError{}
	if maxRow.Valid && int64(h.Rows) < maxRow.Int64 {
		verr.Add("rows", "sold tickets exist beyond this row count.")
	}
	if maxSeat.Valid && int64(h.SeatsInRow) < maxSeat.Int64 {
		verr.Add("seats_in_row", "sold tickets exist beyond this seat count.")
	}
	if !verr.Empty() {
		return verr
	}

	res, err := tx.ExecContext(ctx, `UPDATE theatre_halls SET name = ?, num_rows = ?, seats_in_row = ? WHERE id = ?`,
		h.Name, h.Rows, h.SeatsInRow, h.ID)
	if err != nil {
		return err
	}
	if err := affectedOrNotFound(res); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a hall that no performance references.  Halls with
// performances are kept and ErrProtected is returned.
func (r *TheatreHallRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM performances WHERE theatre_hall_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrProtected
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM theatre_halls WHERE id = ?`, id)
	if err != nil {
		if isReferenced(err) {
			return ErrProtected
		}
		return err
	}
	return affectedOrNotFound(res)
}
