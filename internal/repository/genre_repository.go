package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// GenreRepo provides CRUD for the genres table.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo constructs a GenreRepo with the given DB handle.
func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{db: db} }

// List returns every genre ordered by id.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM genres ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetByID returns ErrNotFound when the genre does not exist.
func (r *GenreRepo) GetByID(ctx context.Context, id uint64) (*model.Genre, error) {
	var g model.Genre
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM genres WHERE id = ?`, id).Scan(&g.ID, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts g and sets its ID.  A taken name is a validation error.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO genres (name) VALUES (?)`, g.Name)
	if err != nil {
		if isDuplicate(err) {
			return NewValidationError("name", "genre with this name already exists.")
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// Update overwrites the name of the genre with g.ID.
func (r *GenreRepo) Update(ctx context.Context, g *model.Genre) error {
	res, err := r.db.ExecContext(ctx, `UPDATE genres SET name = ? WHERE id = ?`, g.Name, g.ID)
	if err != nil {
		if isDuplicate(err) {
			return NewValidationError("name", "genre with this name already exists.")
		}
		return err
	}
	return affectedOrNotFound(res)
}

// Delete removes the genre; the play_genres links go with it (ON DELETE
// CASCADE) while the plays stay.
func (r *GenreRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM genres WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}
