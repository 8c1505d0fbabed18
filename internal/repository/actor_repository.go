package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// ActorRepo provides CRUD for the actors table.
type ActorRepo struct {
	db *sql.DB
}

func NewActorRepo(db *sql.DB) *ActorRepo { return &ActorRepo{db: db} }

// List returns every actor ordered by id.
func (r *ActorRepo) List(ctx context.Context) ([]model.Actor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, first_name, last_name FROM actors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Actor{}
	for rows.Next() {
		var a model.Actor
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ActorRepo) GetByID(ctx context.Context, id uint64) (*model.Actor, error) {
	var a model.Actor
	err := r.db.QueryRowContext(ctx, `SELECT id, first_name, last_name FROM actors WHERE id = ?`, id).
		Scan(&a.ID, &a.FirstName, &a.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ActorRepo) Create(ctx context.Context, a *model.Actor) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO actors (first_name, last_name) VALUES (?, ?)`, a.FirstName, a.LastName)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

func (r *ActorRepo) Update(ctx context.Context, a *model.Actor) error {
	res, err := r.db.ExecContext(ctx, `UPDATE actors SET first_name = ?, last_name = ? WHERE id = ?`, a.FirstName, a.LastName, a.ID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// Delete removes the actor and its play_actors links.
func (r *ActorRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM actors WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}
