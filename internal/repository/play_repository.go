package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// PlayWrite is the editable state of a play.  GenreIDs and ActorIDs
// replace the link sets as a whole.
type PlayWrite struct {
	Title       string
	Description string
	GenreIDs    []uint64
	ActorIDs    []uint64
}

// PlayRepo reads and writes plays together with their genre and actor
// links.  Plays are never deleted through the API so there is no
// Delete method.
type PlayRepo struct {
	db *sql.DB
}

// NewPlayRepo constructs a PlayRepo with the given DB handle.
func NewPlayRepo(db *sql.DB) *PlayRepo { return &PlayRepo{db: db} }

// Filter returns the plays matching f ordered by id, with genres and
// actors prefetched in one query each.
func (r *PlayRepo) Filter(ctx context.Context, f PlayFilter) ([]model.Play, error) {
	cond, args := f.where()
	q := `SELECT p.id, p.title, p.description FROM plays p WHERE ` + cond + ` ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plays := []model.Play{}
	for rows.Next() {
		var p model.Play
		if err := rows.Scan(&p.ID, &p.Title, &p.Description); err != nil {
			return nil, err
		}
		plays = append(plays, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := loadPlayLinks(ctx, r.db, plays); err != nil {
		return nil, err
	}
	return plays, nil
}

// GetByID returns the play with its links or ErrNotFound.
func (r *PlayRepo) GetByID(ctx context.Context, id uint64) (*model.Play, error) {
	return getPlay(ctx, r.db, id)
}

// Create inserts the play and its links in one transaction.  Unknown
// genre or actor ids reject the whole write.
func (r *PlayRepo) Create(ctx context.Context, w PlayWrite) (*model.Play, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkLinkTargets(ctx, tx, w); err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO plays (title, description) VALUES (?, ?)`, w.Title, w.Description)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := replaceLinks(ctx, tx, uint64(id), w); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update overwrites title, description and both link sets.
func (r *PlayRepo) Update(ctx context.Context, id uint64, w PlayWrite) (*model.Play, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM plays WHERE id = ? FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := checkLinkTargets(ctx, tx, w); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE plays SET title = ?, description = ? WHERE id = ?`, w.Title, w.Description, id); err != nil {
		return nil, err
	}
	if err := replaceLinks(ctx, tx, id, w); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func getPlay(ctx context.Context, q querier, id uint64) (*model.Play, error) {
	var p model.Play
	err := q.QueryRowContext(ctx, `SELECT id, title, description FROM plays WHERE id = ?`, id).
		Scan(&p.ID, &p.Title, &p.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	plays := []model.Play{p}
	if err := loadPlayLinks(ctx, q, plays); err != nil {
		return nil, err
	}
	return &plays[0], nil
}

// checkLinkTargets verifies every referenced genre and actor exists.
func checkLinkTargets(ctx context.Context, q querier, w PlayWrite) error {
	verr := &ValidationError{}
	if missing, err := missingIDs(ctx, q, "genres", w.GenreIDs); err != nil {
		return err
	} else if len(missing) > 0 {
		verr.Add("genres", invalidPKMessage(missing))
	}
	if missing, err := missingIDs(ctx, q, "actors", w.ActorIDs); err != nil {
		return err
	} else if len(missing) > 0 {
		verr.Add("actors", invalidPKMessage(missing))
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

func invalidPKMessage(ids []uint64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("invalid pk %s - object does not exist.", strings.Join(parts, ", "))
}

// missingIDs returns the ids that have no row in table.
func missingIDs(ctx context.Context, q querier, table string, ids []uint64) ([]uint64, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := q.QueryContext(ctx, "SELECT id FROM "+table+" WHERE id IN ("+placeholders(len(ids))+")", uintArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := map[uint64]bool{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []uint64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// replaceLinks swaps the play's link rows for the ones in w.
func replaceLinks(ctx context.Context, tx *sql.Tx, playID uint64, w PlayWrite) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM play_genres WHERE play_id = ?`, playID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM play_actors WHERE play_id = ?`, playID); err != nil {
		return err
	}
	if err := insertLinks(ctx, tx, "play_genres", "genre_id", playID, dedupe(w.GenreIDs)); err != nil {
		return err
	}
	return insertLinks(ctx, tx, "play_actors", "actor_id", playID, dedupe(w.ActorIDs))
}

func insertLinks(ctx context.Context, tx *sql.Tx, table, col string, playID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	query := "INSERT INTO " + table + " (play_id, " + col + ") VALUES "
	args := make([]any, 0, len(ids)*2)
	for i, id := range ids {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, playID, id)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isMissingRef(err) {
			return NewValidationError(strings.TrimSuffix(col, "_id")+"s", "referenced object does not exist.")
		}
		return err
	}
	return nil
}

// loadPlayLinks fills Genres and Actors of every play with one query
// per link table.
func loadPlayLinks(ctx context.Context, q querier, plays []model.Play) error {
	if len(plays) == 0 {
		return nil
	}
	idx := make(map[uint64]int, len(plays))
	ids := make([]uint64, 0, len(plays))
	for i := range plays {
		plays[i].Genres = []model.Genre{}
		plays[i].Actors = []model.Actor{}
		idx[plays[i].ID] = i
		ids = append(ids, plays[i].ID)
	}
	in := placeholders(len(ids))
	args := uintArgs(ids)

	grows, err := q.QueryContext(ctx, `SELECT pg.play_id, g.id, g.name FROM play_genres pg
		JOIN genres g ON g.id = pg.genre_id
		WHERE pg.play_id IN (`+in+`) ORDER BY g.id`, args...)
	if err != nil {
		return err
	}
	defer grows.Close()
	for grows.Next() {
		var playID uint64
		var g model.Genre
		if err := grows.Scan(&playID, &g.ID, &g.Name); err != nil {
			return err
		}
		if i, ok := idx[playID]; ok {
			plays[i].Genres = append(plays[i].Genres, g)
		}
	}
	if err := grows.Err(); err != nil {
		return err
	}

	arows, err := q.QueryContext(ctx, `SELECT pa.play_id, a.id, a.first_name, a.last_name FROM play_actors pa
		JOIN actors a ON a.id = pa.actor_id
		WHERE pa.play_id IN (`+in+`) ORDER BY a.id`, args...)
	if err != nil {
		return err
	}
	defer arows.Close()
	for arows.Next() {
		var playID uint64
		var a model.Actor
		if err := arows.Scan(&playID, &a.ID, &a.FirstName, &a.LastName); err != nil {
			return err
		}
		if i, ok := idx[playID]; ok {
			plays[i].Actors = append(plays[i].Actors, a)
		}
	}
	return arows.Err()
}
