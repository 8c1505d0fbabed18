package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

func TestGenreCreateDuplicateName(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGenreRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO genres (name) VALUES (?)")).WithArgs("Drama").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Drama'"})

	err := repo.Create(context.Background(), &model.Genre{Name: "Drama"})
	requireFields(t, err, "name")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenreCreateSetsID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGenreRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO genres (name) VALUES (?)")).WithArgs("Comedy").
		WillReturnResult(sqlmock.NewResult(3, 1))

	g := &model.Genre{Name: "Comedy"}
	require.NoError(t, repo.Create(context.Background(), g))
	assert.Equal(t, uint64(3), g.ID)
}

func TestGenreUpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewGenreRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE genres SET name = ? WHERE id = ?")).WithArgs("Opera", 8).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &model.Genre{ID: 8, Name: "Opera"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTheatreHallDeleteProtected(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTheatreHallRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM performances WHERE theatre_hall_id = ?")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))

	require.ErrorIs(t, repo.Delete(context.Background(), 3), ErrProtected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTheatreHallDeleteUnused(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTheatreHallRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM performances WHERE theatre_hall_id = ?")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM theatre_halls WHERE id = ?")).WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTheatreHallUpdateBelowSoldSeat(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTheatreHallRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM theatre_halls WHERE id = ? FOR UPDATE")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(t.row_num), MAX(t.seat_num)")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"r", "s"}).AddRow(8, 12))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &model.TheatreHall{ID: 1, Name: "Main", Rows: 5, SeatsInRow: 20})
	verr := requireFields(t, err, "rows")
	assert.NotContains(t, verr.Fields, "seats_in_row")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTheatreHallUpdateLocksBeforeResizing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTheatreHallRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM theatre_halls WHERE id = ? FOR UPDATE")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(t.row_num), MAX(t.seat_num)")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"r", "s"}).AddRow(4, 9))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE theatre_halls SET name = ?, num_rows = ?, seats_in_row = ? WHERE id = ?")).
		WithArgs("Main", 4, 9, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), &model.TheatreHall{ID: 1, Name: "Main", Rows: 4, SeatsInRow: 9}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTheatreHallUpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTheatreHallRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM theatre_halls WHERE id = ? FOR UPDATE")).WithArgs(6).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &model.TheatreHall{ID: 6, Name: "Main", Rows: 4, SeatsInRow: 9})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceUpdateRejectsMoveWithSoldTickets(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPerformanceRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT theatre_hall_id FROM performances WHERE id = ? FOR UPDATE")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"theatre_hall_id"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tickets WHERE performance_id = ?")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &model.Performance{ID: 4, PlayID: 7, TheatreHallID: 3, ShowTime: time.Now()})
	requireFields(t, err, "theatre_hall")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceUpdateInOneTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPerformanceRepo(db)
	show := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT theatre_hall_id FROM performances WHERE id = ? FOR UPDATE")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"theatre_hall_id"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM plays WHERE id = ? LIMIT 1")).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM theatre_halls WHERE id = ? LIMIT 1")).WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE performances SET play_id = ?, theatre_hall_id = ?, show_time = ? WHERE id = ?")).
		WithArgs(7, 2, show, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), &model.Performance{ID: 4, PlayID: 7, TheatreHallID: 2, ShowTime: show}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceUpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPerformanceRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT theatre_hall_id FROM performances WHERE id = ? FOR UPDATE")).WithArgs(9).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &model.Performance{ID: 9, PlayID: 1, TheatreHallID: 1, ShowTime: time.Now()})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPerformanceDeleteWithTickets(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPerformanceRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tickets WHERE performance_id = ?")).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	require.ErrorIs(t, repo.Delete(context.Background(), 4), ErrProtected)
}

func TestPlayFilterByActor(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPlayRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM plays p WHERE EXISTS (SELECT 1 FROM play_actors pa WHERE pa.play_id = p.id AND pa.actor_id IN (?,?)) ORDER BY p.id")).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description"}).AddRow(1, "Hamlet", "Tragedy"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM play_genres pg JOIN genres g")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"play_id", "id", "name"}).AddRow(1, 5, "Drama"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM play_actors pa JOIN actors a")).WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"play_id", "id", "first_name", "last_name"}).AddRow(1, 2, "Olga", "Sumska"))

	plays, err := repo.Filter(context.Background(), PlayFilter{ActorIDs: []uint64{1, 2}})
	require.NoError(t, err)
	require.Len(t, plays, 1)
	assert.Equal(t, []model.Genre{{ID: 5, Name: "Drama"}}, plays[0].Genres)
	assert.Equal(t, "Olga Sumska", plays[0].Actors[0].FullName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayCreateUnknownGenre(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPlayRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM genres WHERE id IN (?,?)")).WithArgs(1, 9).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), PlayWrite{Title: "Hamlet", Description: "d", GenreIDs: []uint64{1, 9}})
	verr := requireFields(t, err, "genres")
	assert.Contains(t, verr.Fields["genres"], "9")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayUpdateReplacesLinksInOneTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPlayRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM plays WHERE id = ? FOR UPDATE")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM genres WHERE id IN (?)")).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM actors WHERE id IN (?,?)")).WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE plays SET title = ?, description = ? WHERE id = ?")).
		WithArgs("Hamlet", "Revised", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM play_genres WHERE play_id = ?")).WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM play_actors WHERE play_id = ?")).WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO play_genres (play_id, genre_id) VALUES (?, ?)")).WithArgs(3, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO play_actors (play_id, actor_id) VALUES (?, ?),(?, ?)")).WithArgs(3, 1, 3, 2).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description FROM plays WHERE id = ?")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description"}).AddRow(3, "Hamlet", "Revised"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM play_genres pg JOIN genres g")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"play_id", "id", "name"}).AddRow(3, 5, "Drama"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM play_actors pa JOIN actors a")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"play_id", "id", "first_name", "last_name"}).
			AddRow(3, 1, "Olga", "Sumska").AddRow(3, 2, "Bohdan", "Stupka"))

	p, err := repo.Update(context.Background(), 3, PlayWrite{
		Title: "Hamlet", Description: "Revised", GenreIDs: []uint64{5}, ActorIDs: []uint64{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, p.GenreIDs())
	assert.Equal(t, []uint64{1, 2}, p.ActorIDs())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayUpdateKeepsLinksWhenTargetMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPlayRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM plays WHERE id = ? FOR UPDATE")).WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM actors WHERE id IN (?)")).WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 3, PlayWrite{Title: "Hamlet", Description: "d", ActorIDs: []uint64{8}})
	requireFields(t, err, "actors")
	require.NoError(t, mock.ExpectationsWereMet())
}
