package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-space-recommender/internal/model"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *RoomRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	repo := NewRoomRepo(db)
	repo.now = func() time.Time { return fixedNow }
	return db, mock, repo
}

func sampleRooms() []model.Room {
	return []model.Room{
		{ID: "R1", Name: "Rock Room", Capacities: map[model.SeatingStyle]int{model.StyleTheater: 50, model.StyleClassroom: 30}},
		{ID: "R2", Name: "Generations Ballroom", Area: "Indoor", SqFt: 4800, Capacities: map[model.SeatingStyle]int{model.StyleUShape: 40}},
	}
}

func TestReplaceAll_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM room_capacities`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM rooms`).WillReturnResult(sqlmock.NewResult(0, 2))
	insertRoom := regexp.QuoteMeta(`INSERT INTO rooms (id, name, area, sq_ft, position)`)
	insertCap := regexp.QuoteMeta(`INSERT INTO room_capacities (room_id, style, capacity)`)

	// styles are written in display order: theater before classroom
	mock.ExpectExec(insertRoom).WithArgs("R1", "Rock Room", "", 0, 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertCap).WithArgs("R1", "theater", 50).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertCap).WithArgs("R1", "classroom", 30).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertRoom).WithArgs("R2", "Generations Ballroom", "Indoor", 4800, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertCap).WithArgs("R2", "u_shape", 40).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO catalog_imports`)).
		WithArgs("abc123", 2, fixedNow).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceAll(context.Background(), sampleRooms(), "abc123"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceAll_RollsBackOnError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM room_capacities`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM rooms`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO rooms`).WillReturnError(errors.New("duplicate entry"))
	mock.ExpectRollback()

	err := repo.ReplaceAll(context.Background(), sampleRooms(), "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert room R1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadAll_Success(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, area, sq_ft FROM rooms`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "area", "sq_ft"}).
			AddRow("R1", "Rock Room", "", 0).
			AddRow("R2", "Generations Ballroom", "Indoor", 4800))
	mock.ExpectQuery(`SELECT room_id, style, capacity FROM room_capacities`).
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "style", "capacity"}).
			AddRow("R1", "theater", 50).
			AddRow("R2", "u_shape", 40).
			AddRow("R2", "cabaret", 12).
			AddRow("R9", "theater", 10))

	rooms, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "R1", rooms[0].ID)
	assert.Equal(t, map[model.SeatingStyle]int{model.StyleTheater: 50}, rooms[0].Capacities)
	assert.Equal(t, map[model.SeatingStyle]int{model.StyleUShape: 40}, rooms[1].Capacities)
	assert.Equal(t, 4800, rooms[1].SqFt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadAll_Empty(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, area, sq_ft FROM rooms`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "area", "sq_ft"}))

	_, err := repo.LoadAll(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCatalog)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestImport(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	q := regexp.QuoteMeta(`SELECT id, version, room_count, imported_at FROM catalog_imports`)
	mock.ExpectQuery(q).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version", "room_count", "imported_at"}).
			AddRow(7, "abc123", 2, fixedNow))
	im, err := repo.LatestImport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123", im.Version)
	assert.Equal(t, fixedNow, im.ImportedAt)

	mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)
	_, err = repo.LatestImport(context.Background())
	assert.ErrorIs(t, err, ErrNoImport)
	assert.NoError(t, mock.ExpectationsWereMet())
}
