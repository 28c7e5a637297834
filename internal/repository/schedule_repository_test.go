package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/barbershop-api/internal/domain"
)

var scheduleCols = []string{"id", "date", "hour", "title", "body", "created_at", "updated_at"}

func TestScheduleRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewScheduleRepository(mock)
	s := &domain.Schedule{ID: "s1", Date: "20/10/2030", Hour: "10:00", Title: "Haircut"}
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO schedules`).
		WithArgs(s.ID, s.Date, s.Hour, s.Title, s.Body).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	require.NoError(t, repo.Create(context.Background(), s))
	assert.Equal(t, now, s.CreatedAt)

	mock.ExpectQuery(`INSERT INTO schedules`).
		WithArgs(s.ID, s.Date, s.Hour, s.Title, s.Body).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: SchedulesSlotKey})
	require.ErrorIs(t, repo.Create(context.Background(), s), ErrDuplicate)
}

func TestScheduleRepository_Update(t *testing.T) {
	mock := newMock(t)
	repo := NewScheduleRepository(mock)
	s := &domain.Schedule{ID: "s1", Date: "21/10/2030", Hour: "11:30"}

	mock.ExpectExec(`UPDATE schedules SET date=\$1, hour=\$2`).
		WithArgs(s.Date, s.Hour, s.Title, s.Body, s.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.Update(context.Background(), s))

	mock.ExpectExec(`UPDATE schedules`).
		WithArgs(s.Date, s.Hour, s.Title, s.Body, s.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, repo.Update(context.Background(), s), ErrNotFound)

	mock.ExpectExec(`UPDATE schedules`).
		WithArgs(s.Date, s.Hour, s.Title, s.Body, s.ID).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: SchedulesSlotKey})
	require.ErrorIs(t, repo.Update(context.Background(), s), ErrDuplicate)
}

func TestScheduleRepository_GetByIDAndSlot(t *testing.T) {
	mock := newMock(t)
	repo := NewScheduleRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM schedules WHERE id=\$1`).WithArgs("s1").
		WillReturnRows(pgxmock.NewRows(scheduleCols).AddRow("s1", "20/10/2030", "10:00", "", "", now, now))
	got, err := repo.GetByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "10:00", got.Hour)

	mock.ExpectQuery(`FROM schedules WHERE date=\$1 AND hour=\$2`).WithArgs("20/10/2030", "10:00").
		WillReturnRows(pgxmock.NewRows(scheduleCols).AddRow("s1", "20/10/2030", "10:00", "", "", now, now))
	got, err = repo.GetBySlot(context.Background(), "20/10/2030", "10:00")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	mock.ExpectQuery(`FROM schedules WHERE id=\$1`).WithArgs("nope").WillReturnError(pgx.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleRepository_ListAndDelete(t *testing.T) {
	mock := newMock(t)
	repo := NewScheduleRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM schedules ORDER BY created_at`).
		WillReturnRows(pgxmock.NewRows(scheduleCols).
			AddRow("s1", "20/10/2030", "10:00", "", "", now, now).
			AddRow("s2", "20/10/2030", "11:00", "Beard", "", now, now))
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Beard", list[1].Title)

	mock.ExpectExec(`DELETE FROM schedules WHERE id=\$1`).WithArgs("s1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Delete(context.Background(), "s1"))

	mock.ExpectExec(`DELETE FROM schedules WHERE id=\$1`).WithArgs("s1").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, repo.Delete(context.Background(), "s1"), ErrNotFound)
}
