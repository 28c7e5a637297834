package repository

import (
	"context"

	"github.com/spec-kit/barbershop-api/internal/domain"
)

// SchedulesSlotKey is the unique constraint over (date, hour).
const SchedulesSlotKey = "schedules_date_hour_key"

// ScheduleRepository manages schedule persistence.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) error
	Update(ctx context.Context, schedule *domain.Schedule) error
	GetByID(ctx context.Context, id string) (*domain.Schedule, error)
	GetBySlot(ctx context.Context, date, hour string) (*domain.Schedule, error)
	List(ctx context.Context) ([]domain.Schedule, error)
	Delete(ctx context.Context, id string) error
}

type scheduleRepository struct {
	db DBTX
}

// NewScheduleRepository builds the repository.
func NewScheduleRepository(db DBTX) ScheduleRepository {
	return &scheduleRepository{db: db}
}

const scheduleColumns = `id, date, hour, title, body, created_at, updated_at`

func (r *scheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	const query = `
        INSERT INTO schedules (id, date, hour, title, body)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		schedule.ID,
		schedule.Date,
		schedule.Hour,
		schedule.Title,
		schedule.Body,
	).Scan(&schedule.CreatedAt, &schedule.UpdatedAt)
	return mapWriteError(err)
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *domain.Schedule) error {
	const query = `
        UPDATE schedules SET date=$1, hour=$2, title=$3, body=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		schedule.Date,
		schedule.Hour,
		schedule.Title,
		schedule.Body,
		schedule.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	return r.getOne(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id=$1`, id)
}

func (r *scheduleRepository) GetBySlot(ctx context.Context, date, hour string) (*domain.Schedule, error) {
	return r.getOne(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE date=$1 AND hour=$2`, date, hour)
}

func (r *scheduleRepository) List(ctx context.Context) ([]domain.Schedule, error) {
	rows, err := r.db.Query(ctx, `SELECT `+scheduleColumns+` FROM schedules ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Schedule{}
	for rows.Next() {
		var s domain.Schedule
		if err := rows.Scan(&s.ID, &s.Date, &s.Hour, &s.Title, &s.Body, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *scheduleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM schedules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *scheduleRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&s.ID,
		&s.Date,
		&s.Hour,
		&s.Title,
		&s.Body,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, mapReadError(err)
	}
	return &s, nil
}
