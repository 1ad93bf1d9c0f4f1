package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// CalendarRepository persists business calendars and their exceptions.
type CalendarRepository interface {
	Create(ctx context.Context, cal *domain.BusinessCalendar) error
	Update(ctx context.Context, cal *domain.BusinessCalendar) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.BusinessCalendar, error)
	GetDefault(ctx context.Context) (*domain.BusinessCalendar, error)
	List(ctx context.Context) ([]domain.BusinessCalendar, error)
	SetDefault(ctx context.Context, id string) error
	AddException(ctx context.Context, exc *domain.CalendarException) error
	RemoveException(ctx context.Context, calendarID, exceptionID string) error
}

type calendarRepository struct {
	pool *pgxpool.Pool
}

// NewCalendarRepository instantiates repository.
func NewCalendarRepository(pool *pgxpool.Pool) CalendarRepository {
	return &calendarRepository{pool: pool}
}

// scheduleRecord is the JSONB storage shape of a weekly schedule, keyed by
// lowercase weekday name.
type scheduleRecord map[string]struct {
	Open    string `json:"open"`
	Close   string `json:"close"`
	Enabled bool   `json:"enabled"`
}

func encodeSchedule(schedule domain.WeeklySchedule) ([]byte, error) {
	record := scheduleRecord{}
	for day, hours := range schedule {
		record[domain.WeekdayName(day)] = struct {
			Open    string `json:"open"`
			Close   string `json:"close"`
			Enabled bool   `json:"enabled"`
		}{Open: hours.Open, Close: hours.Close, Enabled: hours.Enabled}
	}
	return json.Marshal(record)
}

func decodeSchedule(raw []byte) (domain.WeeklySchedule, error) {
	record := scheduleRecord{}
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	schedule := domain.WeeklySchedule{}
	for name, hours := range record {
		day, err := domain.ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		schedule[day] = domain.WeekdayHours{Open: hours.Open, Close: hours.Close, Enabled: hours.Enabled}
	}
	return schedule, nil
}

func (r *calendarRepository) Create(ctx context.Context, cal *domain.BusinessCalendar) error {
	schedule, err := encodeSchedule(cal.Schedule)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO business_calendars (name, timezone, schedule, is_default)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		cal.Name,
		cal.Timezone,
		schedule,
		cal.IsDefault,
	).Scan(&cal.ID, &cal.CreatedAt, &cal.UpdatedAt)
}

func (r *calendarRepository) Update(ctx context.Context, cal *domain.BusinessCalendar) error {
	schedule, err := encodeSchedule(cal.Schedule)
	if err != nil {
		return err
	}
	const query = `
        UPDATE business_calendars SET name=$1, timezone=$2, schedule=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, cal.Name, cal.Timezone, schedule, cal.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *calendarRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM business_calendars WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *calendarRepository) GetByID(ctx context.Context, id string) (*domain.BusinessCalendar, error) {
	const query = `
        SELECT id, name, timezone, schedule, is_default, created_at, updated_at
        FROM business_calendars WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *calendarRepository) GetDefault(ctx context.Context) (*domain.BusinessCalendar, error) {
	const query = `
        SELECT id, name, timezone, schedule, is_default, created_at, updated_at
        FROM business_calendars WHERE is_default LIMIT 1`
	return r.fetchSingle(ctx, query)
}

func (r *calendarRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.BusinessCalendar, error) {
	var cal domain.BusinessCalendar
	var rawSchedule []byte
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&cal.ID,
		&cal.Name,
		&cal.Timezone,
		&rawSchedule,
		&cal.IsDefault,
		&cal.CreatedAt,
		&cal.UpdatedAt,
	); err != nil {
		return nil, err
	}
	schedule, err := decodeSchedule(rawSchedule)
	if err != nil {
		return nil, err
	}
	cal.Schedule = schedule
	exceptions, err := r.listExceptions(ctx, cal.ID)
	if err != nil {
		return nil, err
	}
	cal.Exceptions = exceptions
	return &cal, nil
}

func (r *calendarRepository) List(ctx context.Context) ([]domain.BusinessCalendar, error) {
	const query = `
        SELECT id, name, timezone, schedule, is_default, created_at, updated_at
        FROM business_calendars ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calendars []domain.BusinessCalendar
	for rows.Next() {
		var cal domain.BusinessCalendar
		var rawSchedule []byte
		if err := rows.Scan(
			&cal.ID,
			&cal.Name,
			&cal.Timezone,
			&rawSchedule,
			&cal.IsDefault,
			&cal.CreatedAt,
			&cal.UpdatedAt,
		); err != nil {
			return nil, err
		}
		schedule, err := decodeSchedule(rawSchedule)
		if err != nil {
			return nil, err
		}
		cal.Schedule = schedule
		calendars = append(calendars, cal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range calendars {
		exceptions, err := r.listExceptions(ctx, calendars[i].ID)
		if err != nil {
			return nil, err
		}
		calendars[i].Exceptions = exceptions
	}
	return calendars, nil
}

// SetDefault makes one calendar the default and unsets the flag on every
// other calendar in the same transaction.
func (r *calendarRepository) SetDefault(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `UPDATE business_calendars SET is_default=FALSE, updated_at=NOW() WHERE is_default`); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `UPDATE business_calendars SET is_default=TRUE, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

func (r *calendarRepository) AddException(ctx context.Context, exc *domain.CalendarException) error {
	const query = `
        INSERT INTO calendar_exceptions (calendar_id, date, name, is_holiday, open_time, close_time)
        VALUES ($1,$2,$3,$4,NULLIF($5,''),NULLIF($6,''))
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		exc.CalendarID,
		exc.Date,
		exc.Name,
		exc.IsHoliday,
		exc.Open,
		exc.Close,
	).Scan(&exc.ID)
}

func (r *calendarRepository) RemoveException(ctx context.Context, calendarID, exceptionID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM calendar_exceptions WHERE id=$1 AND calendar_id=$2`, exceptionID, calendarID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *calendarRepository) listExceptions(ctx context.Context, calendarID string) ([]domain.CalendarException, error) {
	const query = `
        SELECT id, calendar_id, date, name, is_holiday, COALESCE(open_time,''), COALESCE(close_time,'')
        FROM calendar_exceptions WHERE calendar_id=$1 ORDER BY date`
	rows, err := r.pool.Query(ctx, query, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exceptions []domain.CalendarException
	for rows.Next() {
		var exc domain.CalendarException
		if err := rows.Scan(&exc.ID, &exc.CalendarID, &exc.Date, &exc.Name, &exc.IsHoliday, &exc.Open, &exc.Close); err != nil {
			return nil, err
		}
		exceptions = append(exceptions, exc)
	}
	return exceptions, rows.Err()
}
