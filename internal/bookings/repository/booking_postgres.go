package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "roomly/internal/bookings/errors"
	"roomly/pkg/config"
	"roomly/pkg/db"
	pgtx "roomly/pkg/db/postgres"
	"roomly/pkg/model"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = "id, room_id, title, organizer, start_time, end_time, status, created_at, updated_at"

// postgresBookingRepository relies on the bookings_no_overlap exclusion
// constraint as the final word on overlapping confirmed bookings.
type postgresBookingRepository struct {
	cfg       *config.Config
	pool      *pgxpool.Pool
	txManager db.TransactionManager
}

func NewPostgresBookingRepository(cfg *config.Config) BookingRepository {
	return &postgresBookingRepository{
		cfg:       cfg,
		pool:      cfg.Client.Postgres,
		txManager: pgtx.NewTransactionManager(cfg.Client.Postgres),
	}
}

func parseUUID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return parsed.String(), nil
}

func (r *postgresBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.ID = uuid.NewString()
	booking.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	_, err := pgtx.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO bookings (id, room_id, title, organizer, start_time, end_time, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		booking.ID, booking.RoomID, booking.Title, booking.Organizer,
		booking.StartTime, booking.EndTime, string(booking.Status), booking.CreatedAt,
	)
	if err != nil {
		booking.ID = ""
		if pgtx.IsExclusionViolation(err) {
			return fmt.Errorf("%w: %w", bookingserrors.ErrTimeConflict, err)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *postgresBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	key, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	row := pgtx.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, key)
	booking, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return booking, nil
}

func (r *postgresBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.query(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY start_time, id LIMIT $1 OFFSET $2`,
		limit, offset)
}

func (r *postgresBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	key, err := parseUUID(id)
	if err != nil {
		return err
	}

	booking.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	tag, err := pgtx.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE bookings
		 SET title = $2, organizer = $3, start_time = $4, end_time = $5, status = $6, updated_at = $7
		 WHERE id = $1`,
		key, booking.Title, booking.Organizer, booking.StartTime, booking.EndTime,
		string(booking.Status), booking.UpdatedAt,
	)
	if err != nil {
		if pgtx.IsExclusionViolation(err) {
			return fmt.Errorf("%w: %w", bookingserrors.ErrTimeConflict, err)
		}
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *postgresBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	key, err := parseUUID(id)
	if err != nil {
		return err
	}

	tag, err := pgtx.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM bookings WHERE id = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *postgresBookingRepository) Search(ctx context.Context, search model.BookingSearch) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	where, args := buildSearchClause(search.RoomID, search.StartTime, search.EndTime)
	args = append(args, search.Limit, search.Offset)
	sql := fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY start_time, id LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)-1, len(args))
	return r.query(ctx, sql, args...)
}

func (r *postgresBookingRepository) CountSearch(ctx context.Context, search model.BookingSearch) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	where, args := buildSearchClause(search.RoomID, search.StartTime, search.EndTime)
	var count int64
	if err := pgtx.Conn(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM bookings`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *postgresBookingRepository) FindOverlapping(ctx context.Context, roomID string, from, to time.Time) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	where, args := buildSearchClause(roomID, &from, &to)
	return r.query(ctx, `SELECT `+bookingColumns+` FROM bookings`+where+` ORDER BY start_time, id`, args...)
}

func (r *postgresBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var count int64
	if err := pgtx.Conn(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM bookings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *postgresBookingRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *postgresBookingRepository) query(ctx context.Context, sql string, args ...any) ([]*model.Booking, error) {
	rows, err := pgtx.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	bookings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Booking, error) {
		return scanBooking(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		b         model.Booking
		status    string
		updatedAt *time.Time
	)
	if err := row.Scan(&b.ID, &b.RoomID, &b.Title, &b.Organizer, &b.StartTime, &b.EndTime,
		&status, &b.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if updatedAt != nil {
		b.UpdatedAt = *updatedAt
	}
	return &b, nil
}

// buildSearchClause mirrors buildSearchFilter: the optional window selects
// bookings that overlap it.
func buildSearchClause(roomID string, startTime, endTime *time.Time) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if roomID != "" {
		args = append(args, roomID)
		conds = append(conds, fmt.Sprintf("room_id = $%d", len(args)))
	}
	if endTime != nil {
		args = append(args, *endTime)
		conds = append(conds, fmt.Sprintf("start_time < $%d", len(args)))
	}
	if startTime != nil {
		args = append(args, *startTime)
		conds = append(conds, fmt.Sprintf("end_time > $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
