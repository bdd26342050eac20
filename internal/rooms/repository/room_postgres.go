package repository

import (
	"context"
	"errors"
	"fmt"
	roomserrors "roomly/internal/rooms/errors"
	"roomly/pkg/config"
	pgtx "roomly/pkg/db/postgres"
	"roomly/pkg/model"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const roomColumns = "id, name, location, capacity, open_at, close_at, time_zone, slot_step_min, active, created_at"

type postgresRoomRepository struct {
	cfg  *config.Config
	pool *pgxpool.Pool
}

func NewPostgresRoomRepository(cfg *config.Config) RoomRepository {
	return &postgresRoomRepository{cfg: cfg, pool: cfg.Client.Postgres}
}

func parseUUID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, id)
	}
	return parsed.String(), nil
}

func (r *postgresRoomRepository) Create(ctx context.Context, room *model.Room) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	room.ID = uuid.NewString()
	room.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO rooms (`+roomColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		room.ID, room.Name, room.Location, room.Capacity, room.OpenAt, room.CloseAt,
		room.TimeZone, room.SlotStepMin, room.Active, room.CreatedAt,
	)
	if err != nil {
		room.ID = ""
		if pgtx.IsUniqueViolation(err) {
			return roomserrors.ErrDuplicateName
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (r *postgresRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	key, err := parseUUID(id)
	if err != nil {
		return nil, err
	}

	room, err := scanRoom(r.pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, roomserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return room, nil
}

func (r *postgresRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+roomColumns+` FROM rooms ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find rooms: %w", err)
	}
	rooms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Room, error) {
		return scanRoom(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}

func (r *postgresRoomRepository) Update(ctx context.Context, id string, room *model.Room) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	key, err := parseUUID(id)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE rooms
		 SET name = $2, location = $3, capacity = $4, open_at = $5, close_at = $6,
		     time_zone = $7, slot_step_min = $8, active = $9
		 WHERE id = $1`,
		key, room.Name, room.Location, room.Capacity, room.OpenAt, room.CloseAt,
		room.TimeZone, room.SlotStepMin, room.Active,
	)
	if err != nil {
		if pgtx.IsUniqueViolation(err) {
			return roomserrors.ErrDuplicateName
		}
		return fmt.Errorf("failed to update room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return roomserrors.ErrNotFound
	}
	return nil
}

func (r *postgresRoomRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	key, err := parseUUID(id)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return roomserrors.ErrNotFound
	}
	return nil
}

func (r *postgresRoomRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM rooms`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}

func scanRoom(row pgx.Row) (*model.Room, error) {
	var room model.Room
	if err := row.Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &room.OpenAt,
		&room.CloseAt, &room.TimeZone, &room.SlotStepMin, &room.Active, &room.CreatedAt); err != nil {
		return nil, err
	}
	return &room, nil
}
