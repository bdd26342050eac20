package service

import (
	"context"
	"errors"
	"fmt"
	"roomly/internal/conflicts"
	roomserrors "roomly/internal/rooms/errors"
	"roomly/pkg/config"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"time"
)

// RoomLookup reads room settings. FindByID returns roomserrors.ErrNotFound
// for unknown rooms.
type RoomLookup interface {
	FindByID(ctx context.Context, id string) (*model.Room, error)
}

// NewCheckerOptions builds conflict checker defaults from configuration.
func NewCheckerOptions(cfg *config.Config) (conflicts.Options, error) {
	hours, err := conflicts.ParseOperatingHours(cfg.DefaultOpenAt, cfg.DefaultCloseAt, cfg.DefaultTimeZone)
	if err != nil {
		return conflicts.Options{}, fmt.Errorf("invalid default operating hours: %w", err)
	}
	return conflicts.Options{
		Bounds:        conflicts.Bounds{Min: cfg.MinBookingDuration, Max: cfg.MaxBookingDuration},
		Hours:         hours,
		Step:          cfg.SlotStep,
		LookaheadDays: cfg.SlotLookaheadDays,
		Now:           time.Now,
	}, nil
}

type roomSettings struct {
	room  *model.Room
	hours conflicts.OperatingHours
	step  time.Duration
}

type roomResolver struct {
	rooms    RoomLookup
	defaults conflicts.Options
	log      *logger.Logger
}

// resolve returns the room's hours and slot step. An unknown room gets the
// configured defaults and a nil room.
func (r *roomResolver) resolve(ctx context.Context, roomID string) (*roomSettings, error) {
	settings := &roomSettings{hours: r.defaults.Hours, step: r.defaults.Step}
	if r.rooms == nil || roomID == "" {
		return settings, nil
	}

	room, err := r.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
			return settings, nil
		}
		return nil, fmt.Errorf("%w: room lookup: %w", conflicts.ErrUnavailable, err)
	}
	settings.room = room

	hours, err := conflicts.ParseOperatingHours(room.OpenAt, room.CloseAt, room.TimeZone)
	if err != nil {
		r.log.Warn("Room has unusable operating hours, using defaults",
			"room_id", roomID,
			"error", err,
		)
	} else {
		settings.hours = hours
	}
	if room.SlotStepMin > 0 {
		settings.step = time.Duration(room.SlotStepMin) * time.Minute
	}
	return settings, nil
}
