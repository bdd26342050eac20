package service

import (
	"context"
	"errors"
	roomserrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/repository"
	"roomly/internal/rooms/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
	"sync"
)

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id string) error
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	validator *validator.RoomValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	s.sanitize(room)
	s.applyDefaults(room)

	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed",
			"name", room.Name,
			"error", err,
		)
		return apperrors.Validation("Room validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicateName) {
			return apperrors.Conflict("A room named '" + room.Name + "' already exists")
		}
		s.cfg.Log.Error("Failed to create room",
			"name", room.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully",
		"id", room.ID,
		"name", room.Name,
		"open_at", room.OpenAt,
		"close_at", room.CloseAt,
		"time_zone", room.TimeZone,
	)

	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	id = sanitizer.NormalizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve room")
	}
	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", err)
			errCount = apperrors.Internal("Failed to count rooms", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		rooms, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all rooms",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve rooms", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, id string, updates *model.RoomUpdate) (*model.Room, error) {
	id = sanitizer.NormalizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Room validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to check room existence")
	}

	merged := s.mergeRoomUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Room validation failed",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Validation("Room validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicateName) {
			return nil, apperrors.Conflict("A room named '" + merged.Name + "' already exists")
		}
		return nil, s.mapError(err, id, "Failed to update room")
	}

	s.cfg.Log.Info("Room updated successfully",
		"id", id,
		"name", merged.Name,
		"active", merged.Active,
	)

	return merged, nil
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	id = sanitizer.NormalizeID(id)
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err, id, "Failed to delete room")
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id)

	return nil
}

func (s *roomService) mapError(err error, id, message string) error {
	if errors.Is(err, roomserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Room", id)
	}
	if errors.Is(err, roomserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid room ID format")
	}
	s.cfg.Log.Error(message,
		"id", id,
		"error", err,
	)
	return apperrors.Internal(message, err)
}

func (s *roomService) sanitize(room *model.Room) {
	room.Name = sanitizer.NormalizeName(room.Name)
	room.Location = sanitizer.TrimAndNormalize(room.Location)
	room.OpenAt = sanitizer.NormalizeHHMM(room.OpenAt)
	room.CloseAt = sanitizer.NormalizeHHMM(room.CloseAt)
	room.TimeZone = sanitizer.NormalizeTimeZone(room.TimeZone)
}

func (s *roomService) sanitizeUpdate(updates *model.RoomUpdate) {
	updates.Name = sanitizer.NormalizeName(updates.Name)
	updates.Location = sanitizer.TrimAndNormalize(updates.Location)
	updates.OpenAt = sanitizer.NormalizeHHMM(updates.OpenAt)
	updates.CloseAt = sanitizer.NormalizeHHMM(updates.CloseAt)
	updates.TimeZone = sanitizer.NormalizeTimeZone(updates.TimeZone)
}

// applyDefaults fills hours and step from configuration. New rooms are
// always created active.
func (s *roomService) applyDefaults(room *model.Room) {
	room.ID = ""
	room.Active = true
	if room.OpenAt == "" {
		room.OpenAt = s.cfg.DefaultOpenAt
	}
	if room.CloseAt == "" {
		room.CloseAt = s.cfg.DefaultCloseAt
	}
	if room.TimeZone == "" {
		room.TimeZone = s.cfg.DefaultTimeZone
	}
	if room.SlotStepMin == 0 {
		room.SlotStepMin = int(s.cfg.SlotStep.Minutes())
	}
}

func (s *roomService) mergeRoomUpdates(existing *model.Room, updates *model.RoomUpdate) *model.Room {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Location != "" {
		merged.Location = updates.Location
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.OpenAt != "" {
		merged.OpenAt = updates.OpenAt
	}
	if updates.CloseAt != "" {
		merged.CloseAt = updates.CloseAt
	}
	if updates.TimeZone != "" {
		merged.TimeZone = updates.TimeZone
	}
	if updates.SlotStepMin != nil {
		merged.SlotStepMin = *updates.SlotStepMin
	}
	if updates.Active != nil {
		merged.Active = *updates.Active
	}

	return &merged
}
