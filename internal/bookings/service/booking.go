package service

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "roomly/internal/bookings/errors"
	"roomly/internal/bookings/cache"
	"roomly/internal/bookings/events"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/validator"
	"roomly/internal/conflicts"
	"roomly/pkg/config"
	"roomly/pkg/db"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
	"sync"
	"time"

	"github.com/google/uuid"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, search model.BookingSearch) ([]*model.Booking, int64, error)
}

type Dependencies struct {
	Repo      repository.BookingRepository
	LockRepo  repository.BookingLockRepository
	Rooms     RoomLookup
	Checker   *conflicts.Checker
	Validator *validator.BookingValidator
	Cache     cache.ConflictCache
	Publisher events.Publisher
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	checker   *conflicts.Checker
	rooms     *roomResolver
	validator *validator.BookingValidator
	cache     cache.ConflictCache
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(deps Dependencies, cfg *config.Config) BookingService {
	if deps.Cache == nil {
		deps.Cache = cache.NewNoop()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NewNoopPublisher()
	}
	return &bookingService{
		repo:      deps.Repo,
		lockRepo:  deps.LockRepo,
		checker:   deps.Checker,
		rooms:     &roomResolver{rooms: deps.Rooms, defaults: deps.Checker.Options(), log: cfg.Log},
		validator: deps.Validator,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return err
	}
	if err := s.ensureFuture(booking.StartTime); err != nil {
		return err
	}

	settings, err := s.bookableRoom(ctx, booking.RoomID)
	if err != nil {
		return err
	}

	err = s.commit(ctx, booking, settings, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, booking)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking",
			"room_id", booking.RoomID,
			"start_time", booking.StartTime,
			"error", err,
		)
		return s.mapWriteError(err, booking.ID)
	}

	s.afterWrite(ctx, model.EventBookingCreated, booking)
	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
		"status", booking.Status,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapReadError(err, id)
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapReadError(err, id)
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeBookingUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}
	if !merged.StartTime.Equal(existing.StartTime) {
		if err := s.ensureFuture(merged.StartTime); err != nil {
			return nil, err
		}
	}

	settings, err := s.bookableRoom(ctx, merged.RoomID)
	if err != nil {
		return nil, err
	}

	err = s.commit(ctx, merged, settings, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, id, merged)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return nil, s.mapWriteError(err, id)
	}

	eventType := model.EventBookingUpdated
	if merged.Status == model.StatusCancelled && existing.Status != model.StatusCancelled {
		eventType = model.EventBookingCancelled
	}
	s.afterWrite(ctx, eventType, merged)
	s.cfg.Log.Info("Booking updated successfully", "id", id, "room_id", merged.RoomID)
	return merged, nil
}

// Cancel frees the slot. Cancelling twice is not an error.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapReadError(err, id)
	}
	if booking.Status == model.StatusCancelled {
		return booking, nil
	}

	booking.Status = model.StatusCancelled
	if err := s.repo.Update(ctx, id, booking); err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, s.mapWriteError(err, id)
	}

	s.afterWrite(ctx, model.EventBookingCancelled, booking)
	s.cfg.Log.Info("Booking cancelled", "id", id, "room_id", booking.RoomID)
	return booking, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapReadError(err, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapWriteError(err, id)
	}

	s.afterWrite(ctx, model.EventBookingDeleted, booking)
	s.cfg.Log.Info("Booking deleted successfully", "id", id, "room_id", booking.RoomID)
	return nil
}

func (s *bookingService) Search(ctx context.Context, search model.BookingSearch) ([]*model.Booking, int64, error) {
	search.RoomID = sanitizer.NormalizeID(search.RoomID)
	if search.RoomID == "" {
		return nil, 0, apperrors.InvalidInput("room_id is required")
	}
	if search.StartTime != nil && search.EndTime != nil && !search.EndTime.After(*search.StartTime) {
		return nil, 0, apperrors.InvalidInput("end_time must be after start_time")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountSearch(ctx, search)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings by search", "room_id", search.RoomID, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.Search(ctx, search)
		if err != nil {
			s.cfg.Log.Error("Failed to search bookings",
				"room_id", search.RoomID,
				"limit", search.Limit,
				"offset", search.Offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search bookings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Booking search completed",
		"room_id", search.RoomID,
		"count", len(bookings),
		"total_count", count,
	)
	return bookings, count, nil
}

// --- Helpers ---

// commit runs write in a transaction. Confirmed bookings are serialized per
// room and re-checked for overlaps inside the same transaction.
func (s *bookingService) commit(ctx context.Context, booking *model.Booking, settings *roomSettings, write db.TransactionFunc) error {
	if !booking.IsConfirmed() {
		return s.repo.ExecuteTransaction(ctx, write)
	}

	owner, err := s.acquireRoomLock(ctx, booking.RoomID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(context.WithoutCancel(ctx), roomLockID(booking.RoomID), owner); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "room_id", booking.RoomID, "error", releaseErr)
		}
	}()

	return s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.verifyNoConflicts(txCtx, booking, settings); err != nil {
			return err
		}
		return write(txCtx)
	})
}

func (s *bookingService) verifyNoConflicts(ctx context.Context, booking *model.Booking, settings *roomSettings) error {
	res, err := s.checker.FindConflicts(ctx, conflicts.Query{
		RoomID:           booking.RoomID,
		Start:            booking.StartTime,
		End:              booking.EndTime,
		ExcludeBookingID: booking.ID,
		Location:         settings.hours.Location,
	})
	if err != nil {
		return mapCheckError(err)
	}
	if res.HasConflicts() {
		first := res.Conflicts[0]
		return apperrors.Conflict(fmt.Sprintf(
			"Booking overlaps an existing booking (%s - %s)",
			first.StartTime.Format(time.RFC3339),
			first.EndTime.Format(time.RFC3339),
		)).WithDetails(map[string]any{"conflicts": res.Conflicts})
	}
	return nil
}

func roomLockID(roomID string) string {
	return "room_lock_" + roomID
}

// acquireRoomLock returns the owner token needed to release the lock.
func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (string, error) {
	lock := &model.BookingLock{
		ID:        roomLockID(roomID),
		Owner:     uuid.NewString(),
		ExpiresAt: time.Now().UTC().Add(s.cfg.BookingLockTTL),
	}

	if err := s.lockRepo.Acquire(ctx, lock); err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return "", apperrors.Conflict("This room is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}
	return lock.Owner, nil
}

// bookableRoom requires a known, active room when a room directory is wired.
func (s *bookingService) bookableRoom(ctx context.Context, roomID string) (*roomSettings, error) {
	settings, err := s.rooms.resolve(ctx, roomID)
	if err != nil {
		return nil, mapCheckError(err)
	}
	if s.rooms.rooms == nil {
		return settings, nil
	}
	if settings.room == nil {
		return nil, apperrors.NotFoundWithID("Room", roomID)
	}
	if !settings.room.Active {
		return nil, apperrors.Validation(bookingserrors.ErrRoomInactive.Error(), map[string]any{"room_id": roomID})
	}
	return settings, nil
}

// afterWrite drops cached answers for the room and announces the change.
// Neither failure undoes a committed write.
func (s *bookingService) afterWrite(ctx context.Context, eventType string, booking *model.Booking) {
	ctx = context.WithoutCancel(ctx)
	if err := s.cache.InvalidateRoom(ctx, booking.RoomID); err != nil {
		s.cfg.Log.Warn("Failed to invalidate conflict cache", "room_id", booking.RoomID, "error", err)
	}
	if err := s.publisher.Publish(ctx, model.NewBookingEvent(eventType, booking)); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"id", booking.ID,
			"error", err,
		)
	}
}

func (s *bookingService) ensureFuture(start time.Time) error {
	if !start.After(time.Now()) {
		return apperrors.Validation(bookingserrors.ErrStartInPast.Error(), map[string]any{"start_time": start})
	}
	return nil
}

func (s *bookingService) mapReadError(err error, id string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		return apperrors.Internal("Failed to retrieve booking", err)
	}
}

func (s *bookingService) mapWriteError(err error, id string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, bookingserrors.ErrTimeConflict):
		return apperrors.Conflict("Booking overlaps an existing confirmed booking")
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		return apperrors.Internal("Failed to save booking", err)
	}
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.RoomID = sanitizer.NormalizeID(b.RoomID)
	b.Title = sanitizer.NormalizeTitle(b.Title)
	b.Organizer = sanitizer.NormalizeName(b.Organizer)
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
}

// applyDefaults drops any client supplied id so a new booking cannot
// exclude an existing one from its own overlap check.
func (s *bookingService) applyDefaults(b *model.Booking) {
	b.ID = ""
	if b.Status == "" {
		b.Status = model.StatusConfirmed
	}
}

func (s *bookingService) mergeBookingUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Organizer != "" {
		merged.Organizer = updates.Organizer
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// mapCheckError translates checker sentinels for callers.
func mapCheckError(err error) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, conflicts.ErrInvalidInterval):
		return apperrors.Validation("Invalid booking interval", map[string]any{"error": err.Error()})
	case errors.Is(err, conflicts.ErrUnavailable):
		return apperrors.Unavailable("Booking store", err)
	default:
		return apperrors.Internal("Conflict check failed", err)
	}
}
