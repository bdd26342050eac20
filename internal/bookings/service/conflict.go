package service

import (
	"context"
	"roomly/internal/bookings/cache"
	"roomly/internal/bookings/validator"
	"roomly/internal/conflicts"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
	"time"
)

// ConflictService answers "does this interval clash?" and "when is the room
// next free?" for callers that have not committed anything yet.
type ConflictService interface {
	Check(ctx context.Context, req *model.ConflictCheckRequest) (*model.ConflictCheckResponse, error)
	Suggest(ctx context.Context, req *model.SuggestRequest) (*model.SuggestResponse, error)
}

type conflictService struct {
	checker   *conflicts.Checker
	rooms     *roomResolver
	validator *validator.BookingValidator
	cache     cache.ConflictCache
	cfg       *config.Config
}

func NewConflictService(deps Dependencies, cfg *config.Config) ConflictService {
	if deps.Cache == nil {
		deps.Cache = cache.NewNoop()
	}
	return &conflictService{
		checker:   deps.Checker,
		rooms:     &roomResolver{rooms: deps.Rooms, defaults: deps.Checker.Options(), log: cfg.Log},
		validator: deps.Validator,
		cache:     deps.Cache,
		cfg:       cfg,
	}
}

// Check treats missing or unparseable times as "nothing to check yet" and
// returns an empty result instead of an error.
func (s *conflictService) Check(ctx context.Context, req *model.ConflictCheckRequest) (*model.ConflictCheckResponse, error) {
	roomID := sanitizer.NormalizeID(req.RoomID)
	excludeID := sanitizer.NormalizeID(req.ExcludeBookingID)
	start, okStart := parseTimestamp(req.StartTime)
	end, okEnd := parseTimestamp(req.EndTime)
	if !okStart || !okEnd {
		s.cfg.Log.Debug("Conflict check skipped, interval incomplete", "room_id", roomID)
		return &model.ConflictCheckResponse{
			Conflicts: []*model.Booking{},
			CheckedAt: time.Now().UTC(),
		}, nil
	}

	var ticket cache.Ticket
	if roomID != "" {
		cached, t, ok := s.cache.Get(ctx, cache.Key{RoomID: roomID, Start: start, End: end, ExcludeBookingID: excludeID})
		if ok {
			s.cfg.Log.Debug("Conflict check served from cache", "room_id", roomID)
			return cached, nil
		}
		ticket = t
	}

	settings, err := s.rooms.resolve(ctx, roomID)
	if err != nil {
		s.cfg.Log.Warn("Conflict check failed", "room_id", roomID, "error", err)
		return nil, mapCheckError(err)
	}

	res, err := s.checker.FindConflicts(ctx, conflicts.Query{
		RoomID:           roomID,
		Start:            start,
		End:              end,
		ExcludeBookingID: excludeID,
		Location:         settings.hours.Location,
	})
	if err != nil {
		s.cfg.Log.Warn("Conflict check failed",
			"room_id", roomID,
			"start_time", start,
			"end_time", end,
			"error", err,
		)
		return nil, mapCheckError(err)
	}

	resp := &model.ConflictCheckResponse{
		Conflicts:    res.Conflicts,
		CheckedAt:    res.CheckedAt,
		Warnings:     res.Warnings,
		HasConflicts: res.HasConflicts(),
	}
	if len(res.Warnings) > 0 {
		s.cfg.Log.Info("Excluded booking no longer exists",
			"room_id", roomID,
			"exclude_booking_id", excludeID,
		)
	} else if roomID != "" {
		s.cache.Set(ctx, ticket, resp)
	}

	s.cfg.Log.Debug("Conflict check completed",
		"room_id", roomID,
		"conflicts", len(res.Conflicts),
	)
	return resp, nil
}

func (s *conflictService) Suggest(ctx context.Context, req *model.SuggestRequest) (*model.SuggestResponse, error) {
	req.RoomID = sanitizer.NormalizeID(req.RoomID)
	req.ExcludeBookingID = sanitizer.NormalizeID(req.ExcludeBookingID)
	if err := s.validator.ValidateSuggest(req); err != nil {
		return nil, apperrors.Validation("Invalid suggestion request", map[string]any{"error": err.Error()})
	}

	settings, err := s.rooms.resolve(ctx, req.RoomID)
	if err != nil {
		return nil, mapCheckError(err)
	}

	slot, ok, err := s.checker.SuggestNextSlot(ctx, conflicts.SuggestQuery{
		RoomID:           req.RoomID,
		Start:            req.StartTime,
		End:              req.EndTime,
		ExcludeBookingID: req.ExcludeBookingID,
		Hours:            &settings.hours,
		Step:             settings.step,
	})
	if err != nil {
		s.cfg.Log.Warn("Slot suggestion failed", "room_id", req.RoomID, "error", err)
		return nil, mapCheckError(err)
	}
	if !ok {
		s.cfg.Log.Info("No free slot within lookahead", "room_id", req.RoomID, "start_time", req.StartTime)
		return &model.SuggestResponse{Available: false}, nil
	}

	start, end := slot.Start.UTC(), slot.End.UTC()
	return &model.SuggestResponse{Start: &start, End: &end, Available: true}, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
