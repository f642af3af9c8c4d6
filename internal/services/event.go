package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventhub/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	cache          domain.EventListCache
	contextTimeout time.Duration
	logger         *slog.Logger
}

func NewEventService(eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	cache domain.EventListCache,
	timeout time.Duration,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		cache:          cache,
		contextTimeout: timeout,
		logger:         logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.CreatedBy == "" {
		return fmt.Errorf("%w: event creator is required", domain.ErrInvalidInput)
	}
	if _, ok := domain.ParseCategory(string(event.Category)); !ok {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, event.Category)
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// creator row is gone
			return domain.ErrNotFound
		}
		return fmt.Errorf("create event: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// ListEvents returns a page of events sorted by date ascending. Listings
// that are not restricted to a user's saved set are served through the
// list cache.
func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.SavedBy != "" {
		user, err := s.userRepo.GetByID(ctx, filter.SavedBy)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, 0, domain.ErrNotFound
			}
			return nil, 0, fmt.Errorf("get user: %w", err)
		}
		if len(user.SavedEvents) == 0 {
			return []*domain.Event{}, 0, nil
		}
		filter.IDs = user.SavedEvents
		filter.SavedBy = ""
	}

	// Write back only after a clean miss, under the generation that miss saw.
	writeBack := false
	var gen int64
	key := listCacheKey(filter, params)
	if filter.IDs == nil {
		page, g, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "event list cache read failed", "key", key, "err", err)
		case page != nil:
			return page.Events, page.Total, nil
		default:
			writeBack, gen = true, g
		}
	}

	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if writeBack {
		if err := s.cache.Set(ctx, gen, key, domain.EventPage{Events: events, Total: total}); err != nil {
			s.logger.WarnContext(ctx, "event list cache write failed", "key", key, "err", err)
		}
	}
	return events, total, nil
}

func listCacheKey(filter domain.EventFilter, params domain.PaginationParams) string {
	return fmt.Sprintf("c=%s|u=%s|q=%s|p=%d|n=%d",
		filter.Category, filter.CreatedBy, strings.ToLower(strings.TrimSpace(filter.Search)), params.Page, params.PageSize)
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, userID string, update domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.loadOwned(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if update.Category != nil {
		if _, ok := domain.ParseCategory(string(*update.Category)); !ok {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, *update.Category)
		}
	}
	if update.IsEmpty() {
		return event, nil
	}
	updated, err := s.eventRepo.Update(ctx, eventID, update)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.loadOwned(ctx, eventID, userID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// loadOwned fetches the event and checks that userID created it. No write
// happens before this returns nil.
func (s *eventService) loadOwned(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := domain.CheckOwnership(event, userID); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) ToggleSave(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Fail fast on a missing event. The repository re-checks it under lock.
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("get event: %w", err)
	}
	saved, err := s.userRepo.ToggleSavedEvent(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("toggle saved event: %w", err)
	}
	return saved, nil
}

// ListSavedEvents returns the user's saved events in the order they were saved.
func (s *eventService) ListSavedEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(user.SavedEvents) == 0 {
		return []*domain.Event{}, nil
	}

	events, _, err := s.eventRepo.List(ctx, domain.EventFilter{IDs: user.SavedEvents}, domain.PaginationParams{})
	if err != nil {
		return nil, fmt.Errorf("list saved events: %w", err)
	}
	byID := make(map[string]*domain.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}
	out := make([]*domain.Event, 0, len(events))
	for _, id := range user.SavedEvents {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *eventService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "event list cache invalidation failed", "err", err)
	}
}
