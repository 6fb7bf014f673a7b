package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/wahkip/internal/api"
	"github.com/FACorreiaa/wahkip/internal/types"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Search(ctx context.Context, filter types.EventFilter) (*types.EventsPage, error)
	// ListForDay returns the candidate events of city for the UTC day
	// containing day, ascending by start time. Results are cached.
	ListForDay(ctx context.Context, city string, day time.Time) ([]types.Event, error)
	Create(ctx context.Context, req types.CreateEventRequest) (string, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.Cache
}

// NewEventsService caches day listings for ttl.
func NewEventsService(repo Repository, ttl, cleanup time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  cache.New(ttl, cleanup),
	}
}

// DayBounds returns the first and last instant of the UTC day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Millisecond)
}

func dayCacheKey(city string, day time.Time) string {
	return city + "|" + day.UTC().Format("2006-01-02")
}

func (s *ServiceImpl) Search(ctx context.Context, filter types.EventFilter) (*types.EventsPage, error) {
	ctx, span := otel.Tracer("EventsService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("city", filter.City),
		attribute.StringSlice("tags", filter.Tags),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Search"))

	if filter.Page < 1 {
		filter.Page = 1
	}
	switch {
	case filter.Limit < 1:
		filter.Limit = DefaultPageLimit
	case filter.Limit > MaxPageLimit:
		filter.Limit = MaxPageLimit
	}

	items, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		l.ErrorContext(ctx, "Failed to search events", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to search events")
		return nil, fmt.Errorf("error searching events: %w", err)
	}

	span.SetStatus(codes.Ok, "Events searched")
	return &types.EventsPage{Items: items, Page: filter.Page, Limit: filter.Limit, Total: total}, nil
}

func (s *ServiceImpl) ListForDay(ctx context.Context, city string, day time.Time) ([]types.Event, error) {
	ctx, span := otel.Tracer("EventsService").Start(ctx, "ListForDay", trace.WithAttributes(
		attribute.String("city", city),
		attribute.String("day", day.Format("2006-01-02")),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "ListForDay"), slog.String("city", city))

	key := dayCacheKey(city, day)
	span.SetAttributes(attribute.String("cache.key", key))
	if cached, found := s.cache.Get(key); found {
		if events, ok := cached.([]types.Event); ok {
			l.DebugContext(ctx, "Cache hit for day events", slog.String("cache_key", key))
			span.AddEvent("Cache hit")
			span.SetStatus(codes.Ok, "Day events served from cache")
			return events, nil
		}
	}

	from, to := DayBounds(day)
	events, err := s.repo.ListForDay(ctx, city, from, to, MaxDayCandidates)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list day events", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list day events")
		return nil, fmt.Errorf("error listing events for day: %w", err)
	}

	s.cache.Set(key, events, cache.DefaultExpiration)
	span.SetStatus(codes.Ok, "Day events listed")
	return events, nil
}

// Create stores a new event and drops the cached listing of its day.
func (s *ServiceImpl) Create(ctx context.Context, req types.CreateEventRequest) (string, error) {
	ctx, span := otel.Tracer("EventsService").Start(ctx, "Create", trace.WithAttributes(
		attribute.String("city", req.City),
		attribute.String("title", req.Title),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Create"), slog.String("city", req.City))

	if err := api.ValidateStruct(req); err != nil {
		span.SetStatus(codes.Error, "Invalid event")
		return "", fmt.Errorf("%s: %w", err.Error(), types.ErrInvalidInput)
	}
	if req.DateEnd != nil && req.DateEnd.Before(req.DateStart) {
		span.SetStatus(codes.Error, "Invalid event")
		return "", fmt.Errorf("date_end must not precede date_start: %w", types.ErrInvalidInput)
	}

	id, err := s.repo.Create(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create event", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create event")
		return "", fmt.Errorf("error creating event: %w", err)
	}
	s.cache.Delete(dayCacheKey(req.City, req.DateStart))

	span.SetStatus(codes.Ok, "Event created")
	return id, nil
}
