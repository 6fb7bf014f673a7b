package recommendations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/wahkip/internal/api/events"
	"github.com/FACorreiaa/wahkip/internal/types"
)

const (
	DefaultCity      = "Kingston"
	DefaultSessionID = "anon"
	MaxCandidates    = 40
)

var _ Service = (*ServiceImpl)(nil)

// EventSearcher finds the events to rank.
type EventSearcher interface {
	Search(ctx context.Context, filter types.EventFilter) (*types.EventsPage, error)
}

// VectorSource returns the raw interest weights of a session.
type VectorSource interface {
	GetUserVector(ctx context.Context, sessionID string) (types.TagVector, error)
}

type Service interface {
	Recommend(ctx context.Context, q types.RecommendationsQuery) (*types.RecommendationsResponse, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	events    EventSearcher
	interests VectorSource
}

func NewRecommendationsService(events EventSearcher, interests VectorSource, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		events:    events,
		interests: interests,
	}
}

// Recommend ranks up to MaxCandidates events of the city, optionally limited
// to one UTC day, against the session's interest vector.
func (s *ServiceImpl) Recommend(ctx context.Context, q types.RecommendationsQuery) (*types.RecommendationsResponse, error) {
	if q.City == "" {
		q.City = DefaultCity
	}
	if q.SessionID == "" {
		q.SessionID = DefaultSessionID
	}

	ctx, span := otel.Tracer("RecommendationsService").Start(ctx, "Recommend", trace.WithAttributes(
		attribute.String("city", q.City),
		attribute.String("date", q.Date),
		attribute.Bool("explain", q.Explain),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Recommend"), slog.String("city", q.City))

	filter := types.EventFilter{City: q.City, Page: 1, Limit: MaxCandidates}
	if q.Date != "" {
		day, err := time.Parse("2006-01-02", q.Date)
		if err != nil {
			span.SetStatus(codes.Error, "invalid date")
			return nil, fmt.Errorf("invalid date %q: %w", q.Date, types.ErrInvalidInput)
		}
		from, to := events.DayBounds(day)
		filter.From, filter.To = &from, &to
	}

	var page *types.EventsPage
	var vector types.TagVector
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.events.Search(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to load events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		vector, err = s.interests.GetUserVector(gctx, q.SessionID)
		if err != nil {
			return fmt.Errorf("failed to load interest vector: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Failed to gather recommendation inputs", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "inputs unavailable")
		return nil, err
	}

	if len(page.Items) == 0 {
		span.SetStatus(codes.Ok, "no events")
		return &types.RecommendationsResponse{Items: []types.Match{}}, nil
	}

	items := Rank(page.Items, vector, q.Explain)
	l.DebugContext(ctx, "Events ranked", slog.Int("count", len(items)), slog.Int("tags", len(vector)))
	span.SetAttributes(attribute.Int("items", len(items)))
	span.SetStatus(codes.Ok, "ranked")
	return &types.RecommendationsResponse{Items: items}, nil
}
