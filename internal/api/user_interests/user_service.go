package userInterest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/wahkip/app/observability/metrics"
	"github.com/FACorreiaa/wahkip/internal/types"
)

// DecayFactor shrinks the previous weight of a tag on every new interaction.
const DecayFactor = 0.95

var actionWeights = map[types.InteractionAction]float64{
	types.ActionView: 0.5,
	types.ActionLike: 1.0,
	types.ActionSave: 1.5,
}

// ActionWeight returns the weight of an action and whether it is known.
func ActionWeight(a types.InteractionAction) (float64, bool) {
	w, ok := actionWeights[a]
	return w, ok
}

var _ UserInterestService = (*UserInterestServiceImpl)(nil)

type UserInterestService interface {
	// RecordInteraction folds one interaction into the session's interest
	// vector. An empty action counts as a view.
	RecordInteraction(ctx context.Context, sessionID string, tags []string, action types.InteractionAction) error
	// GetUserVector returns the raw tag weights of a session. Unknown
	// sessions have an empty vector.
	GetUserVector(ctx context.Context, sessionID string) (types.TagVector, error)
}

type UserInterestServiceImpl struct {
	logger *slog.Logger
	repo   UserInterestRepo
}

func NewUserInterestService(repo UserInterestRepo, logger *slog.Logger) *UserInterestServiceImpl {
	return &UserInterestServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *UserInterestServiceImpl) RecordInteraction(ctx context.Context, sessionID string, tags []string, action types.InteractionAction) error {
	if action == "" {
		action = types.ActionView
	}
	ctx, span := otel.Tracer("UserInterestService").Start(ctx, "RecordInteraction", trace.WithAttributes(
		attribute.String("action", string(action)),
		attribute.StringSlice("tags", tags),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "RecordInteraction"), slog.String("action", string(action)))

	w, ok := ActionWeight(action)
	if !ok {
		span.SetStatus(codes.Error, "unknown action")
		return fmt.Errorf("unknown action %q: %w", action, types.ErrInvalidInput)
	}
	if strings.TrimSpace(sessionID) == "" {
		span.SetStatus(codes.Error, "missing session")
		return fmt.Errorf("session id is required: %w", types.ErrInvalidInput)
	}
	if len(tags) == 0 {
		span.SetStatus(codes.Error, "no tags")
		return fmt.Errorf("at least one tag is required: %w", types.ErrInvalidInput)
	}

	userID, err := s.repo.GetOrCreateProfile(ctx, sessionID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to resolve profile", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to resolve profile")
		return fmt.Errorf("error resolving profile: %w", err)
	}

	if err := s.repo.ApplyInteraction(ctx, userID, tags, w, DecayFactor); err != nil {
		l.ErrorContext(ctx, "Failed to apply interaction", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to apply interaction")
		return fmt.Errorf("error recording interaction: %w", err)
	}

	metrics.Get().InteractionsRecordedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("action", string(action))))
	l.DebugContext(ctx, "Interaction recorded", slog.String("userID", userID.String()), slog.Int("tags", len(tags)))
	span.SetStatus(codes.Ok, "Interaction recorded")
	return nil
}

func (s *UserInterestServiceImpl) GetUserVector(ctx context.Context, sessionID string) (types.TagVector, error) {
	ctx, span := otel.Tracer("UserInterestService").Start(ctx, "GetUserVector")
	defer span.End()

	l := s.logger.With(slog.String("method", "GetUserVector"))

	userID, err := s.repo.FindProfile(ctx, sessionID)
	if errors.Is(err, types.ErrNotFound) {
		span.SetStatus(codes.Ok, "No profile")
		return types.TagVector{}, nil
	}
	if err != nil {
		l.ErrorContext(ctx, "Failed to find profile", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to find profile")
		return nil, fmt.Errorf("error finding profile: %w", err)
	}

	interests, err := s.repo.GetInterests(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch interests", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch interests")
		return nil, fmt.Errorf("error fetching interests: %w", err)
	}

	vec := make(types.TagVector, len(interests))
	for _, in := range interests {
		vec[in.Tag] = in.Weight
	}
	span.SetAttributes(attribute.Int("tags.count", len(vec)))
	span.SetStatus(codes.Ok, "Vector fetched")
	return vec, nil
}
