package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/wahkip/internal/api"
	"github.com/FACorreiaa/wahkip/internal/types"
)

// Suggested hourly band when no verified helper publishes a rate.
const (
	DefaultRateMin = 40
	DefaultRateMax = 120
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Register(ctx context.Context, req types.RegisterHelperRequest) (uuid.UUID, error)
	Search(ctx context.Context, q types.HelperSearchQuery) (*types.HelperSearchResponse, error)
	CreateReview(ctx context.Context, req types.CreateReviewRequest) (*types.HelperReview, error)
	ListReviews(ctx context.Context, helperID uuid.UUID) ([]types.HelperReview, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewHelpersService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// SuggestedPriceRange takes the lowest positive rate_min and the highest
// positive rate_max across helpers, each bound falling back independently.
func SuggestedPriceRange(items []types.Helper) types.PriceRange {
	pr := types.PriceRange{}
	for _, h := range items {
		if h.RateMin != nil && *h.RateMin > 0 && (pr.Min == 0 || *h.RateMin < pr.Min) {
			pr.Min = *h.RateMin
		}
		if h.RateMax != nil && *h.RateMax > pr.Max {
			pr.Max = *h.RateMax
		}
	}
	if pr.Min == 0 {
		pr.Min = DefaultRateMin
	}
	if pr.Max == 0 {
		pr.Max = DefaultRateMax
	}
	return pr
}

func (s *ServiceImpl) Register(ctx context.Context, req types.RegisterHelperRequest) (uuid.UUID, error) {
	ctx, span := otel.Tracer("HelpersService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("city", req.City),
	))
	defer span.End()

	req.Name, req.City = strings.TrimSpace(req.Name), strings.TrimSpace(req.City)
	if err := api.ValidateStruct(req); err != nil {
		span.SetStatus(codes.Error, "Invalid helper")
		return uuid.Nil, fmt.Errorf("%s: %w", err.Error(), types.ErrInvalidInput)
	}
	if req.RateMin != nil && req.RateMax != nil && *req.RateMax < *req.RateMin {
		span.SetStatus(codes.Error, "Invalid helper")
		return uuid.Nil, fmt.Errorf("rate_max must not be below rate_min: %w", types.ErrInvalidInput)
	}

	id, err := s.repo.Register(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to register helper", slog.String("method", "Register"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to register helper")
		return uuid.Nil, fmt.Errorf("error registering helper: %w", err)
	}

	span.SetStatus(codes.Ok, "Helper registered")
	return id, nil
}

func (s *ServiceImpl) Search(ctx context.Context, q types.HelperSearchQuery) (*types.HelperSearchResponse, error) {
	ctx, span := otel.Tracer("HelpersService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("city", q.City),
		attribute.StringSlice("skills", q.Skills),
	))
	defer span.End()

	items, err := s.repo.SearchVerified(ctx, q)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to search helpers", slog.String("method", "Search"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to search helpers")
		return nil, fmt.Errorf("error searching helpers: %w", err)
	}

	span.SetStatus(codes.Ok, "Helpers searched")
	return &types.HelperSearchResponse{Items: items, SuggestedPriceRange: SuggestedPriceRange(items)}, nil
}

func (s *ServiceImpl) CreateReview(ctx context.Context, req types.CreateReviewRequest) (*types.HelperReview, error) {
	ctx, span := otel.Tracer("HelpersService").Start(ctx, "CreateReview", trace.WithAttributes(
		attribute.String("helper.id", req.HelperID),
		attribute.Int("rating", req.Rating),
	))
	defer span.End()

	if err := api.ValidateStruct(req); err != nil {
		span.SetStatus(codes.Error, "Invalid review")
		return nil, fmt.Errorf("%s: %w", err.Error(), types.ErrInvalidInput)
	}
	helperID, err := uuid.Parse(req.HelperID)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid review")
		return nil, fmt.Errorf("helper_id: %w", types.ErrInvalidInput)
	}

	review, err := s.repo.CreateReview(ctx, helperID, req.Rating, req.Comment, req.SessionID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create review", slog.String("method", "CreateReview"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create review")
		return nil, fmt.Errorf("error creating review: %w", err)
	}

	span.SetStatus(codes.Ok, "Review created")
	return review, nil
}

func (s *ServiceImpl) ListReviews(ctx context.Context, helperID uuid.UUID) ([]types.HelperReview, error) {
	ctx, span := otel.Tracer("HelpersService").Start(ctx, "ListReviews", trace.WithAttributes(
		attribute.String("helper.id", helperID.String()),
	))
	defer span.End()

	reviews, err := s.repo.ListReviews(ctx, helperID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list reviews")
		return nil, fmt.Errorf("error listing reviews: %w", err)
	}
	span.SetStatus(codes.Ok, "Reviews listed")
	return reviews, nil
}
