package helpers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/wahkip/internal/api"
	"github.com/FACorreiaa/wahkip/internal/types"
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// RegisterHelper godoc
// @Summary      Register a local helper
// @Description  New helpers are stored unverified and do not appear in search until verified.
// @Tags         Helpers
// @Accept       json
// @Produce      json
// @Param        helper body types.RegisterHelperRequest true "Helper"
// @Success      201 {object} types.Response
// @Failure      400 {object} types.Response "Invalid input"
// @Router       /helpers/register [post]
func (h *HandlerImpl) RegisterHelper(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HelpersHandler").Start(r.Context(), "RegisterHelper", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/helpers/register"),
	))
	defer span.End()

	var req types.RegisterHelperRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.service.Register(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to register helper")
		if errors.Is(err, types.ErrInvalidInput) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "Failed to register helper", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to register helper")
		return
	}

	span.SetStatus(codes.Ok, "Helper registered")
	api.WriteJSONResponse(w, r, http.StatusCreated, types.Response{Success: true, ID: id.String()})
}

// SearchHelpers godoc
// @Summary      Search verified helpers
// @Tags         Helpers
// @Produce      json
// @Param        city   query string false "City"
// @Param        skills query string false "Comma-separated skills, all must match"
// @Success      200 {object} types.HelperSearchResponse
// @Router       /helpers/search [get]
func (h *HandlerImpl) SearchHelpers(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HelpersHandler").Start(r.Context(), "SearchHelpers", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/helpers/search"),
	))
	defer span.End()

	q := types.HelperSearchQuery{
		City:   strings.TrimSpace(r.URL.Query().Get("city")),
		Skills: splitCSV(r.URL.Query().Get("skills")),
	}
	span.SetAttributes(attribute.String("city", q.City))

	resp, err := h.service.Search(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to search helpers", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service error")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to search helpers")
		return
	}

	span.SetStatus(codes.Ok, "Helpers searched")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// CreateReview godoc
// @Summary      Review a helper
// @Tags         Helpers
// @Accept       json
// @Produce      json
// @Param        review body types.CreateReviewRequest true "Review"
// @Success      201 {object} types.ReviewResponse
// @Failure      400 {object} types.Response "Invalid input"
// @Failure      404 {object} types.Response "Unknown helper"
// @Router       /helpers/reviews [post]
func (h *HandlerImpl) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HelpersHandler").Start(r.Context(), "CreateReview", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/helpers/reviews"),
	))
	defer span.End()

	var req types.CreateReviewRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.service.CreateReview(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create review")
		switch {
		case errors.Is(err, types.ErrInvalidInput):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Helper not found")
		default:
			h.logger.ErrorContext(ctx, "Failed to create review", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create review")
		}
		return
	}

	span.SetStatus(codes.Ok, "Review created")
	api.WriteJSONResponse(w, r, http.StatusCreated, types.ReviewResponse{Success: true, Review: review})
}

// ListReviews godoc
// @Summary      List a helper's reviews
// @Tags         Helpers
// @Produce      json
// @Param        helper_id query string true "Helper ID"
// @Success      200 {object} types.ReviewsResponse
// @Failure      400 {object} types.Response "Missing or malformed helper_id"
// @Router       /helpers/reviews [get]
func (h *HandlerImpl) ListReviews(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HelpersHandler").Start(r.Context(), "ListReviews", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/helpers/reviews"),
	))
	defer span.End()

	raw := r.URL.Query().Get("helper_id")
	if raw == "" {
		span.SetStatus(codes.Error, "Missing helper_id")
		api.ErrorResponse(w, r, http.StatusBadRequest, "helper_id is required")
		return
	}
	helperID, err := uuid.Parse(raw)
	if err != nil {
		span.SetStatus(codes.Error, "Invalid helper_id")
		api.ErrorResponse(w, r, http.StatusBadRequest, "helper_id must be a UUID")
		return
	}

	reviews, err := h.service.ListReviews(ctx, helperID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list reviews", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service error")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list reviews")
		return
	}

	span.SetStatus(codes.Ok, "Reviews listed")
	api.WriteJSONResponse(w, r, http.StatusOK, types.ReviewsResponse{Reviews: reviews})
}
