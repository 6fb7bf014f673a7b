package userInterest

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/wahkip/internal/api"
	"github.com/FACorreiaa/wahkip/internal/types"
)

// UserInterestHandler serves the interaction ledger.
type UserInterestHandler struct {
	userInterestService UserInterestService
	logger              *slog.Logger
}

func NewUserInterestHandler(userInterestService UserInterestService, logger *slog.Logger) *UserInterestHandler {
	return &UserInterestHandler{
		userInterestService: userInterestService,
		logger:              logger,
	}
}

// RecordInteraction godoc
// @Summary      Record an interaction
// @Description  Folds a view, like or save on an event's tags into the session's interest vector.
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        interaction body types.InteractionRequest true "Interaction"
// @Success      200 {object} types.Response
// @Failure      400 {object} types.Response "Invalid input"
// @Failure      500 {object} types.Response "Internal Server Error"
// @Router       /user/interactions [post]
func (h *UserInterestHandler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserInterestHandler").Start(r.Context(), "RecordInteraction", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/user/interactions"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "RecordInteraction"))

	var req types.InteractionRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		span.SetStatus(codes.Error, "Validation failed")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(attribute.String("action", string(req.Action)))

	if err := h.userInterestService.RecordInteraction(ctx, req.SessionID, req.EventTags, req.Action); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to record interaction")
		if errors.Is(err, types.ErrInvalidInput) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to record interaction", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to record interaction")
		return
	}

	span.SetStatus(codes.Ok, "Interaction recorded")
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true})
}

// GetInterestVector godoc
// @Summary      Get a session's interest vector
// @Tags         User
// @Produce      json
// @Param        session_id query string true "Session"
// @Success      200 {object} map[string]number
// @Failure      400 {object} types.Response "Missing session"
// @Router       /user/interests [get]
func (h *UserInterestHandler) GetInterestVector(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UserInterestHandler").Start(r.Context(), "GetInterestVector", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/user/interests"),
	))
	defer span.End()

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		span.SetStatus(codes.Error, "Missing session")
		api.ErrorResponse(w, r, http.StatusBadRequest, "session_id is required")
		return
	}

	vec, err := h.userInterestService.GetUserVector(ctx, sessionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to fetch interest vector", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch vector")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to retrieve interests")
		return
	}

	span.SetStatus(codes.Ok, "Vector fetched")
	api.WriteJSONResponse(w, r, http.StatusOK, vec)
}
