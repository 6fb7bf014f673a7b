package recommendations

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
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

// GetRecommendations godoc
// @Summary      Personalized event ranking
// @Description  Scores the city's events against the session's interest vector, best match first.
// @Tags         Recommendations
// @Produce      json
// @Param        city       query string false "City" default(Kingston)
// @Param        date       query string false "Day, YYYY-MM-DD"
// @Param        session_id query string false "Session" default(anon)
// @Param        explain    query bool   false "Attach a reason to strong matches"
// @Success      200 {object} types.RecommendationsResponse
// @Failure      400 {object} types.Response "Invalid query"
// @Router       /recommendations [get]
func (h *HandlerImpl) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("RecommendationsHandler").Start(r.Context(), "GetRecommendations", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/recommendations"),
	))
	defer span.End()

	query := r.URL.Query()
	q := types.RecommendationsQuery{
		City:      query.Get("city"),
		Date:      query.Get("date"),
		SessionID: query.Get("session_id"),
		Explain:   query.Get("explain") == "true",
	}

	resp, err := h.service.Recommend(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service error")
		if errors.Is(err, types.ErrInvalidInput) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "Failed to build recommendations", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to build recommendations")
		return
	}

	span.SetStatus(codes.Ok, "Recommendations served")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
