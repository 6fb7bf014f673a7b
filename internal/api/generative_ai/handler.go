package generativeAI

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/wahkip/internal/api"
)

// HandlerImpl exposes provider diagnostics over HTTP.
type HandlerImpl struct {
	registry *Registry
	logger   *slog.Logger
}

func NewHandlerImpl(registry *Registry, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{registry: registry, logger: logger}
}

// Status godoc
// @Summary      Provider status
// @Description  Reports which text-generation providers have credentials configured.
// @Tags         AI
// @Produce      json
// @Success      200 {array} types.ProviderStatus
// @Router       /ai/status [get]
func (h *HandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("GenerativeAIHandler").Start(r.Context(), "Status", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/ai/status"),
	))
	defer span.End()

	span.SetStatus(codes.Ok, "status reported")
	api.WriteJSONResponse(w, r, http.StatusOK, h.registry.Status())
}
