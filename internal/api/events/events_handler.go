package events

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

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

// ListEvents godoc
// @Summary      Search events
// @Description  Lists events filtered by city, date range, tags and title text, ascending by start time.
// @Tags         Events
// @Produce      json
// @Param        city  query string false "City"
// @Param        from  query string false "Start bound, YYYY-MM-DD or RFC 3339"
// @Param        to    query string false "End bound, YYYY-MM-DD or RFC 3339"
// @Param        tags  query string false "Comma-separated tags, all must match"
// @Param        q     query string false "Title search"
// @Param        page  query int    false "Page, from 1"
// @Param        limit query int    false "Page size, 1-50"
// @Success      200 {object} types.EventsPage
// @Failure      400 {object} types.Response "Invalid query"
// @Router       /events [get]
func (h *HandlerImpl) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EventsHandler").Start(r.Context(), "ListEvents", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/events"),
	))
	defer span.End()

	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		span.SetStatus(codes.Error, "Invalid query")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(attribute.String("city", filter.City))

	page, err := h.service.Search(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to search events", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service error")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to search events")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	span.SetStatus(codes.Ok, "Events listed")
	api.WriteJSONResponse(w, r, http.StatusOK, page)
}

// CreateEvent godoc
// @Summary      Create an event
// @Tags         Events
// @Accept       json
// @Produce      json
// @Param        event body types.CreateEventRequest true "Event"
// @Success      201 {object} types.Response
// @Failure      400 {object} types.Response "Invalid input"
// @Failure      500 {object} types.Response "Internal server error"
// @Router       /events [post]
func (h *HandlerImpl) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EventsHandler").Start(r.Context(), "CreateEvent", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/events"),
	))
	defer span.End()

	var req types.CreateEventRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.service.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service error")
		if errors.Is(err, types.ErrInvalidInput) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "Failed to create event", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create event")
		return
	}

	span.SetStatus(codes.Ok, "Event created")
	api.WriteJSONResponse(w, r, http.StatusCreated, types.Response{Success: true, ID: id})
}

// ParseFilter reads the event search parameters. Date-only bounds expand to
// the start and end of that UTC day.
func ParseFilter(q url.Values) (types.EventFilter, error) {
	f := types.EventFilter{
		City:  strings.TrimSpace(q.Get("city")),
		Query: strings.TrimSpace(q.Get("q")),
		Page:  1,
		Limit: DefaultPageLimit,
	}

	var err error
	if f.From, err = parseBound(q.Get("from"), false); err != nil {
		return f, fmt.Errorf("invalid from: %w", err)
	}
	if f.To, err = parseBound(q.Get("to"), true); err != nil {
		return f, fmt.Errorf("invalid to: %w", err)
	}

	for _, tag := range strings.Split(q.Get("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			f.Tags = append(f.Tags, tag)
		}
	}

	if v := q.Get("page"); v != "" {
		if f.Page, err = strconv.Atoi(v); err != nil {
			return f, fmt.Errorf("invalid page %q", v)
		}
	}
	if v := q.Get("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil {
			return f, fmt.Errorf("invalid limit %q", v)
		}
	}
	return f, nil
}

func parseBound(v string, end bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if day, err := time.Parse("2006-01-02", v); err == nil {
		start, last := DayBounds(day)
		if end {
			return &last, nil
		}
		return &start, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
