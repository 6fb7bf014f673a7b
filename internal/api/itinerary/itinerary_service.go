package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/wahkip/app/observability/metrics"
	generativeAI "github.com/FACorreiaa/wahkip/internal/api/generative_ai"
	"github.com/FACorreiaa/wahkip/internal/types"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultDescription = "I want to experience local culture and activities"
	cannedPicks        = 4
	dateLayout         = "2006-01-02"
)

var _ Service = (*ServiceImpl)(nil)

// EventSource loads the candidate events of a city for one UTC day, sorted
// ascending by start time.
type EventSource interface {
	ListForDay(ctx context.Context, city string, day time.Time) ([]types.Event, error)
}

// Service composes itineraries and serves persisted ones.
type Service interface {
	// Compose expects req.Events sorted ascending by DateStart.
	Compose(ctx context.Context, req ComposeRequest) (*types.ComposeResult, error)
	GenerateItinerary(ctx context.Context, req types.ItineraryRequest) (*types.ItineraryResponse, error)
	GetItinerary(ctx context.Context, id uuid.UUID) (*types.StoredItinerary, error)
}

// ComposeRequest is the input of a single composition.
type ComposeRequest struct {
	City        string
	Date        string
	Description string
	Events      []types.Event
}

// Options configures the orchestrator.
type Options struct {
	Mode     Mode
	Selector CannedSelector
	Timeout  time.Duration
}

type ServiceImpl struct {
	logger *slog.Logger
	chain  []generativeAI.Provider
	events EventSource
	repo   Repository
	opts   Options
}

// NewItineraryService wires the provider chain, in attempt order, with the
// event source and the itinerary repository.
func NewItineraryService(chain []generativeAI.Provider, events EventSource, repo Repository, opts Options, logger *slog.Logger) *ServiceImpl {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Selector == nil {
		opts.Selector = DefaultCannedSelector
	}
	if opts.Mode == "" {
		opts.Mode = ModeLive
	}
	return &ServiceImpl{
		logger: logger,
		chain:  chain,
		events: events,
		repo:   repo,
		opts:   opts,
	}
}

// Compose turns candidate events into a validated itinerary. Provider
// failures never surface as errors: they are recovered by the deterministic
// fallback and reported through the warning code.
func (s *ServiceImpl) Compose(ctx context.Context, req ComposeRequest) (*types.ComposeResult, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Compose", trace.WithAttributes(
		attribute.String("city", req.City),
		attribute.String("date", req.Date),
		attribute.Int("candidates", len(req.Events)),
		attribute.String("mode", string(s.opts.Mode)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Compose"), slog.String("city", req.City), slog.String("date", req.Date))

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "context done before compose")
		return nil, fmt.Errorf("compose itinerary: %w", err)
	}

	if len(req.Events) == 0 {
		l.InfoContext(ctx, "No candidate events, using fallback")
		return s.finish(ctx, span, Fallback(nil), req.Events, types.WarningNoEventsFallback), nil
	}

	if s.opts.Mode == ModeCanned {
		raw := s.opts.Selector(req.Description)
		raw.Picks = firstIDs(req.Events, cannedPicks)
		l.DebugContext(ctx, "Serving canned itinerary")
		return s.finish(ctx, span, raw, req.Events, types.WarningNone), nil
	}

	prompt := BuildPrompt(req.City, req.Date, req.Events, req.Description)

	attemptCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var failures []attemptFailure
	for _, p := range s.chain {
		raw, err := s.attempt(attemptCtx, p, prompt)
		if err == nil {
			l.InfoContext(ctx, "Itinerary composed", slog.String("provider", p.Name()))
			span.SetAttributes(attribute.String("llm.provider", p.Name()))
			return s.finish(ctx, span, *raw, req.Events, types.WarningNone), nil
		}
		l.WarnContext(ctx, "Provider attempt failed", slog.String("provider", p.Name()), slog.Any("error", err))
		span.RecordError(err)
		failures = append(failures, attemptFailure{provider: p.Name(), err: err})
		if errors.Is(err, generativeAI.ErrTimeout) {
			break
		}
	}

	primary := ""
	if len(s.chain) > 0 {
		primary = s.chain[0].Name()
	}
	warning := warningFor(primary, failures)
	l.InfoContext(ctx, "All providers failed, using fallback", slog.String("warning", string(warning)))
	return s.finish(ctx, span, Fallback(req.Events), req.Events, warning), nil
}

// attempt runs one provider and validates its payload. A schema failure is
// that attempt's failure.
func (s *ServiceImpl) attempt(ctx context.Context, p generativeAI.Provider, prompt string) (*RawItinerary, error) {
	payload, err := p.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	raw, err := ValidateItinerary(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}
	return raw, nil
}

func (s *ServiceImpl) finish(ctx context.Context, span trace.Span, raw RawItinerary, candidates []types.Event, warning types.ItineraryWarning) *types.ComposeResult {
	result := &types.ComposeResult{
		Itinerary: Normalize(raw, candidates),
		Warning:   warning,
	}
	label := string(warning)
	if label == "" {
		label = "none"
	}
	metrics.Get().ItineraryComposeTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("warning", label)))
	span.SetAttributes(
		attribute.String("warning", label),
		attribute.Int("picks", len(result.Itinerary.Picks)),
	)
	span.SetStatus(codes.Ok, "itinerary composed")
	return result
}

type attemptFailure struct {
	provider string
	err      error
}

// warningFor picks the single warning for a run where no attempt succeeded.
// Precedence: timeout, quota, every attempt missing a credential, any
// transport failure, then the generic fallback code.
func warningFor(primary string, failures []attemptFailure) types.ItineraryWarning {
	if len(failures) == 0 {
		return types.WarningAIFallback
	}
	allMissing := true
	anyQuota, anyTransport := false, false
	for _, f := range failures {
		if errors.Is(f.err, generativeAI.ErrTimeout) {
			return types.WarningAITimeout
		}
		if generativeAI.IsQuotaExceeded(f.err) {
			anyQuota = true
		}
		if !errors.Is(f.err, generativeAI.ErrMissingCredential) {
			allMissing = false
		}
		if generativeAI.IsTransportFailure(f.err) {
			anyTransport = true
		}
	}
	switch {
	case anyQuota:
		return types.WarningAIQuota
	case allMissing:
		return types.NoKeyWarning(primary)
	case anyTransport:
		return types.WarningAIError
	default:
		return types.WarningAIFallback
	}
}

func firstIDs(events []types.Event, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < len(events) && i < n; i++ {
		ids = append(ids, events[i].ID)
	}
	return ids
}

// GenerateItinerary loads the candidates for the requested city and day,
// composes and persists the itinerary. A persistence failure is logged and
// the itinerary is returned without an id.
func (s *ServiceImpl) GenerateItinerary(ctx context.Context, req types.ItineraryRequest) (*types.ItineraryResponse, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GenerateItinerary", trace.WithAttributes(
		attribute.String("city", req.City),
		attribute.String("date", req.Date),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GenerateItinerary"), slog.String("city", req.City), slog.String("date", req.Date))
	l.DebugContext(ctx, "Generating itinerary")

	day, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid date")
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, types.ErrInvalidInput)
	}
	city := strings.TrimSpace(req.City)
	if city == "" {
		span.SetStatus(codes.Error, "missing city")
		return nil, fmt.Errorf("city is required: %w", types.ErrInvalidInput)
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = DefaultDescription
	}

	events, err := s.events.ListForDay(ctx, city, day)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load candidate events", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load events")
		return nil, fmt.Errorf("failed to load candidate events: %w", err)
	}

	result, err := s.Compose(ctx, ComposeRequest{
		City:        city,
		Date:        req.Date,
		Description: description,
		Events:      events,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compose failed")
		return nil, err
	}

	resp := &types.ItineraryResponse{
		Itinerary: result.Itinerary,
		Picks:     result.Itinerary.Picks,
		Warning:   result.Warning,
	}

	id, err := s.repo.SaveItinerary(ctx, SaveParams{
		City:        city,
		Date:        day,
		Description: description,
		Itinerary:   result.Itinerary,
	})
	if err != nil {
		l.ErrorContext(ctx, "Failed to persist itinerary", slog.Any("error", err))
		span.RecordError(err)
	} else {
		resp.ItineraryID = &id
	}

	l.InfoContext(ctx, "Itinerary generated", slog.Int("picks", len(resp.Picks)), slog.String("warning", string(resp.Warning)))
	span.SetStatus(codes.Ok, "itinerary generated")
	return resp, nil
}

// GetItinerary returns a persisted itinerary.
func (s *ServiceImpl) GetItinerary(ctx context.Context, id uuid.UUID) (*types.StoredItinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItinerary", trace.WithAttributes(
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetItinerary"), slog.String("itineraryID", id.String()))

	it, err := s.repo.GetItinerary(ctx, id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch itinerary")
		return nil, fmt.Errorf("error fetching itinerary: %w", err)
	}

	span.SetStatus(codes.Ok, "itinerary fetched")
	return it, nil
}
