package generativeAI

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/wahkip/app/observability/metrics"
)

// Provider is a hosted text-generation endpoint that answers a prompt with a
// JSON value.
type Provider interface {
	Name() string
	Configured() bool
	Generate(ctx context.Context, prompt string) (json.RawMessage, error)
}

var _ Provider = (*Client)(nil)

// sendFunc performs one request against a provider and returns the raw text
// found in its response envelope. Failures must already be mapped to
// *ProviderError.
type sendFunc func(ctx context.Context, prompt string) (string, error)

// Client runs the shared extract, strip and parse pipeline around a
// provider-specific send function.
type Client struct {
	name       string
	model      string
	configured bool
	send       sendFunc
	breaker    *gobreaker.CircuitBreaker[string]
	logger     *slog.Logger
}

func newClient(name, model string, configured bool, send sendFunc, bc BreakerConfig, logger *slog.Logger) *Client {
	c := &Client{
		name:       name,
		model:      model,
		configured: configured,
		send:       send,
		logger:     logger.With(slog.String("provider", name)),
	}
	c.breaker = newBreaker(name, bc, c.logger)
	return c
}

func (c *Client) Name() string { return c.name }

func (c *Client) Configured() bool { return c.configured }

// Generate issues exactly one request to the provider. It returns the parsed
// JSON payload, or one of ErrMissingCredential, *ProviderError,
// ErrEmptyResponse, *MalformedJSONError, ErrTimeout or ErrCircuitOpen.
func (c *Client) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("llm.provider", c.name),
		attribute.String("llm.model", c.model),
		attribute.Int("prompt.length", len(prompt)),
	))
	defer span.End()

	l := c.logger.With(slog.String("method", "Generate"))

	if !c.configured {
		span.SetStatus(codes.Error, "credential missing")
		c.observe(ctx, "missing_credential", 0)
		return nil, fmt.Errorf("%s: %w", c.name, ErrMissingCredential)
	}

	start := time.Now()
	text, err := c.breaker.Execute(func() (text string, err error) {
		// SDK error decoding can panic on bodies outside the vendor's error shape.
		defer func() {
			if r := recover(); r != nil {
				err = &ProviderError{Provider: c.name, Err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		return c.send(ctx, prompt)
	})
	elapsed := time.Since(start)
	if err != nil {
		err = c.classify(ctx, err)
		l.WarnContext(ctx, "Provider call failed", slog.Any("error", err), slog.Duration("elapsed", elapsed))
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
		c.observe(ctx, outcome(err), elapsed)
		return nil, err
	}

	raw, err := parsePayload(c.name, text)
	if err != nil {
		l.WarnContext(ctx, "Provider payload rejected", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "payload rejected")
		c.observe(ctx, outcome(err), elapsed)
		return nil, err
	}

	l.DebugContext(ctx, "Provider call succeeded", slog.Duration("elapsed", elapsed), slog.Int("payload.length", len(raw)))
	span.SetAttributes(attribute.Int("response.length", len(raw)))
	span.SetStatus(codes.Ok, "payload parsed")
	c.observe(ctx, "ok", elapsed)
	return raw, nil
}

// classify maps an error from the breaker or the send function onto the
// provider taxonomy. A fired context always wins.
func (c *Client) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w: %w", c.name, ErrTimeout, ctx.Err())
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w", c.name, ErrCircuitOpen)
	}
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return err
	}
	return &ProviderError{Provider: c.name, Err: err}
}

func (c *Client) observe(ctx context.Context, result string, elapsed time.Duration) {
	m := metrics.Get()
	attrs := metric.WithAttributes(
		attribute.String("provider", c.name),
		attribute.String("outcome", result),
	)
	m.ProviderCallsTotal.Add(ctx, 1, attrs)
	if elapsed > 0 {
		m.ProviderDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
	}
}

func outcome(err error) string {
	var mErr *MalformedJSONError
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case IsQuotaExceeded(err):
		return "quota"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	case errors.As(err, &mErr):
		return "malformed"
	default:
		return "error"
	}
}

// parsePayload strips code fences from text and parses what remains.
func parsePayload(provider, text string) (json.RawMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%s: %w", provider, ErrEmptyResponse)
	}
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(StripCodeFences(text)), &raw); err != nil {
		return nil, &MalformedJSONError{Provider: provider, Err: err}
	}
	return raw, nil
}

// StripCodeFences removes a leading ```json or ``` marker and a trailing ```
// marker from s. Applying it twice yields the same result as applying it once.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := s
		if strings.HasPrefix(trimmed, "```") {
			trimmed = strings.TrimPrefix(trimmed, "```")
			if len(trimmed) >= 4 && strings.EqualFold(trimmed[:4], "json") {
				trimmed = trimmed[4:]
			}
		}
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}
