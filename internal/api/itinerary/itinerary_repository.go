package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/wahkip/app/db"
	"github.com/FACorreiaa/wahkip/app/observability/metrics"
	"github.com/FACorreiaa/wahkip/internal/types"
)

var _ Repository = (*PostgresItineraryRepo)(nil)

type Repository interface {
	// SaveItinerary stores the request and its itinerary in one transaction
	// and returns the itinerary id.
	SaveItinerary(ctx context.Context, params SaveParams) (uuid.UUID, error)
	// GetItinerary returns ErrNotFound when no itinerary has the id.
	GetItinerary(ctx context.Context, id uuid.UUID) (*types.StoredItinerary, error)
}

// SaveParams is the data persisted for one composition.
type SaveParams struct {
	City        string
	Date        time.Time
	Description string
	Interests   []string
	Itinerary   types.Itinerary
}

type PostgresItineraryRepo struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewPostgresItineraryRepo(pgpool database.Querier, logger *slog.Logger) *PostgresItineraryRepo {
	return &PostgresItineraryRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresItineraryRepo) SaveItinerary(ctx context.Context, params SaveParams) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "SaveItinerary", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "itineraries"),
		attribute.String("city", params.City),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "SaveItinerary"), slog.String("city", params.City))
	start := time.Now()

	body, err := json.Marshal(params.Itinerary)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal failed")
		return uuid.Nil, fmt.Errorf("failed to encode itinerary: %w", err)
	}
	interests := params.Interests
	if interests == nil {
		interests = []string{}
	}
	picks := params.Itinerary.Picks
	if picks == nil {
		picks = []string{}
	}

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB transaction failed")
		metrics.ObserveDBQuery(ctx, "itineraries", "INSERT", start, err)
		return uuid.Nil, fmt.Errorf("database error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var requestID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO itinerary_requests (city, date, interests, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		params.City, params.Date, interests, params.Description,
	).Scan(&requestID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert itinerary request", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT itinerary_requests failed")
		metrics.ObserveDBQuery(ctx, "itineraries", "INSERT", start, err)
		return uuid.Nil, fmt.Errorf("database error inserting itinerary request: %w", err)
	}

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO itineraries (request_id, json, picks)
		VALUES ($1, $2, $3)
		RETURNING id`,
		requestID, body, picks,
	).Scan(&id)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT itineraries failed")
		metrics.ObserveDBQuery(ctx, "itineraries", "INSERT", start, err)
		return uuid.Nil, fmt.Errorf("database error inserting itinerary: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		l.ErrorContext(ctx, "Failed to commit itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB commit failed")
		metrics.ObserveDBQuery(ctx, "itineraries", "INSERT", start, err)
		return uuid.Nil, fmt.Errorf("database error committing itinerary: %w", err)
	}

	metrics.ObserveDBQuery(ctx, "itineraries", "INSERT", start, nil)
	l.DebugContext(ctx, "Itinerary saved", slog.String("itineraryID", id.String()), slog.String("requestID", requestID.String()))
	span.SetAttributes(attribute.String("itinerary.id", id.String()))
	span.SetStatus(codes.Ok, "Itinerary saved")
	return id, nil
}

func (r *PostgresItineraryRepo) GetItinerary(ctx context.Context, id uuid.UUID) (*types.StoredItinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepo").Start(ctx, "GetItinerary", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "itineraries"),
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetItinerary"), slog.String("itineraryID", id.String()))
	start := time.Now()

	var it types.StoredItinerary
	var body []byte
	err := r.pgpool.QueryRow(ctx, `
		SELECT id, request_id, json, picks, created_at
		FROM itineraries
		WHERE id = $1`, id,
	).Scan(&it.ID, &it.RequestID, &body, &it.Picks, &it.CreatedAt)
	metrics.ObserveDBQuery(ctx, "itineraries", "SELECT", start, ignoreNoRows(err))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			l.WarnContext(ctx, "Itinerary not found")
			span.SetStatus(codes.Error, "Itinerary not found")
			return nil, fmt.Errorf("itinerary not found: %w", types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to query itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return nil, fmt.Errorf("database error fetching itinerary: %w", err)
	}
	it.JSON = json.RawMessage(body)
	if it.Picks == nil {
		it.Picks = []string{}
	}

	span.SetStatus(codes.Ok, "Itinerary fetched")
	return &it, nil
}

func ignoreNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}
