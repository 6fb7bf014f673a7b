package events

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

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

// MaxDayCandidates caps the events loaded for one city and day.
const MaxDayCandidates = 50

var _ Repository = (*PostgresEventsRepo)(nil)

type Repository interface {
	Search(ctx context.Context, filter types.EventFilter) ([]types.Event, int, error)
	// ListForDay returns up to limit events starting within [from, to],
	// ascending by start time.
	ListForDay(ctx context.Context, city string, from, to time.Time, limit int) ([]types.Event, error)
	Create(ctx context.Context, req types.CreateEventRequest) (string, error)
}

type PostgresEventsRepo struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewPostgresEventsRepo(pgpool database.Querier, logger *slog.Logger) *PostgresEventsRepo {
	return &PostgresEventsRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const eventColumns = `id::text, venue_id::text, title, description, date_start, date_end,
	tags, city, image_url, capacity, created_at`

func scanEvent(row pgx.Row, extra ...any) (types.Event, error) {
	var e types.Event
	var capacity *string
	dest := []any{
		&e.ID, &e.VenueID, &e.Title, &e.Description, &e.DateStart, &e.DateEnd,
		&e.Tags, &e.City, &e.ImageURL, &capacity, &e.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return e, err
	}
	if capacity != nil {
		c := types.EventCapacity(*capacity)
		e.Capacity = &c
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e, nil
}

// Search applies the filter and returns one page plus the total match count.
func (r *PostgresEventsRepo) Search(ctx context.Context, filter types.EventFilter) ([]types.Event, int, error) {
	ctx, span := otel.Tracer("EventsRepo").Start(ctx, "Search", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "events"),
		attribute.String("city", filter.City),
		attribute.Int("page", filter.Page),
		attribute.Int("limit", filter.Limit),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Search"), slog.String("city", filter.City))
	start := time.Now()

	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.City != "" {
		add("city = $%d", filter.City)
	}
	if filter.From != nil {
		add("date_start >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("date_start <= $%d", *filter.To)
	}
	if len(filter.Tags) > 0 {
		add("tags @> $%d", filter.Tags)
	}
	if filter.Query != "" {
		add("to_tsvector('simple', title) @@ plainto_tsquery('simple', $%d)", filter.Query)
	}

	query := "SELECT " + eventColumns + ", COUNT(*) OVER() FROM events"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query += fmt.Sprintf(" ORDER BY date_start ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query events", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		metrics.ObserveDBQuery(ctx, "events", "SELECT", start, err)
		return nil, 0, fmt.Errorf("database error searching events: %w", err)
	}
	defer rows.Close()

	items := []types.Event{}
	total := 0
	for rows.Next() {
		var count int64
		e, err := scanEvent(rows, &count)
		if err != nil {
			l.ErrorContext(ctx, "Failed to scan event row", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "DB scan failed")
			metrics.ObserveDBQuery(ctx, "events", "SELECT", start, err)
			return nil, 0, fmt.Errorf("database error scanning event: %w", err)
		}
		total = int(count)
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB rows error")
		metrics.ObserveDBQuery(ctx, "events", "SELECT", start, err)
		return nil, 0, fmt.Errorf("database error iterating events: %w", err)
	}

	metrics.ObserveDBQuery(ctx, "events", "SELECT", start, nil)
	l.DebugContext(ctx, "Events searched", slog.Int("count", len(items)), slog.Int("total", total))
	span.SetStatus(codes.Ok, "Events searched")
	return items, total, nil
}

func (r *PostgresEventsRepo) ListForDay(ctx context.Context, city string, from, to time.Time, limit int) ([]types.Event, error) {
	ctx, span := otel.Tracer("EventsRepo").Start(ctx, "ListForDay", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "events"),
		attribute.String("city", city),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "ListForDay"), slog.String("city", city))
	start := time.Now()

	rows, err := r.pgpool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE city = $1 AND date_start >= $2 AND date_start <= $3
		ORDER BY date_start ASC
		LIMIT $4`, city, from, to, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query day events", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		metrics.ObserveDBQuery(ctx, "events", "SELECT", start, err)
		return nil, fmt.Errorf("database error listing events: %w", err)
	}
	defer rows.Close()

	items := []types.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "DB scan failed")
			metrics.ObserveDBQuery(ctx, "events", "SELECT", start, err)
			return nil, fmt.Errorf("database error scanning event: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB rows error")
		metrics.ObserveDBQuery(ctx, "events", "SELECT", start, err)
		return nil, fmt.Errorf("database error iterating events: %w", err)
	}

	metrics.ObserveDBQuery(ctx, "events", "SELECT", start, nil)
	span.SetAttributes(attribute.Int("events.count", len(items)))
	span.SetStatus(codes.Ok, "Day events listed")
	return items, nil
}

func (r *PostgresEventsRepo) Create(ctx context.Context, req types.CreateEventRequest) (string, error) {
	ctx, span := otel.Tracer("EventsRepo").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "events"),
		attribute.String("city", req.City),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Create"), slog.String("city", req.City))
	start := time.Now()

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	var id string
	err := r.pgpool.QueryRow(ctx, `
		INSERT INTO events (title, description, date_start, date_end, city, tags, capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text`,
		req.Title, req.Description, req.DateStart, req.DateEnd, req.City, tags, req.Capacity,
	).Scan(&id)
	metrics.ObserveDBQuery(ctx, "events", "INSERT", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to insert event", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return "", fmt.Errorf("database error creating event: %w", err)
	}

	l.InfoContext(ctx, "Event created", slog.String("eventID", id))
	span.SetStatus(codes.Ok, "Event created")
	return id, nil
}
