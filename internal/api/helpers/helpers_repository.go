package helpers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/wahkip/app/db"
	"github.com/FACorreiaa/wahkip/app/observability/metrics"
	"github.com/FACorreiaa/wahkip/internal/types"
)

// MaxSearchResults caps GET /helpers/search.
const MaxSearchResults = 20

const foreignKeyViolation = "23503"

var _ Repository = (*PostgresHelpersRepo)(nil)

type Repository interface {
	// Register inserts an unverified helper.
	Register(ctx context.Context, req types.RegisterHelperRequest) (uuid.UUID, error)
	// SearchVerified returns up to MaxSearchResults verified helpers.
	SearchVerified(ctx context.Context, q types.HelperSearchQuery) ([]types.Helper, error)
	// CreateReview attaches the review to the session's profile when one
	// exists. An unknown helper is ErrNotFound.
	CreateReview(ctx context.Context, helperID uuid.UUID, rating int, comment *string, sessionID string) (*types.HelperReview, error)
	ListReviews(ctx context.Context, helperID uuid.UUID) ([]types.HelperReview, error)
}

type PostgresHelpersRepo struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewPostgresHelpersRepo(pgpool database.Querier, logger *slog.Logger) *PostgresHelpersRepo {
	return &PostgresHelpersRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresHelpersRepo) Register(ctx context.Context, req types.RegisterHelperRequest) (uuid.UUID, error) {
	ctx, span := otel.Tracer("HelpersRepo").Start(ctx, "Register", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "helpers"),
		attribute.String("city", req.City),
	))
	defer span.End()

	langs, skills := req.Langs, req.Skills
	if langs == nil {
		langs = []string{}
	}
	if skills == nil {
		skills = []string{}
	}

	start := time.Now()
	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx, `
		INSERT INTO helpers (name, city, langs, skills, rate_min, rate_max, phone, whatsapp, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false)
		RETURNING id`,
		req.Name, req.City, langs, skills, req.RateMin, req.RateMax, req.Phone, req.Whatsapp,
	).Scan(&id)
	metrics.ObserveDBQuery(ctx, "helpers", "INSERT", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert helper", slog.String("method", "Register"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return uuid.Nil, fmt.Errorf("database error registering helper: %w", err)
	}

	span.SetStatus(codes.Ok, "Helper registered")
	return id, nil
}

func (r *PostgresHelpersRepo) SearchVerified(ctx context.Context, q types.HelperSearchQuery) ([]types.Helper, error) {
	ctx, span := otel.Tracer("HelpersRepo").Start(ctx, "SearchVerified", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "helpers"),
		attribute.String("city", q.City),
		attribute.StringSlice("skills", q.Skills),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "SearchVerified"))
	start := time.Now()

	// Empty filters match everything: '' city and an empty skills array.
	rows, err := r.pgpool.Query(ctx, `
		SELECT id, name, city, langs, skills, rate_min, rate_max, phone, whatsapp, verified, created_at
		FROM helpers
		WHERE verified
		  AND ($1::text = '' OR city = $1)
		  AND skills @> $2
		ORDER BY created_at DESC
		LIMIT $3`,
		q.City, nonNil(q.Skills), MaxSearchResults)
	if err != nil {
		l.ErrorContext(ctx, "Failed to query helpers", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		metrics.ObserveDBQuery(ctx, "helpers", "SELECT", start, err)
		return nil, fmt.Errorf("database error searching helpers: %w", err)
	}
	defer rows.Close()

	items := []types.Helper{}
	for rows.Next() {
		var h types.Helper
		if err := rows.Scan(&h.ID, &h.Name, &h.City, &h.Langs, &h.Skills, &h.RateMin, &h.RateMax,
			&h.Phone, &h.Whatsapp, &h.Verified, &h.CreatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "DB scan failed")
			metrics.ObserveDBQuery(ctx, "helpers", "SELECT", start, err)
			return nil, fmt.Errorf("database error scanning helper: %w", err)
		}
		h.Langs, h.Skills = nonNil(h.Langs), nonNil(h.Skills)
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB rows error")
		metrics.ObserveDBQuery(ctx, "helpers", "SELECT", start, err)
		return nil, fmt.Errorf("database error iterating helpers: %w", err)
	}

	metrics.ObserveDBQuery(ctx, "helpers", "SELECT", start, nil)
	span.SetAttributes(attribute.Int("results.count", len(items)))
	span.SetStatus(codes.Ok, "Helpers searched")
	return items, nil
}

func (r *PostgresHelpersRepo) CreateReview(ctx context.Context, helperID uuid.UUID, rating int, comment *string, sessionID string) (*types.HelperReview, error) {
	ctx, span := otel.Tracer("HelpersRepo").Start(ctx, "CreateReview", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "helper_reviews"),
		attribute.String("helper.id", helperID.String()),
	))
	defer span.End()

	start := time.Now()
	var rv types.HelperReview
	err := r.pgpool.QueryRow(ctx, `
		INSERT INTO helper_reviews (helper_id, user_id, rating, comment)
		VALUES ($1, (SELECT id FROM user_profiles WHERE session_id = $2), $3, $4)
		RETURNING id, helper_id, user_id, rating, comment, created_at`,
		helperID, sessionID, rating, comment,
	).Scan(&rv.ID, &rv.HelperID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	metrics.ObserveDBQuery(ctx, "helper_reviews", "INSERT", start, err)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		span.SetStatus(codes.Error, "Unknown helper")
		return nil, fmt.Errorf("helper %s: %w", helperID, types.ErrNotFound)
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert review", slog.String("method", "CreateReview"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB INSERT failed")
		return nil, fmt.Errorf("database error creating review: %w", err)
	}

	span.SetStatus(codes.Ok, "Review created")
	return &rv, nil
}

func (r *PostgresHelpersRepo) ListReviews(ctx context.Context, helperID uuid.UUID) ([]types.HelperReview, error) {
	ctx, span := otel.Tracer("HelpersRepo").Start(ctx, "ListReviews", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "helper_reviews"),
		attribute.String("helper.id", helperID.String()),
	))
	defer span.End()

	start := time.Now()
	rows, err := r.pgpool.Query(ctx, `
		SELECT id, helper_id, user_id, rating, comment, created_at
		FROM helper_reviews
		WHERE helper_id = $1
		ORDER BY created_at DESC`, helperID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query reviews", slog.String("method", "ListReviews"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		metrics.ObserveDBQuery(ctx, "helper_reviews", "SELECT", start, err)
		return nil, fmt.Errorf("database error listing reviews: %w", err)
	}

	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.HelperReview, error) {
		var rv types.HelperReview
		err := row.Scan(&rv.ID, &rv.HelperID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
		return rv, err
	})
	metrics.ObserveDBQuery(ctx, "helper_reviews", "SELECT", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB scan failed")
		return nil, fmt.Errorf("database error scanning reviews: %w", err)
	}
	if reviews == nil {
		reviews = []types.HelperReview{}
	}

	span.SetAttributes(attribute.Int("results.count", len(reviews)))
	span.SetStatus(codes.Ok, "Reviews listed")
	return reviews, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
