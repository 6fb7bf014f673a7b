package userInterest

import (
	"context"
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

var _ UserInterestRepo = (*PostgresUserInterestRepo)(nil)

type UserInterestRepo interface {
	// GetOrCreateProfile returns the profile id bound to sessionID, creating
	// the profile on first use.
	GetOrCreateProfile(ctx context.Context, sessionID string) (uuid.UUID, error)
	// FindProfile returns ErrNotFound when the session has no profile.
	FindProfile(ctx context.Context, sessionID string) (uuid.UUID, error)
	// ApplyInteraction folds weight into every tag occurrence, in order, as
	// weight' = weight*decay + w. A missing row starts at w.
	ApplyInteraction(ctx context.Context, userID uuid.UUID, tags []string, w, decay float64) error
	GetInterests(ctx context.Context, userID uuid.UUID) ([]types.UserInterest, error)
}

type PostgresUserInterestRepo struct {
	logger *slog.Logger
	pgpool database.Querier
}

func NewPostgresUserInterestRepo(pgpool database.Querier, logger *slog.Logger) *PostgresUserInterestRepo {
	return &PostgresUserInterestRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresUserInterestRepo) GetOrCreateProfile(ctx context.Context, sessionID string) (uuid.UUID, error) {
	ctx, span := otel.Tracer("UserInterestRepo").Start(ctx, "GetOrCreateProfile", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.sql.table", "user_profiles"),
	))
	defer span.End()

	start := time.Now()
	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx, `
		INSERT INTO user_profiles (session_id)
		VALUES ($1)
		ON CONFLICT (session_id) DO UPDATE SET session_id = EXCLUDED.session_id
		RETURNING id`, sessionID,
	).Scan(&id)
	metrics.ObserveDBQuery(ctx, "user_profiles", "UPSERT", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to resolve user profile", slog.String("method", "GetOrCreateProfile"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPSERT failed")
		return uuid.Nil, fmt.Errorf("database error resolving profile: %w", err)
	}

	span.SetAttributes(attribute.String("db.user.id", id.String()))
	span.SetStatus(codes.Ok, "Profile resolved")
	return id, nil
}

func (r *PostgresUserInterestRepo) FindProfile(ctx context.Context, sessionID string) (uuid.UUID, error) {
	ctx, span := otel.Tracer("UserInterestRepo").Start(ctx, "FindProfile", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "user_profiles"),
	))
	defer span.End()

	start := time.Now()
	var id uuid.UUID
	err := r.pgpool.QueryRow(ctx, `SELECT id FROM user_profiles WHERE session_id = $1`, sessionID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveDBQuery(ctx, "user_profiles", "SELECT", start, nil)
		span.SetStatus(codes.Ok, "No profile")
		return uuid.Nil, fmt.Errorf("profile not found: %w", types.ErrNotFound)
	}
	metrics.ObserveDBQuery(ctx, "user_profiles", "SELECT", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query user profile", slog.String("method", "FindProfile"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		return uuid.Nil, fmt.Errorf("database error fetching profile: %w", err)
	}

	span.SetStatus(codes.Ok, "Profile found")
	return id, nil
}

// ApplyInteraction runs one upsert per tag occurrence inside a transaction.
// The blend is computed by Postgres on the locked row, so concurrent
// interactions on the same (user, tag) serialize instead of losing updates.
func (r *PostgresUserInterestRepo) ApplyInteraction(ctx context.Context, userID uuid.UUID, tags []string, w, decay float64) error {
	ctx, span := otel.Tracer("UserInterestRepo").Start(ctx, "ApplyInteraction", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.sql.table", "user_interests"),
		attribute.String("db.user.id", userID.String()),
		attribute.Int("tags.count", len(tags)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "ApplyInteraction"), slog.String("userID", userID.String()))
	start := time.Now()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB transaction failed")
		metrics.ObserveDBQuery(ctx, "user_interests", "UPSERT", start, err)
		return fmt.Errorf("database error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, tag := range tags {
		_, err = tx.Exec(ctx, `
			INSERT INTO user_interests (user_id, tag, weight, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (user_id, tag) DO UPDATE
			SET weight = user_interests.weight * $4 + EXCLUDED.weight,
			    updated_at = now()`,
			userID, tag, w, decay)
		if err != nil {
			l.ErrorContext(ctx, "Failed to upsert interest", slog.String("tag", tag), slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "DB UPSERT failed")
			metrics.ObserveDBQuery(ctx, "user_interests", "UPSERT", start, err)
			return fmt.Errorf("database error updating interest %q: %w", tag, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		l.ErrorContext(ctx, "Failed to commit interests", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB commit failed")
		metrics.ObserveDBQuery(ctx, "user_interests", "UPSERT", start, err)
		return fmt.Errorf("database error committing interests: %w", err)
	}

	metrics.ObserveDBQuery(ctx, "user_interests", "UPSERT", start, nil)
	span.SetStatus(codes.Ok, "Interests updated")
	return nil
}

func (r *PostgresUserInterestRepo) GetInterests(ctx context.Context, userID uuid.UUID) ([]types.UserInterest, error) {
	ctx, span := otel.Tracer("UserInterestRepo").Start(ctx, "GetInterests", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "user_interests"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	start := time.Now()
	rows, err := r.pgpool.Query(ctx, `
		SELECT user_id, tag, weight, updated_at
		FROM user_interests
		WHERE user_id = $1
		ORDER BY tag`, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query interests", slog.String("method", "GetInterests"), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB SELECT failed")
		metrics.ObserveDBQuery(ctx, "user_interests", "SELECT", start, err)
		return nil, fmt.Errorf("database error fetching interests: %w", err)
	}
	defer rows.Close()

	interests := []types.UserInterest{}
	for rows.Next() {
		var in types.UserInterest
		if err := rows.Scan(&in.UserID, &in.Tag, &in.Weight, &in.UpdatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "DB scan failed")
			metrics.ObserveDBQuery(ctx, "user_interests", "SELECT", start, err)
			return nil, fmt.Errorf("database error scanning interest: %w", err)
		}
		interests = append(interests, in)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB rows error")
		metrics.ObserveDBQuery(ctx, "user_interests", "SELECT", start, err)
		return nil, fmt.Errorf("database error iterating interests: %w", err)
	}

	metrics.ObserveDBQuery(ctx, "user_interests", "SELECT", start, nil)
	span.SetStatus(codes.Ok, "Interests fetched")
	return interests, nil
}
