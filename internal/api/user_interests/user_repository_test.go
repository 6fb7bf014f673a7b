package userInterest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/wahkip/internal/types"
)

func TestPostgresUserInterestRepo_Profiles(t *testing.T) {
	m, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer m.Close()
	repo := NewPostgresUserInterestRepo(m, testLogger)
	id := uuid.New()

	m.ExpectQuery(`INSERT INTO user_profiles .* ON CONFLICT \(session_id\)`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))
	got, err := repo.GetOrCreateProfile(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	m.ExpectQuery(`SELECT id FROM user_profiles WHERE session_id`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))
	got, err = repo.FindProfile(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	m.ExpectQuery(`SELECT id FROM user_profiles WHERE session_id`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.FindProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.NoError(t, m.ExpectationsWereMet())
}

func TestPostgresUserInterestRepo_ApplyInteraction(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name          string
		tags          []string
		setupMock     func(m pgxmock.PgxPoolIface)
		expectedError bool
	}{
		{
			name: "one upsert per tag occurrence",
			tags: []string{"music", "music", "art"},
			setupMock: func(m pgxmock.PgxPoolIface) {
				m.ExpectBegin()
				for _, tag := range []string{"music", "music", "art"} {
					m.ExpectExec(`INSERT INTO user_interests .* ON CONFLICT \(user_id, tag\) DO UPDATE`).
						WithArgs(userID, tag, 1.5, DecayFactor).
						WillReturnResult(pgxmock.NewResult("INSERT", 1))
				}
				m.ExpectCommit()
			},
		},
		{
			name: "rolls back on upsert failure",
			tags: []string{"music"},
			setupMock: func(m pgxmock.PgxPoolIface) {
				m.ExpectBegin()
				m.ExpectExec(`INSERT INTO user_interests`).
					WithArgs(userID, "music", 1.5, DecayFactor).
					WillReturnError(errors.New("deadlock detected"))
				m.ExpectRollback()
			},
			expectedError: true,
		},
		{
			name: "begin fails",
			tags: []string{"music"},
			setupMock: func(m pgxmock.PgxPoolIface) {
				m.ExpectBegin().WillReturnError(errors.New("pool exhausted"))
			},
			expectedError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer m.Close()
			tc.setupMock(m)

			repo := NewPostgresUserInterestRepo(m, testLogger)
			err = repo.ApplyInteraction(context.Background(), userID, tc.tags, 1.5, DecayFactor)
			if tc.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, m.ExpectationsWereMet())
		})
	}
}

func TestPostgresUserInterestRepo_GetInterests(t *testing.T) {
	m, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer m.Close()
	repo := NewPostgresUserInterestRepo(m, testLogger)

	userID := uuid.New()
	now := time.Now()
	m.ExpectQuery(`SELECT user_id, tag, weight, updated_at FROM user_interests`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "tag", "weight", "updated_at"}).
			AddRow(userID, "art", 0.5, now).
			AddRow(userID, "music", 1.925, now))

	got, err := repo.GetInterests(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "music", got[1].Tag)
	assert.InDelta(t, 1.925, got[1].Weight, 1e-9)

	m.ExpectQuery(`SELECT user_id, tag, weight, updated_at FROM user_interests`).
		WithArgs(userID).
		WillReturnError(errors.New("connection reset"))
	_, err = repo.GetInterests(context.Background(), userID)
	assert.Error(t, err)

	assert.NoError(t, m.ExpectationsWereMet())
}
