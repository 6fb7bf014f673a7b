package recommendations

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/wahkip/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockEventSearcher struct {
	mock.Mock
}

func (m *MockEventSearcher) Search(ctx context.Context, filter types.EventFilter) (*types.EventsPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.EventsPage), args.Error(1)
}

type MockVectorSource struct {
	mock.Mock
}

func (m *MockVectorSource) GetUserVector(ctx context.Context, sessionID string) (types.TagVector, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(types.TagVector), args.Error(1)
}

func TestServiceImpl_Recommend(t *testing.T) {
	events := []types.Event{
		{ID: "e1", Tags: []string{"food"}},
		{ID: "e2", Tags: []string{"music"}},
	}

	tests := []struct {
		name          string
		query         types.RecommendationsQuery
		setupMock     func(es *MockEventSearcher, vs *MockVectorSource)
		expectedIDs   []string
		expectedError bool
	}{
		{
			name:  "defaults city and session",
			query: types.RecommendationsQuery{},
			setupMock: func(es *MockEventSearcher, vs *MockVectorSource) {
				es.On("Search", mock.Anything, mock.MatchedBy(func(f types.EventFilter) bool {
					return f.City == DefaultCity && f.Limit == MaxCandidates && f.From == nil
				})).Return(&types.EventsPage{Items: events}, nil)
				vs.On("GetUserVector", mock.Anything, DefaultSessionID).Return(types.TagVector{"music": 1.5}, nil)
			},
			expectedIDs: []string{"e2", "e1"},
		},
		{
			name:  "date restricts to that day",
			query: types.RecommendationsQuery{City: "Kingston", Date: "2025-06-01", SessionID: "s1"},
			setupMock: func(es *MockEventSearcher, vs *MockVectorSource) {
				es.On("Search", mock.Anything, mock.MatchedBy(func(f types.EventFilter) bool {
					return f.From != nil && f.From.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) &&
						f.To != nil && f.To.Day() == 1
				})).Return(&types.EventsPage{Items: events}, nil)
				vs.On("GetUserVector", mock.Anything, "s1").Return(types.TagVector{}, nil)
			},
			expectedIDs: []string{"e1", "e2"},
		},
		{
			name:  "no events",
			query: types.RecommendationsQuery{City: "Ocho Rios"},
			setupMock: func(es *MockEventSearcher, vs *MockVectorSource) {
				es.On("Search", mock.Anything, mock.Anything).Return(&types.EventsPage{Items: []types.Event{}}, nil)
				vs.On("GetUserVector", mock.Anything, DefaultSessionID).Return(types.TagVector{"music": 1}, nil)
			},
			expectedIDs: []string{},
		},
		{
			name:  "vector lookup fails",
			query: types.RecommendationsQuery{},
			setupMock: func(es *MockEventSearcher, vs *MockVectorSource) {
				es.On("Search", mock.Anything, mock.Anything).Return(&types.EventsPage{Items: events}, nil).Maybe()
				vs.On("GetUserVector", mock.Anything, DefaultSessionID).Return(nil, errors.New("db down"))
			},
			expectedError: true,
		},
		{
			name:          "bad date",
			query:         types.RecommendationsQuery{Date: "tomorrow"},
			setupMock:     func(*MockEventSearcher, *MockVectorSource) {},
			expectedError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			es := &MockEventSearcher{}
			vs := &MockVectorSource{}
			tc.setupMock(es, vs)

			svc := NewRecommendationsService(es, vs, testLogger)
			resp, err := svc.Recommend(context.Background(), tc.query)
			if tc.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			ids := make([]string, 0, len(resp.Items))
			for _, m := range resp.Items {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tc.expectedIDs, ids)
			es.AssertExpectations(t)
			vs.AssertExpectations(t)
		})
	}
}

type stubService struct {
	got types.RecommendationsQuery
	err error
}

func (s *stubService) Recommend(_ context.Context, q types.RecommendationsQuery) (*types.RecommendationsResponse, error) {
	s.got = q
	if s.err != nil {
		return nil, s.err
	}
	return &types.RecommendationsResponse{Items: []types.Match{}}, nil
}

func TestHandlerImpl_GetRecommendations(t *testing.T) {
	svc := &stubService{}
	h := NewHandlerImpl(svc, testLogger)

	rec := httptest.NewRecorder()
	h.GetRecommendations(rec, httptest.NewRequest(http.MethodGet, "/recommendations?city=Kingston&session_id=s1&explain=true", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.RecommendationsQuery{City: "Kingston", SessionID: "s1", Explain: true}, svc.got)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())

	svc.err = types.ErrInvalidInput
	rec = httptest.NewRecorder()
	h.GetRecommendations(rec, httptest.NewRequest(http.MethodGet, "/recommendations?date=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
