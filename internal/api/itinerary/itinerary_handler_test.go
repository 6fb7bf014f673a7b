package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/wahkip/internal/types"
)

type MockItineraryService struct {
	mock.Mock
}

func (m *MockItineraryService) Compose(ctx context.Context, req ComposeRequest) (*types.ComposeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ComposeResult), args.Error(1)
}

func (m *MockItineraryService) GenerateItinerary(ctx context.Context, req types.ItineraryRequest) (*types.ItineraryResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ItineraryResponse), args.Error(1)
}

func (m *MockItineraryService) GetItinerary(ctx context.Context, id uuid.UUID) (*types.StoredItinerary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.StoredItinerary), args.Error(1)
}

func TestHandlerImpl_GenerateItinerary(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		body           string
		setupMock      func(s *MockItineraryService)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"city":"Kingston","date":"2025-06-01","description":"music"}`,
			setupMock: func(s *MockItineraryService) {
				s.On("GenerateItinerary", mock.Anything, types.ItineraryRequest{City: "Kingston", Date: "2025-06-01", Description: "music"}).
					Return(&types.ItineraryResponse{Picks: []string{"e1"}, ItineraryID: &id, Warning: types.WarningAIFallback}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing city",
			body:           `{"date":"2025-06-01"}`,
			setupMock:      func(*MockItineraryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad date format",
			body:           `{"city":"Kingston","date":"June 1"}`,
			setupMock:      func(*MockItineraryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown field",
			body:           `{"city":"Kingston","date":"2025-06-01","budget":3}`,
			setupMock:      func(*MockItineraryService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "service failure",
			body: `{"city":"Kingston","date":"2025-06-01"}`,
			setupMock: func(s *MockItineraryService) {
				s.On("GenerateItinerary", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &MockItineraryService{}
			tc.setupMock(svc)
			h := NewHandlerImpl(svc, testLogger)

			req := httptest.NewRequest(http.MethodPost, "/itinerary", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.GenerateItinerary(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)
			if tc.expectedStatus == http.StatusOK {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, id.String(), resp["itinerary_id"])
				assert.Equal(t, "AI_FALLBACK", resp["warning"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandlerImpl_GetItinerary(t *testing.T) {
	id := uuid.New()
	svc := &MockItineraryService{}
	svc.On("GetItinerary", mock.Anything, id).Return(&types.StoredItinerary{ID: id, JSON: json.RawMessage(`{}`)}, nil)
	missing := uuid.New()
	svc.On("GetItinerary", mock.Anything, missing).Return(nil, types.ErrNotFound)

	r := chi.NewRouter()
	r.Get("/itinerary/{id}", NewHandlerImpl(svc, testLogger).GetItinerary)

	tests := []struct {
		path   string
		status int
	}{
		{"/itinerary/" + id.String(), http.StatusOK},
		{"/itinerary/" + missing.String(), http.StatusNotFound},
		{"/itinerary/not-a-uuid", http.StatusBadRequest},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, rec.Code, tc.path)
	}
}
