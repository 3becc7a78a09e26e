package watchhistory

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/videotube/userhub/internal/http/middlewarectx"
	"github.com/videotube/userhub/internal/models"
)

// MockService реализует интерфейс watchhistory.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) WatchHistory(ctx context.Context, userUID string) ([]*models.WatchHistoryEntry, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WatchHistoryEntry), args.Error(1)
}

func TestWatchHistoryHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное чтение истории",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("WatchHistory", mock.Anything, "uid-1").Return([]*models.WatchHistoryEntry{
					{VideoUID: "vid-1", Title: "first video",
						Owner: models.VideoOwner{Username: "nova", FullName: "Nova Star"}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"first video"`,
		},
		{
			name:    "пустая история",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("WatchHistory", mock.Anything, "uid-1").
					Return([]*models.WatchHistoryEntry{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "нет идентификации пользователя",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"user identification missing"`,
		},
		{
			name:    "ошибка сервиса",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("WatchHistory", mock.Anything, "uid-1").
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"internal server error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/users/watch-history", nil)
			if tt.userUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
