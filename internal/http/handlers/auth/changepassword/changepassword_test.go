package changepassword

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/videotube/userhub/internal/http/middlewarectx"
	services "github.com/videotube/userhub/internal/services/auth"
)

// MockService реализует интерфейс changepassword.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ChangePassword(ctx context.Context, userUID, oldPassword, newPassword string) error {
	args := m.Called(ctx, userUID, oldPassword, newPassword)
	return args.Error(0)
}

func TestChangePasswordHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		userUID        string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешная смена пароля",
			userUID: "uid-1",
			body:    `{"oldPassword":"p@ssword","newPassword":"n3w-p@ss"}`,
			setupMock: func(m *MockService) {
				m.On("ChangePassword", mock.Anything, "uid-1", "p@ssword", "n3w-p@ss").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"message":"password changed"`,
		},
		{
			name:    "старый пароль не подошел",
			userUID: "uid-1",
			body:    `{"oldPassword":"wrongpass","newPassword":"n3w-p@ss"}`,
			setupMock: func(m *MockService) {
				m.On("ChangePassword", mock.Anything, "uid-1", "wrongpass", "n3w-p@ss").
					Return(services.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"invalid old password"`,
		},
		{
			name:           "короткий новый пароль",
			userUID:        "uid-1",
			body:           `{"oldPassword":"p@ssword","newPassword":"abc"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field NewPassword is too short`,
		},
		{
			name:           "нет идентификации пользователя",
			body:           `{"oldPassword":"p@ssword","newPassword":"n3w-p@ss"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"user identification missing"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/users/change-password", strings.NewReader(tt.body))
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
