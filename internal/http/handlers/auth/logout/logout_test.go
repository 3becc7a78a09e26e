package logout

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/videotube/userhub/internal/http/middlewarectx"
)

// MockService реализует интерфейс logout.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Logout(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func TestLogoutHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Run("успешный выход очищает cookie", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("Logout", mock.Anything, "uid-1").Return(nil).Once()

		handler := New(logger, mockService)

		req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
		req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"message":"logged out"`)

		cleared := w.Result().Cookies()
		require.Len(t, cleared, 2)
		for _, c := range cleared {
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
		}
		mockService.AssertExpectations(t)
	})

	t.Run("нет идентификации пользователя", func(t *testing.T) {
		handler := New(logger, new(MockService))

		req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
