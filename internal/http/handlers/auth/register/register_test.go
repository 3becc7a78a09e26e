package register

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/videotube/userhub/internal/models"
	services "github.com/videotube/userhub/internal/services/auth"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublicUser), args.Error(1)
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	content  string
}

func buildMultipartBody(t *testing.T, fields []formField, files []formFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range fields {
		require.NoError(t, writer.WriteField(f.name, f.value))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func validFields() []formField {
	return []formField{
		{"fullName", "Nova Star"},
		{"username", "nova"},
		{"email", "nova@x.io"},
		{"password", "p@ssword"},
	}
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tmpDir := t.TempDir()

	tests := []struct {
		name           string
		fields         []formField
		files          []formFile
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "успешная регистрация",
			fields: validFields(),
			files: []formFile{
				{"avatar", "avatar.png", "avatar-bytes"},
				{"coverImage", "cover.png", "cover-bytes"},
			},
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.MatchedBy(func(in services.RegisterInput) bool {
					return in.Username == "nova" &&
						in.Avatar.Present &&
						in.CoverImage.Present
				})).Return(&models.PublicUser{
					UID:      "uid-1",
					Username: "nova",
					Email:    "nova@x.io",
					FullName: "Nova Star",
				}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"username":"nova"`,
		},
		{
			name:   "обложка необязательна",
			fields: validFields(),
			files:  []formFile{{"avatar", "avatar.png", "avatar-bytes"}},
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.MatchedBy(func(in services.RegisterInput) bool {
					return in.Avatar.Present && !in.CoverImage.Present
				})).Return(&models.PublicUser{UID: "uid-1", Username: "nova"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:   "аватар обязателен",
			fields: validFields(),
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.MatchedBy(func(in services.RegisterInput) bool {
					return !in.Avatar.Present
				})).Return(nil, services.ErrAvatarRequired)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"avatar file is required"`,
		},
		{
			name: "некорректный email",
			fields: []formField{
				{"fullName", "Nova Star"},
				{"username", "nova"},
				{"email", "not-an-email"},
				{"password", "p@ssword"},
			},
			files:          []formFile{{"avatar", "avatar.png", "avatar-bytes"}},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Email must be a valid email address`,
		},
		{
			name:   "username уже занят",
			fields: validFields(),
			files:  []formFile{{"avatar", "avatar.png", "avatar-bytes"}},
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(nil, services.ErrUserExists)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"username or email already taken"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, tmpDir)

			body, contentType := buildMultipartBody(t, tt.fields, tt.files)
			req := httptest.NewRequest(http.MethodPost, "/users/register", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}

// Временные файлы удаляются по завершении запроса.
func TestRegisterHandler_CleansUpTmpFiles(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tmpDir := t.TempDir()

	mockService := new(MockService)
	mockService.On("Register", mock.Anything, mock.Anything).
		Return(&models.PublicUser{UID: "uid-1", Username: "nova"}, nil).Once()

	handler := New(logger, mockService, tmpDir)

	body, contentType := buildMultipartBody(t, validFields(),
		[]formFile{{"avatar", "avatar.png", "avatar-bytes"}})
	req := httptest.NewRequest(http.MethodPost, "/users/register", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
