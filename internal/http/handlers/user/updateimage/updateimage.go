// Package updateimage реализует HTTP-обработчики смены аватара и обложки.
//
// Оба маршрута принимают один файл в multipart-форме, сохраняют его во
// временный каталог и передают бизнес-уровню для загрузки во внешний сервис
// медиа. Обработчики различаются только именем поля формы и вызываемым
// методом сервиса.
package updateimage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/videotube/userhub/internal/http/middlewarectx"
	"github.com/videotube/userhub/internal/http/response"
	"github.com/videotube/userhub/internal/lib/sl"
	"github.com/videotube/userhub/internal/models"
	services "github.com/videotube/userhub/internal/services/auth"
)

// maxUploadSize ограничивает размер multipart-запроса.
const maxUploadSize = 32 << 20

// Service описывает интерфейс бизнес-логики смены изображений профиля.
type Service interface {
	UpdateAvatar(ctx context.Context, userUID string, upload models.FileUpload) (*models.PublicUser, error)
	UpdateCoverImage(ctx context.Context, userUID string, upload models.FileUpload) (*models.PublicUser, error)
}

// Handler обрабатывает HTTP-запросы смены одного изображения профиля.
type Handler struct {
	log    *slog.Logger
	tmpDir string
	op     string
	field  string
	apply  func(ctx context.Context, userUID string, upload models.FileUpload) (*models.PublicUser, error)
}

// NewAvatar создает обработчик смены аватара.
//
// ServeHTTP godoc
// @Summary Смена аватара
// @Description Загружает новый аватар и сохраняет его URL в профиле.
// @Tags User
// @Accept  mpfd
// @Produce  json
// @Security BearerAuth
// @Param avatar formData file true "Новый аватар"
// @Success 200 {object} response.Response "Обновленный профиль"
// @Failure 400 {object} response.ErrorResponse "Файл отсутствует"
// @Failure 401 {object} response.ErrorResponse "Нет валидного access-токена"
// @Failure 502 {object} response.ErrorResponse "Сервис медиа недоступен"
// @Router /users/avatar [patch]
func NewAvatar(log *slog.Logger, auth Service, tmpDir string) *Handler {
	return &Handler{
		log:    log,
		tmpDir: tmpDir,
		op:     "handlers.user.avatar",
		field:  "avatar",
		apply:  auth.UpdateAvatar,
	}
}

// NewCoverImage создает обработчик смены обложки.
//
// ServeHTTP godoc
// @Summary Смена обложки
// @Description Загружает новую обложку и сохраняет её URL в профиле.
// @Tags User
// @Accept  mpfd
// @Produce  json
// @Security BearerAuth
// @Param coverImage formData file true "Новая обложка"
// @Success 200 {object} response.Response "Обновленный профиль"
// @Failure 400 {object} response.ErrorResponse "Файл отсутствует"
// @Failure 401 {object} response.ErrorResponse "Нет валидного access-токена"
// @Failure 502 {object} response.ErrorResponse "Сервис медиа недоступен"
// @Router /users/cover-image [patch]
func NewCoverImage(log *slog.Logger, auth Service, tmpDir string) *Handler {
	return &Handler{
		log:    log,
		tmpDir: tmpDir,
		op:     "handlers.user.coverimage",
		field:  "coverImage",
		apply:  auth.UpdateCoverImage,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(
		slog.String("op", h.op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.GetUserUID(r.Context())
	if !ok {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	upload, err := h.saveFormFile(r)
	if err != nil {
		log.Error("failed to store uploaded file", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(fmt.Sprintf("%s file is required", h.field)))
		return
	}
	defer func() { _ = os.Remove(upload.Path) }()

	user, err := h.apply(r.Context(), userUID, upload)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAvatarRequired):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(fmt.Sprintf("%s file is required", h.field)))
		case errors.Is(err, services.ErrUserNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, services.ErrUploadFailed):
			log.Error("media upload failed", sl.Err(err))
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.Error("media upload failed"))
		default:
			log.Error("image update failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal server error"))
		}
		return
	}

	log.Info("profile image updated", slog.String("user_uid", userUID), slog.String("field", h.field))
	render.JSON(w, r, response.StatusOKWithData(user))
}

// saveFormFile сохраняет файл из формы во временный каталог под уникальным
// именем. Здесь файл обязателен: его отсутствие — ошибка.
func (h *Handler) saveFormFile(r *http.Request) (models.FileUpload, error) {
	file, header, err := r.FormFile(h.field)
	if err != nil {
		return models.FileUpload{}, fmt.Errorf("read form file %q: %w", h.field, err)
	}
	defer func() { _ = file.Close() }()

	if err := os.MkdirAll(h.tmpDir, 0o755); err != nil {
		return models.FileUpload{}, fmt.Errorf("create tmp dir: %w", err)
	}

	path := filepath.Join(h.tmpDir, uuid.NewString()+filepath.Ext(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return models.FileUpload{}, fmt.Errorf("create tmp file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(path)
		return models.FileUpload{}, fmt.Errorf("write tmp file: %w", err)
	}
	return models.FileUpload{Path: path, Present: true}, nil
}
