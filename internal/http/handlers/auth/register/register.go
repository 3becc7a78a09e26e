// Package register реализует HTTP-обработчик регистрации пользователей.
//
// Запрос приходит как multipart/form-data: текстовые поля профиля плюс файлы
// avatar и coverImage. Файлы сохраняются во временный каталог и передаются
// бизнес-уровню, который загружает их во внешний сервис медиа. Временные
// файлы удаляются по завершении запроса независимо от исхода.
package register

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
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/videotube/userhub/internal/http/response"
	"github.com/videotube/userhub/internal/lib/sl"
	"github.com/videotube/userhub/internal/models"
	services "github.com/videotube/userhub/internal/services/auth"
)

// maxUploadSize ограничивает суммарный размер multipart-запроса.
const maxUploadSize = 32 << 20

// Request — текстовые поля формы регистрации.
//
// Username должен быть строкой длиной от 3 до 50 символов из букв и цифр,
// пароль — минимум 6 символов.
type Request struct {
	FullName string `validate:"required,min=1,max=100"`
	Username string `validate:"required,min=3,max=50,alphanum"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error)
}

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log      *slog.Logger
	auth     Service
	tmpDir   string
	validate *validator.Validate
}

// New создает новый экземпляр Handler с указанными логгером, сервисом
// и временным каталогом для загружаемых файлов.
func New(log *slog.Logger, auth Service, tmpDir string) *Handler {
	return &Handler{
		log:      log,
		auth:     auth,
		tmpDir:   tmpDir,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создает учетную запись: поля профиля и файлы avatar (обязателен) и coverImage.
// @Tags Auth
// @Accept  mpfd
// @Produce  json
// @Param fullName formData string true "Полное имя"
// @Param username formData string true "Имя пользователя"
// @Param email formData string true "Email"
// @Param password formData string true "Пароль"
// @Param avatar formData file true "Аватар"
// @Param coverImage formData file false "Обложка"
// @Success 201 {object} response.Response "Созданный пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 409 {object} response.ErrorResponse "Username или email заняты"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	req := Request{
		FullName: r.FormValue("fullName"),
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	log.Info("form fields decoded", slog.String("username", req.Username))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	avatar, err := h.saveFormFile(r, "avatar")
	if err != nil {
		log.Error("failed to store avatar file", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("avatar file is required"))
		return
	}
	defer removeIfPresent(avatar)

	coverImage, err := h.saveFormFile(r, "coverImage")
	if err != nil {
		log.Error("failed to store cover image file", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid cover image file"))
		return
	}
	defer removeIfPresent(coverImage)

	user, err := h.auth.Register(r.Context(), services.RegisterInput{
		FullName:   req.FullName,
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		Avatar:     avatar,
		CoverImage: coverImage,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserExists):
			log.Warn("user already exists", slog.String("username", req.Username))
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("username or email already taken"))
		case errors.Is(err, services.ErrAvatarRequired):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("avatar file is required"))
		case errors.Is(err, services.ErrUploadFailed):
			log.Error("media upload failed", sl.Err(err))
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.Error("media upload failed"))
		default:
			log.Error("registration failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal server error"))
		}
		return
	}

	log.Info("user registered", slog.String("username", user.Username))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(user))
}

// saveFormFile сохраняет файл из формы во временный каталог под уникальным
// именем. Отсутствие файла в форме не ошибка: возвращается пустой дескриптор.
func (h *Handler) saveFormFile(r *http.Request, field string) (models.FileUpload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return models.FileUpload{}, nil
		}
		return models.FileUpload{}, fmt.Errorf("read form file %q: %w", field, err)
	}
	defer closeQuietly(file)

	if err := os.MkdirAll(h.tmpDir, 0o755); err != nil {
		return models.FileUpload{}, fmt.Errorf("create tmp dir: %w", err)
	}

	path := filepath.Join(h.tmpDir, uuid.NewString()+filepath.Ext(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return models.FileUpload{}, fmt.Errorf("create tmp file: %w", err)
	}
	defer closeQuietly(dst)

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(path)
		return models.FileUpload{}, fmt.Errorf("write tmp file: %w", err)
	}
	return models.FileUpload{Path: path, Present: true}, nil
}

func removeIfPresent(upload models.FileUpload) {
	if upload.Present {
		_ = os.Remove(upload.Path)
	}
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
