// Package profile реализует HTTP-обработчик профиля канала.
//
// Профиль агрегирует счетчики подписок и флаг "подписан ли зритель"
// одним консистентным чтением и отдается глазами текущего пользователя.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/videotube/userhub/internal/http/middlewarectx"
	"github.com/videotube/userhub/internal/http/response"
	"github.com/videotube/userhub/internal/lib/sl"
	"github.com/videotube/userhub/internal/models"
	services "github.com/videotube/userhub/internal/services/channel"
)

// Service описывает интерфейс бизнес-логики чтения профиля канала.
type Service interface {
	Profile(ctx context.Context, username, viewerUID string) (*models.ChannelProfile, error)
}

// Handler обрабатывает HTTP-запросы профиля канала.
type Handler struct {
	log     *slog.Logger
	channel Service
}

// New создает новый экземпляр Handler с указанными логгером и сервисом.
func New(log *slog.Logger, channel Service) *Handler {
	return &Handler{log: log, channel: channel}
}

// ServeHTTP godoc
// @Summary Профиль канала
// @Description Возвращает профиль канала со счетчиками подписок глазами текущего пользователя.
// @Tags Channel
// @Produce  json
// @Security BearerAuth
// @Param username path string true "Username канала"
// @Success 200 {object} response.Response "Профиль канала"
// @Failure 400 {object} response.ErrorResponse "Username отсутствует"
// @Failure 401 {object} response.ErrorResponse "Нет валидного access-токена"
// @Failure 404 {object} response.ErrorResponse "Канал не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/c/{username} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.channel.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	viewerUID, ok := middlewarectx.GetUserUID(r.Context())
	if !ok {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	username := chi.URLParam(r, "username")
	if username == "" {
		log.Warn("username missing in path")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("username is required"))
		return
	}

	profile, err := h.channel.Profile(r.Context(), username, viewerUID)
	if err != nil {
		if errors.Is(err, services.ErrChannelNotFound) {
			log.Warn("channel not found", slog.String("username", username))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("channel does not exist"))
			return
		}
		log.Error("failed to load channel profile", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(profile))
}
