// Package watchhistory реализует HTTP-обработчик истории просмотров.
package watchhistory

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/videotube/userhub/internal/http/middlewarectx"
	"github.com/videotube/userhub/internal/http/response"
	"github.com/videotube/userhub/internal/lib/sl"
	"github.com/videotube/userhub/internal/models"
)

// Service описывает интерфейс бизнес-логики истории просмотров.
type Service interface {
	WatchHistory(ctx context.Context, userUID string) ([]*models.WatchHistoryEntry, error)
}

// Handler обрабатывает HTTP-запросы истории просмотров.
type Handler struct {
	log     *slog.Logger
	channel Service
}

// New создает новый экземпляр Handler с указанными логгером и сервисом.
func New(log *slog.Logger, channel Service) *Handler {
	return &Handler{log: log, channel: channel}
}

// ServeHTTP godoc
// @Summary История просмотров
// @Description Возвращает просмотренные видео текущего пользователя в порядке добавления.
// @Tags Channel
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список просмотренных видео"
// @Failure 401 {object} response.ErrorResponse "Нет валидного access-токена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/watch-history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.channel.watchhistory"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.GetUserUID(r.Context())
	if !ok {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("user identification missing"))
		return
	}

	history, err := h.channel.WatchHistory(r.Context(), userUID)
	if err != nil {
		log.Error("failed to load watch history", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(history))
}
