// Package refresh реализует HTTP-обработчик ротации пары токенов.
//
// Refresh-токен берется из cookie refreshToken, при её отсутствии — из тела
// запроса. Предъявленный токен обменивается на новую пару, прежний при этом
// перестает действовать.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/videotube/userhub/internal/http/cookies"
	"github.com/videotube/userhub/internal/http/response"
	"github.com/videotube/userhub/internal/lib/sl"
	"github.com/videotube/userhub/internal/models"
	services "github.com/videotube/userhub/internal/services/auth"
)

// Request — тело запроса с refresh-токеном для небраузерных клиентов.
type Request struct {
	RefreshToken string `json:"refreshToken"`
}

// Service описывает интерфейс бизнес-логики ротации токенов.
type Service interface {
	Refresh(ctx context.Context, presented string) (*models.TokenPair, error)
}

// Handler обрабатывает HTTP-запросы обновления пары токенов.
type Handler struct {
	log  *slog.Logger
	auth Service
}

// New создает новый экземпляр Handler с указанными логгером и сервисом.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{log: log, auth: auth}
}

// ServeHTTP godoc
// @Summary Обновление пары токенов
// @Description Проверяет refresh-токен из cookie или тела запроса и ротирует его.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request false "Refresh-токен (если не передан в cookie)"
// @Success 200 {object} response.Response "Новая пара токенов"
// @Failure 401 {object} response.ErrorResponse "Токен отсутствует, истек или вытеснен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/refresh-token [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	presented := extractRefreshToken(r)
	if presented == "" {
		log.Warn("refresh token missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("refresh token required"))
		return
	}

	pair, err := h.auth.Refresh(r.Context(), presented)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			log.Warn("refresh token rejected")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid or expired refresh token"))
			return
		}
		log.Error("refresh failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	cookies.SetSession(w, pair)

	log.Info("tokens refreshed")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}))
}

// extractRefreshToken ищет refresh-токен в cookie, затем в теле запроса.
func extractRefreshToken(r *http.Request) string {
	if cookie, err := r.Cookie(cookies.RefreshToken); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}
