// Package middlewarectx содержит HTTP middleware для обработки и проверки JWT токенов.
//
// JWTMiddleware проверяет наличие и валидность access-токена в заголовке
// Authorization или в cookie accessToken, и в случае успеха добавляет в контекст
// uid и username пользователя для дальнейшего использования в обработчиках.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/videotube/userhub/internal/http/response"
	"github.com/videotube/userhub/internal/lib/jwt"
	"github.com/videotube/userhub/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID — ключ для uid пользователя в контексте
	UserUID Key = "user_uid"
	// Username — ключ для имени пользователя в контексте
	Username Key = "username"
)

// AccessTokenCookie имя cookie, в которой браузерные клиенты несут access-токен.
const AccessTokenCookie = "accessToken"

// TokenParser описывает проверку подписи и срока действия access-токена.
type TokenParser interface {
	ParseAccessToken(tokenStr string) (*jwt.AccessClaims, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет access-токен.
//
// Токен берется из заголовка Authorization: Bearer, при его отсутствии —
// из cookie accessToken. Если токен валиден, uid и username из claims
// добавляются в контекст запроса, иначе возвращается 401 Unauthorized.
func JWTMiddleware(maker TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr := extractToken(r)
			if tokenStr == "" {
				log.Warn("missing access token")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing access token"))
				return
			}

			claims, err := maker.ParseAccessToken(tokenStr)
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, Username, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken ищет access-токен в заголовке Authorization, затем в cookie.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// GetUserUID возвращает uid пользователя из контекста запроса.
func GetUserUID(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserUID).(string)
	return uid, ok && uid != ""
}

// GetUsername возвращает имя пользователя из контекста запроса.
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(Username).(string)
	return username, ok && username != ""
}
