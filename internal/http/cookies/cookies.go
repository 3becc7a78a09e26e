// Package cookies устанавливает и сбрасывает сессионные cookie с парой токенов.
//
// Токены кладутся в httpOnly cookie, чтобы браузерный скрипт не имел к ним
// доступа. Те же значения дублируются в теле ответа для небраузерных клиентов.
package cookies

import (
	"net/http"
	"time"

	"github.com/videotube/userhub/internal/models"
)

const (
	// AccessToken имя cookie с access-токеном.
	AccessToken = "accessToken"
	// RefreshToken имя cookie с refresh-токеном.
	RefreshToken = "refreshToken"
)

// SetSession выставляет cookie с парой токенов, срок жизни каждой cookie
// совпадает со сроком жизни токена.
func SetSession(w http.ResponseWriter, pair *models.TokenPair) {
	http.SetCookie(w, sessionCookie(AccessToken, pair.AccessToken, pair.AccessExpiresAt))
	http.SetCookie(w, sessionCookie(RefreshToken, pair.RefreshToken, pair.RefreshExpiresAt))
}

// ClearSession сбрасывает сессионные cookie: пустое значение и MaxAge < 0
// заставляют браузер удалить их немедленно.
func ClearSession(w http.ResponseWriter) {
	for _, name := range []string{AccessToken, RefreshToken} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func sessionCookie(name, value string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
