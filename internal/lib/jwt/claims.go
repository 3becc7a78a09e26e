// Package jwt реализует генерацию и парсинг access и refresh JWT токенов сессии.
//
// Access-токен несет денормализованный снимок профиля пользователя и проверяется
// только по подписи, без обращения к хранилищу. Refresh-токен несет только
// идентификатор пользователя и живет значительно дольше access-токена.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/videotube/userhub/internal/models"
)

// AccessClaims пользовательские данные access-токена.
//
// Снимок username, email и fullName позволяет авторизовывать запросы
// без похода в базу данных.
type AccessClaims struct {
	UserUID              string `json:"uid"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	FullName             string `json:"fullName"`
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// RefreshClaims данные refresh-токена, только идентификатор пользователя.
type RefreshClaims struct {
	UserUID string `json:"uid"`
	jwt.RegisteredClaims
}

// Maker описывает интерфейс для генерации и парсинга токенов сессии.
type Maker interface {
	// GenerateAccessToken создает access-токен со снимком профиля пользователя
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	// GenerateRefreshToken создает refresh-токен только с uid пользователя
	GenerateRefreshToken(user *models.User) (string, time.Time, error)
	// ParseAccessToken возвращает *AccessClaims если токен корректен
	ParseAccessToken(tokenStr string) (*AccessClaims, error)
	// ParseRefreshToken возвращает *RefreshClaims если токен корректен
	ParseRefreshToken(tokenStr string) (*RefreshClaims, error)
}

// MakerImpl реализует интерфейс Maker на HS256 с раздельными секретами
// и временем жизни для access и refresh токенов.
type MakerImpl struct {
	accessSecretKey  string
	accessTTL        time.Duration
	refreshSecretKey string
	refreshTTL       time.Duration
}

// NewMaker создаёт новый экземпляр MakerImpl с секретами и TTL обоих видов токенов.
func NewMaker(accessSecretKey string, accessTTL time.Duration, refreshSecretKey string, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		accessSecretKey:  accessSecretKey,
		accessTTL:        accessTTL,
		refreshSecretKey: refreshSecretKey,
		refreshTTL:       refreshTTL,
	}
}
