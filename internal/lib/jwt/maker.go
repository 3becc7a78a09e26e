package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/videotube/userhub/internal/models"
)

var (
	// ErrTokenExpired токен корректно подписан, но срок его действия истек.
	ErrTokenExpired = errors.New("token is expired")
	// ErrTokenMalformed токен не прошел проверку подписи или структуры.
	ErrTokenMalformed = errors.New("token is malformed")
)

// GenerateAccessToken создает access-токен со снимком профиля пользователя,
// подписывая его секретным ключом access-токенов.
//
// Время жизни токена определяется полем accessTTL.
func (m *MakerImpl) GenerateAccessToken(user *models.User) (string, time.Time, error) {
	const op = "jwt.GenerateAccessToken"
	expiresAt := time.Now().Add(m.accessTTL)
	claims := AccessClaims{
		UserUID:  user.UID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.accessSecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return signed, expiresAt, nil
}

// GenerateRefreshToken создает refresh-токен только с uid пользователя,
// подписывая его секретным ключом refresh-токенов.
//
// Каждый токен получает уникальный jti: два токена, выданные в одну секунду,
// иначе совпали бы байт в байт, и ротация не отличила бы старый от нового.
func (m *MakerImpl) GenerateRefreshToken(user *models.User) (string, time.Time, error) {
	const op = "jwt.GenerateRefreshToken"
	expiresAt := time.Now().Add(m.refreshTTL)
	claims := RefreshClaims{
		UserUID: user.UID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.refreshSecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return signed, expiresAt, nil
}

// ParseAccessToken парсит access-токен, проверяет его подпись и срок действия,
// возвращает AccessClaims с данными, если токен корректен.
func (m *MakerImpl) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	const op = "jwt.ParseAccessToken"
	claims := &AccessClaims{}
	if err := m.parse(tokenStr, m.accessSecretKey, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// ParseRefreshToken парсит refresh-токен, проверяет его подпись и срок действия,
// возвращает RefreshClaims с данными, если токен корректен.
func (m *MakerImpl) ParseRefreshToken(tokenStr string) (*RefreshClaims, error) {
	const op = "jwt.ParseRefreshToken"
	claims := &RefreshClaims{}
	if err := m.parse(tokenStr, m.refreshSecretKey, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// parse различает истекший и некорректный токен, чтобы вызывающий код
// мог отдать точную причину отказа.
func (m *MakerImpl) parse(tokenStr, secretKey string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
	if !token.Valid {
		return ErrTokenMalformed
	}
	return nil
}
