// Package models содержит доменные структуры пользователя, видео и связей между ними,
// а также проекции, отдаваемые наружу через API.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
// Поля PasswordHash и RefreshToken никогда не сериализуются наружу.
type User struct {
	UID           string     `json:"id"`
	Username      string     `json:"username"` // Уникальное, хранится в нижнем регистре
	Email         string     `json:"email"`    // Уникальное
	FullName      string     `json:"fullName"`
	PasswordHash  string     `json:"-"`
	AvatarURL     string     `json:"avatar"`
	CoverImageURL string     `json:"coverImage,omitempty"`
	RefreshToken  *string    `json:"-"` // Текущий refresh-токен, nil если сессии нет
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// PublicUser проекция пользователя без учетных данных.
type PublicUser struct {
	UID           string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	AvatarURL     string `json:"avatar"`
	CoverImageURL string `json:"coverImage,omitempty"`
}

// Public возвращает проекцию пользователя без хэша пароля и refresh-токена.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		UID:           u.UID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
	}
}

// TokenPair пара выданных токенов сессии с датами истечения.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// FileUpload типизированный дескриптор загружаемого файла, разрешенный на границе HTTP.
// Present false означает что файл в запросе отсутствовал.
type FileUpload struct {
	Path    string
	Present bool
}
