// Package services содержит логику бизнес-уровня для работы с учетными записями
// и жизненным циклом сессионных токенов.
//
// Сервис владеет инвариантом: у пользователя в каждый момент времени валиден
// ровно один refresh-токен. Вход перезаписывает прежний токен, обновление
// ротирует его условной записью, выход сбрасывает.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/videotube/userhub/internal/lib/jwt"
	"github.com/videotube/userhub/internal/lib/password"
	"github.com/videotube/userhub/internal/lib/sl"
	"github.com/videotube/userhub/internal/models"
	"github.com/videotube/userhub/internal/storage/repository"
)

var (
	// ErrUserNotFound пользователь с таким username или email не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists username или email уже заняты.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials пароль не подошел.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized refresh-токен отсутствует, истек, некорректен или вытеснен
	// более поздней сессией.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUploadFailed внешний сервис загрузки медиа не вернул URL.
	ErrUploadFailed = errors.New("media upload failed")
	// ErrAvatarRequired при регистрации не передан файл аватара.
	ErrAvatarRequired = errors.New("avatar is required")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает созданную запись.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// GetUser возвращает пользователя по UID или ошибку, если не найден.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GetUserByLogin возвращает пользователя по username или email.
	GetUserByLogin(ctx context.Context, identifier string) (*models.User, error)
	// UpdateRefreshToken перезаписывает refresh-токен, nil сбрасывает его.
	UpdateRefreshToken(ctx context.Context, userUID string, token *string) error
	// RotateRefreshToken атомарно меняет refresh-токен при совпадении хранимого с предъявленным.
	RotateRefreshToken(ctx context.Context, userUID, presented, next string) error
	// UpdatePasswordHash записывает новый хэш пароля и сбрасывает refresh-токен.
	UpdatePasswordHash(ctx context.Context, userUID, passwordHash string) error
	// UpdateAccountDetails обновляет имя и email.
	UpdateAccountDetails(ctx context.Context, userUID, fullName, email string) (*models.User, error)
	// UpdateAvatarURL обновляет ссылку на аватар.
	UpdateAvatarURL(ctx context.Context, userUID, url string) (*models.User, error)
	// UpdateCoverImageURL обновляет ссылку на обложку.
	UpdateCoverImageURL(ctx context.Context, userUID, url string) (*models.User, error)
}

// Uploader описывает клиент внешнего сервиса загрузки медиа.
type Uploader interface {
	// Upload отправляет локальный файл и возвращает публичный URL.
	Upload(ctx context.Context, localPath string) (string, error)
}

// ProfileCache описывает инвалидацию закешированных профилей канала.
type ProfileCache interface {
	InvalidatePrefix(prefix string) error
}

// RegisterInput входные данные регистрации, файлы уже разрешены на границе HTTP
// в типизированные дескрипторы.
type RegisterInput struct {
	FullName   string
	Username   string
	Email      string
	Password   string
	Avatar     models.FileUpload
	CoverImage models.FileUpload
}

// AuthService отвечает за регистрацию, аутентификацию и жизненный цикл
// сессионных токенов.
type AuthService struct {
	users    UserRepository
	maker    jwt.Maker
	uploader Uploader
	profiles ProfileCache
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, maker jwt.Maker, uploader Uploader, profiles ProfileCache, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		maker:    maker,
		uploader: uploader,
		profiles: profiles,
		log:      log,
	}
}

// Register создает нового пользователя: хэширует пароль, загружает аватар
// и обложку во внешний сервис, сохраняет запись и возвращает проекцию
// без учетных данных.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	if !in.Avatar.Present {
		return nil, ErrAvatarRequired
	}

	hashed, err := password.GetHash(in.Password)
	if err != nil {
		return nil, err
	}

	avatarURL, err := s.uploader.Upload(ctx, in.Avatar.Path)
	if err != nil {
		s.log.Error("avatar upload failed", sl.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	var coverImageURL string
	if in.CoverImage.Present {
		coverImageURL, err = s.uploader.Upload(ctx, in.CoverImage.Path)
		if err != nil {
			s.log.Error("cover image upload failed", sl.Err(err))
			return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
		}
	}

	user := models.User{
		Username:      strings.ToLower(in.Username),
		Email:         in.Email,
		FullName:      in.FullName,
		PasswordHash:  hashed,
		AvatarURL:     avatarURL,
		CoverImageURL: coverImageURL,
	}
	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.log.Info("registered new user", slog.String("username", created.Username))
	return created.Public(), nil
}

// Login проверяет пароль пользователя по username или email и выдает пару токенов.
//
// Выданный refresh-токен перезаписывает прежний - это единственная точка
// инвалидации предыдущей сессии при повторном входе.
func (s *AuthService) Login(ctx context.Context, identifier, rawPassword string) (*models.PublicUser, *models.TokenPair, error) {
	user, err := s.users.GetUserByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	if err := s.users.UpdateRefreshToken(ctx, user.UID, &pair.RefreshToken); err != nil {
		return nil, nil, err
	}

	s.log.Info("login success", slog.String("username", user.Username))
	return user.Public(), pair, nil
}

// Logout сбрасывает refresh-токен пользователя. Операция идемпотентна.
// Уже выданные access-токены доживают свой срок - черный список не ведется,
// окно устаревания ограничено их TTL.
func (s *AuthService) Logout(ctx context.Context, userUID string) error {
	if err := s.users.UpdateRefreshToken(ctx, userUID, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.log.Info("logout success", slog.String("user_uid", userUID))
	return nil
}

// Refresh проверяет предъявленный refresh-токен и ротирует его.
//
// Токен должен быть подписан, не истекший и байт в байт равен хранимому:
// криптографически валидный, но вытесненный более поздним входом или
// обновлением токен отклоняется. Сравнение с хранимым значением и запись
// нового токена выполняются одним условным оператором, что закрывает гонку
// двух конкурентных обновлений.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*models.TokenPair, error) {
	if presented == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.maker.ParseRefreshToken(presented)
	if err != nil {
		s.log.Warn("refresh token rejected", sl.Err(err))
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, claims.UserUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	pair, err := s.issueTokenPair(user)
	if err != nil {
		return nil, err
	}
	if err := s.users.RotateRefreshToken(ctx, user.UID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenMismatch) {
			s.log.Warn("superseded refresh token presented", slog.String("user_uid", user.UID))
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	s.log.Info("session refreshed", slog.String("user_uid", user.UID))
	return pair, nil
}

// ChangePassword проверяет старый пароль и записывает хэш нового.
// Вместе с новым хэшем сбрасывается refresh-токен: открытая сессия
// завершается, пользователь входит заново.
func (s *AuthService) ChangePassword(ctx context.Context, userUID, oldPassword, newPassword string) error {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := password.CompareHash(user.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, userUID, hashed); err != nil {
		return err
	}

	s.log.Info("password changed", slog.String("user_uid", userUID))
	return nil
}

// CurrentUser возвращает проекцию текущего пользователя без учетных данных.
func (s *AuthService) CurrentUser(ctx context.Context, userUID string) (*models.PublicUser, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.Public(), nil
}

// UpdateAccount обновляет имя и email пользователя.
func (s *AuthService) UpdateAccount(ctx context.Context, userUID, fullName, email string) (*models.PublicUser, error) {
	user, err := s.users.UpdateAccountDetails(ctx, userUID, fullName, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, ErrUserExists
		}
		return nil, err
	}
	s.invalidateProfile(user.Username)
	return user.Public(), nil
}

// UpdateAvatar загружает новый аватар и сохраняет его URL.
func (s *AuthService) UpdateAvatar(ctx context.Context, userUID string, upload models.FileUpload) (*models.PublicUser, error) {
	return s.updateImage(ctx, userUID, upload, s.users.UpdateAvatarURL)
}

// UpdateCoverImage загружает новую обложку и сохраняет её URL.
func (s *AuthService) UpdateCoverImage(ctx context.Context, userUID string, upload models.FileUpload) (*models.PublicUser, error) {
	return s.updateImage(ctx, userUID, upload, s.users.UpdateCoverImageURL)
}

func (s *AuthService) updateImage(ctx context.Context, userUID string, upload models.FileUpload,
	save func(ctx context.Context, userUID, url string) (*models.User, error)) (*models.PublicUser, error) {
	if !upload.Present {
		return nil, ErrAvatarRequired
	}

	url, err := s.uploader.Upload(ctx, upload.Path)
	if err != nil {
		s.log.Error("image upload failed", sl.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	user, err := save(ctx, userUID, url)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.invalidateProfile(user.Username)
	return user.Public(), nil
}

// issueTokenPair выдает пару access и refresh токенов для пользователя.
// Ошибка подписи - инфраструктурная, не пользовательская, повторных
// попыток не делается.
func (s *AuthService) issueTokenPair(user *models.User) (*models.TokenPair, error) {
	accessToken, accessExpiresAt, err := s.maker.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExpiresAt, err := s.maker.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// invalidateProfile сбрасывает закешированные профили канала пользователя
// для всех зрителей. Сбой кеша не прерывает операцию.
func (s *AuthService) invalidateProfile(username string) {
	if s.profiles == nil {
		return
	}
	if err := s.profiles.InvalidatePrefix("channel_profile:" + username + ":"); err != nil {
		s.log.Warn("failed to invalidate cached channel profile",
			slog.String("username", username), sl.Err(err))
	}
}
