package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/videotube/userhub/internal/models"
)

const userColumns = `uid, username, email, full_name, password_hash, avatar_url,
			      cover_image_url, refresh_token, created_at, updated_at`

// CreateUser сохраняет нового пользователя в базу данных и возвращает созданную запись.
// Username приводится к нижнему регистру до записи.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (username, email, full_name, password_hash, avatar_url,
			      cover_image_url)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid, created_at;`
	created := user
	created.Username = strings.ToLower(user.Username)
	if err := s.DB.QueryRowContext(ctx, query,
		created.Username, user.Email, user.FullName, user.PasswordHash, user.AvatarURL,
		user.CoverImageURL).Scan(&created.UID, &created.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	return s.scanUserRow(op, s.DB.QueryRowContext(ctx, query, userUID))
}

// GetUserByLogin возвращает пользователя по username или email.
// Username сравнивается в нижнем регистре.
func (s *Storage) GetUserByLogin(ctx context.Context, identifier string) (*models.User, error) {
	const op = "storage.GetUserByLogin"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE username = lower($1) OR email = $1`
	return s.scanUserRow(op, s.DB.QueryRowContext(ctx, query, identifier))
}

// UpdateRefreshToken перезаписывает текущий refresh-токен пользователя.
// nil сбрасывает токен (logout). Запись при login перезаписывает прежний
// токен - это и есть инвалидация предыдущей сессии.
func (s *Storage) UpdateRefreshToken(ctx context.Context, userUID string, token *string) error {
	const op = "storage.UpdateRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		      SET refresh_token = $1,
			      updated_at = now()
		      WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, token, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// RotateRefreshToken атомарно заменяет refresh-токен пользователя новым
// при условии, что хранимый токен в точности равен предъявленному.
// Условная запись закрывает гонку двух конкурентных обновлений сессии:
// проигравший получает ErrRefreshTokenMismatch.
func (s *Storage) RotateRefreshToken(ctx context.Context, userUID, presented, next string) error {
	const op = "storage.RotateRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		      SET refresh_token = $1,
			      updated_at = now()
		      WHERE uid = $2 AND refresh_token = $3`
	res, err := s.DB.ExecContext(ctx, query, next, userUID, presented)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrRefreshTokenMismatch)
	}
	return nil
}

// UpdatePasswordHash записывает новый хэш пароля и в том же операторе
// сбрасывает refresh-токен: смена пароля завершает открытую сессию.
func (s *Storage) UpdatePasswordHash(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdatePasswordHash"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		      SET password_hash = $1,
			      refresh_token = NULL,
			      updated_at = now()
		      WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, passwordHash, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateAccountDetails обновляет имя и email пользователя, возвращает обновленную запись.
func (s *Storage) UpdateAccountDetails(ctx context.Context, userUID, fullName, email string) (*models.User, error) {
	const op = "storage.UpdateAccountDetails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		      SET full_name = $1,
			      email = $2,
			      updated_at = now()
		      WHERE uid = $3
		      RETURNING ` + userColumns
	user, err := s.scanUserRow(op, s.DB.QueryRowContext(ctx, query, fullName, email, userUID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return nil, err
	}
	return user, nil
}

// UpdateAvatarURL обновляет ссылку на аватар пользователя.
func (s *Storage) UpdateAvatarURL(ctx context.Context, userUID, url string) (*models.User, error) {
	const op = "storage.UpdateAvatarURL"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		      SET avatar_url = $1,
			      updated_at = now()
		      WHERE uid = $2
		      RETURNING ` + userColumns
	return s.scanUserRow(op, s.DB.QueryRowContext(ctx, query, url, userUID))
}

// UpdateCoverImageURL обновляет ссылку на обложку пользователя.
func (s *Storage) UpdateCoverImageURL(ctx context.Context, userUID, url string) (*models.User, error) {
	const op = "storage.UpdateCoverImageURL"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		      SET cover_image_url = $1,
			      updated_at = now()
		      WHERE uid = $2
		      RETURNING ` + userColumns
	return s.scanUserRow(op, s.DB.QueryRowContext(ctx, query, url, userUID))
}

func (s *Storage) scanUserRow(op string, row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var refreshToken sql.NullString
	var updatedAt sql.NullTime
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.AvatarURL, &u.CoverImageURL, &refreshToken, &u.CreatedAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if refreshToken.Valid {
		u.RefreshToken = &refreshToken.String
	}
	if updatedAt.Valid {
		u.UpdatedAt = &updatedAt.Time
	}
	return u, nil
}
