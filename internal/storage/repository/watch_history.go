package repository

import (
	"context"
	"fmt"

	"github.com/videotube/userhub/internal/models"
)

// GetWatchHistory возвращает историю просмотров пользователя в порядке добавления.
// Владелец каждого видео проецируется только в публичные поля.
//
// Запрос выполняется одним оператором, соединение и проекция происходят
// в одном консистентном снимке данных.
func (s *Storage) GetWatchHistory(ctx context.Context, userUID string) ([]*models.WatchHistoryEntry, error) {
	const op = "storage.GetWatchHistory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT v.uid, v.title, o.username, o.full_name, o.avatar_url
			  FROM watch_history wh
			  JOIN videos v ON v.uid = wh.video_uid
			  JOIN users o ON o.uid = v.owner_uid
		      WHERE wh.user_uid = $1
		      ORDER BY wh.position;`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.WatchHistoryEntry
	for rows.Next() {
		var e models.WatchHistoryEntry
		if err = rows.Scan(&e.VideoUID, &e.Title,
			&e.Owner.Username, &e.Owner.FullName, &e.Owner.AvatarURL); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateVideo сохраняет видео и возвращает его UID. Используется потоком
// публикации видео и тестами.
func (s *Storage) CreateVideo(ctx context.Context, video models.Video) (string, error) {
	const op = "storage.CreateVideo"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO videos (title, owner_uid)
			  VALUES ($1, $2)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query, video.Title, video.OwnerUID).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// AppendWatchHistory дописывает видео в конец истории просмотров пользователя.
func (s *Storage) AppendWatchHistory(ctx context.Context, userUID, videoUID string) error {
	const op = "storage.AppendWatchHistory"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO watch_history (user_uid, video_uid)
			  VALUES ($1, $2);`
	if _, err := s.DB.ExecContext(ctx, query, userUID, videoUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
