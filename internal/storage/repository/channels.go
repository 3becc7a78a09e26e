package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/videotube/userhub/internal/models"
)

// GetChannelProfile возвращает агрегированный профиль канала по username
// глазами пользователя viewerUID.
//
// Счетчики и флаг подписки вычисляются одним оператором, то есть в одном
// консистентном снимке данных.
func (s *Storage) GetChannelProfile(ctx context.Context, username, viewerUID string) (*models.ChannelProfile, error) {
	const op = "storage.GetChannelProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.full_name, u.username, u.avatar_url, u.cover_image_url, u.email,
			      (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_uid = u.uid) AS subscribers_count,
			      (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_uid = u.uid) AS channels_subscribed_to_count,
			      EXISTS (SELECT 1 FROM subscriptions s
			              WHERE s.channel_uid = u.uid AND s.subscriber_uid = $2) AS is_subscribed
			  FROM users u
			  WHERE u.username = lower($1)`
	p := &models.ChannelProfile{}
	row := s.DB.QueryRowContext(ctx, query, username, viewerUID)
	if err := row.Scan(&p.FullName, &p.Username, &p.AvatarURL, &p.CoverImageURL, &p.Email,
		&p.SubscribersCount, &p.ChannelsSubscribedToCount, &p.IsSubscribed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// CreateSubscription добавляет ребро подписки subscriber -> channel.
// Повторная подписка не является ошибкой.
func (s *Storage) CreateSubscription(ctx context.Context, subscriberUID, channelUID string) error {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (subscriber_uid, channel_uid)
			  VALUES ($1, $2)
			  ON CONFLICT DO NOTHING;`
	if _, err := s.DB.ExecContext(ctx, query, subscriberUID, channelUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveSubscription удаляет ребро подписки subscriber -> channel.
func (s *Storage) RemoveSubscription(ctx context.Context, subscriberUID, channelUID string) error {
	const op = "storage.RemoveSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions
		      WHERE subscriber_uid = $1 AND channel_uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, subscriberUID, channelUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
