// Package services содержит бизнес-логику читающих агрегаций:
// профиль канала и история просмотров.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/videotube/userhub/internal/lib/sl"
	"github.com/videotube/userhub/internal/models"
	"github.com/videotube/userhub/internal/storage/repository"
)

// ErrChannelNotFound канал с таким username не найден.
var ErrChannelNotFound = errors.New("channel not found")

// profileCacheTTL ограничивает окно устаревания закешированного профиля.
const profileCacheTTL = time.Minute

// ChannelRepository определяет агрегирующие запросы хранилища.
type ChannelRepository interface {
	// GetChannelProfile возвращает профиль канала глазами зрителя одним консистентным чтением.
	GetChannelProfile(ctx context.Context, username, viewerUID string) (*models.ChannelProfile, error)
	// GetWatchHistory возвращает историю просмотров в порядке добавления.
	GetWatchHistory(ctx context.Context, userUID string) ([]*models.WatchHistoryEntry, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
}

// ChannelService реализует читающие агрегации с кешированием профилей.
type ChannelService struct {
	repo  ChannelRepository
	cache Cache
	log   *slog.Logger
}

// NewChannelService создает новый экземпляр ChannelService.
func NewChannelService(repo ChannelRepository, cache Cache, log *slog.Logger) *ChannelService {
	return &ChannelService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Profile возвращает агрегированный профиль канала по username глазами зрителя.
//
// Профиль кешируется целиком под ключом канал+зритель: счетчики и флаг
// подписки закешированного ответа всегда происходят из одного чтения базы.
func (s *ChannelService) Profile(ctx context.Context, username, viewerUID string) (*models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	var cached models.ChannelProfile
	cacheKey := fmt.Sprintf("channel_profile:%s:%s", username, viewerUID)
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read cached channel profile", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	profile, err := s.repo.GetChannelProfile(ctx, username, viewerUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(cacheKey, profile, profileCacheTTL); err != nil {
		s.log.Warn("failed to cache channel profile", slog.String("key", cacheKey), sl.Err(err))
	}
	return profile, nil
}

// WatchHistory возвращает историю просмотров пользователя в порядке добавления.
// Владельцы видео спроецированы только в публичные поля.
func (s *ChannelService) WatchHistory(ctx context.Context, userUID string) ([]*models.WatchHistoryEntry, error) {
	history, err := s.repo.GetWatchHistory(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		// Пустая история отдается как пустой список, а не null
		history = []*models.WatchHistoryEntry{}
	}
	return history, nil
}
