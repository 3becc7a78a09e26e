package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/videotube/userhub/internal/migrations"
	"github.com/videotube/userhub/internal/models"
)

func getTestStorage(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx)
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.DB.Close() })

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	return storage
}

func createTestUser(t *testing.T, storage *Storage, username string) *models.User {
	t.Helper()
	user, err := storage.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        username + "@x.io",
		FullName:     "User " + username,
		PasswordHash: "$2a$10$hash",
		AvatarURL:    "https://media/" + username + ".png",
	})
	require.NoError(t, err)
	return user
}

func TestStorage_Users(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	storage := getTestStorage(t)
	ctx := context.Background()

	t.Run("создание и чтение пользователя", func(t *testing.T) {
		created := createTestUser(t, storage, "nova")
		assert.NotEmpty(t, created.UID)
		assert.NotNil(t, created.CreatedAt)

		got, err := storage.GetUser(ctx, created.UID)
		require.NoError(t, err)
		assert.Equal(t, "nova", got.Username)
		assert.Equal(t, "nova@x.io", got.Email)
		assert.Nil(t, got.RefreshToken)
	})

	t.Run("username приводится к нижнему регистру", func(t *testing.T) {
		created, err := storage.CreateUser(ctx, models.User{
			Username:     "MiXeD",
			Email:        "mixed@x.io",
			FullName:     "Mixed Case",
			PasswordHash: "$2a$10$hash",
		})
		require.NoError(t, err)
		assert.Equal(t, "mixed", created.Username)
	})

	t.Run("дубликат username", func(t *testing.T) {
		createTestUser(t, storage, "dupe")
		_, err := storage.CreateUser(ctx, models.User{
			Username:     "Dupe",
			Email:        "other@x.io",
			FullName:     "Other",
			PasswordHash: "$2a$10$hash",
		})
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("поиск по username и email", func(t *testing.T) {
		created := createTestUser(t, storage, "finder")

		byName, err := storage.GetUserByLogin(ctx, "Finder")
		require.NoError(t, err)
		assert.Equal(t, created.UID, byName.UID)

		byEmail, err := storage.GetUserByLogin(ctx, "finder@x.io")
		require.NoError(t, err)
		assert.Equal(t, created.UID, byEmail.UID)

		_, err = storage.GetUserByLogin(ctx, "ghost@x.io")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("обновление данных учетной записи", func(t *testing.T) {
		created := createTestUser(t, storage, "editable")

		updated, err := storage.UpdateAccountDetails(ctx, created.UID, "New Name", "newmail@x.io")
		require.NoError(t, err)
		assert.Equal(t, "New Name", updated.FullName)
		assert.Equal(t, "newmail@x.io", updated.Email)

		_, err = storage.UpdateAccountDetails(ctx, "00000000-0000-0000-0000-000000000000", "x", "y@x.io")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_RefreshTokenRotation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	storage := getTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, storage, "rotator")

	first := "refresh-token-1"
	require.NoError(t, storage.UpdateRefreshToken(ctx, user.UID, &first))

	t.Run("ротация при совпадении", func(t *testing.T) {
		require.NoError(t, storage.RotateRefreshToken(ctx, user.UID, first, "refresh-token-2"))

		got, err := storage.GetUser(ctx, user.UID)
		require.NoError(t, err)
		require.NotNil(t, got.RefreshToken)
		assert.Equal(t, "refresh-token-2", *got.RefreshToken)
	})

	t.Run("повторное предъявление потребленного токена", func(t *testing.T) {
		err := storage.RotateRefreshToken(ctx, user.UID, first, "refresh-token-3")
		assert.ErrorIs(t, err, ErrRefreshTokenMismatch)
	})

	t.Run("ротация после сброса токена", func(t *testing.T) {
		require.NoError(t, storage.UpdateRefreshToken(ctx, user.UID, nil))
		err := storage.RotateRefreshToken(ctx, user.UID, "refresh-token-2", "refresh-token-4")
		assert.ErrorIs(t, err, ErrRefreshTokenMismatch)
	})

	t.Run("смена пароля сбрасывает токен", func(t *testing.T) {
		token := "refresh-token-5"
		require.NoError(t, storage.UpdateRefreshToken(ctx, user.UID, &token))
		require.NoError(t, storage.UpdatePasswordHash(ctx, user.UID, "$2a$10$newhash"))

		got, err := storage.GetUser(ctx, user.UID)
		require.NoError(t, err)
		assert.Equal(t, "$2a$10$newhash", got.PasswordHash)
		assert.Nil(t, got.RefreshToken)
	})
}

func TestStorage_ChannelProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	storage := getTestStorage(t)
	ctx := context.Background()

	channel := createTestUser(t, storage, "channel")
	subscriber1 := createTestUser(t, storage, "sub1")
	subscriber2 := createTestUser(t, storage, "sub2")
	outsider := createTestUser(t, storage, "outsider")

	require.NoError(t, storage.CreateSubscription(ctx, subscriber1.UID, channel.UID))
	require.NoError(t, storage.CreateSubscription(ctx, subscriber2.UID, channel.UID))
	// Канал сам подписан на другого пользователя
	require.NoError(t, storage.CreateSubscription(ctx, channel.UID, outsider.UID))

	t.Run("счетчики и флаг подписки глазами подписчика", func(t *testing.T) {
		profile, err := storage.GetChannelProfile(ctx, "channel", subscriber1.UID)
		require.NoError(t, err)
		assert.Equal(t, 2, profile.SubscribersCount)
		assert.Equal(t, 1, profile.ChannelsSubscribedToCount)
		assert.True(t, profile.IsSubscribed)
		assert.Equal(t, "channel", profile.Username)
	})

	t.Run("глазами не подписанного зрителя", func(t *testing.T) {
		profile, err := storage.GetChannelProfile(ctx, "channel", outsider.UID)
		require.NoError(t, err)
		assert.Equal(t, 2, profile.SubscribersCount)
		assert.False(t, profile.IsSubscribed)
	})

	t.Run("повторная подписка не меняет счетчик", func(t *testing.T) {
		require.NoError(t, storage.CreateSubscription(ctx, subscriber1.UID, channel.UID))

		profile, err := storage.GetChannelProfile(ctx, "channel", subscriber1.UID)
		require.NoError(t, err)
		assert.Equal(t, 2, profile.SubscribersCount)
	})

	t.Run("отписка уменьшает счетчик и сбрасывает флаг", func(t *testing.T) {
		require.NoError(t, storage.RemoveSubscription(ctx, subscriber2.UID, channel.UID))

		profile, err := storage.GetChannelProfile(ctx, "channel", subscriber2.UID)
		require.NoError(t, err)
		assert.Equal(t, 1, profile.SubscribersCount)
		assert.False(t, profile.IsSubscribed)
	})

	t.Run("канал не найден", func(t *testing.T) {
		_, err := storage.GetChannelProfile(ctx, "ghost", subscriber1.UID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_WatchHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	storage := getTestStorage(t)
	ctx := context.Background()

	viewer := createTestUser(t, storage, "viewer")
	owner := createTestUser(t, storage, "owner")

	firstUID, err := storage.CreateVideo(ctx, models.Video{Title: "first video", OwnerUID: owner.UID})
	require.NoError(t, err)
	secondUID, err := storage.CreateVideo(ctx, models.Video{Title: "second video", OwnerUID: owner.UID})
	require.NoError(t, err)

	require.NoError(t, storage.AppendWatchHistory(ctx, viewer.UID, firstUID))
	require.NoError(t, storage.AppendWatchHistory(ctx, viewer.UID, secondUID))

	t.Run("история в порядке добавления с владельцами", func(t *testing.T) {
		history, err := storage.GetWatchHistory(ctx, viewer.UID)
		require.NoError(t, err)
		require.Len(t, history, 2)

		assert.Equal(t, firstUID, history[0].VideoUID)
		assert.Equal(t, "first video", history[0].Title)
		assert.Equal(t, "owner", history[0].Owner.Username)
		assert.Equal(t, secondUID, history[1].VideoUID)
	})

	t.Run("пустая история", func(t *testing.T) {
		history, err := storage.GetWatchHistory(ctx, owner.UID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}
