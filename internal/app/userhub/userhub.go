// Package userhub собирает HTTP-приложение: хранилище, кеш, токены,
// клиент сервиса медиа, бизнес-сервисы и маршруты.
package userhub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/videotube/userhub/internal/cache"
	"github.com/videotube/userhub/internal/config"
	"github.com/videotube/userhub/internal/lib/jwt"
	"github.com/videotube/userhub/internal/mediaprovider"
	"github.com/videotube/userhub/internal/migrations"
	authservice "github.com/videotube/userhub/internal/services/auth"
	channelservice "github.com/videotube/userhub/internal/services/channel"
	"github.com/videotube/userhub/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создает приложение: подключается к PostgreSQL и Redis, накатывает
// миграции и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	maker := jwt.NewMaker(
		cfg.Tokens.AccessSecretKey,
		cfg.Tokens.AccessTokenTTL,
		cfg.Tokens.RefreshSecretKey,
		cfg.Tokens.RefreshTokenTTL,
	)
	mediaClient := mediaprovider.NewClient(cfg.AddressMedia, cfg.TimeoutMedia)

	authService := authservice.NewAuthService(db, maker, mediaClient, cacheRedis, logger)
	channelService := channelservice.NewChannelService(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Auth:    authService,
		Channel: channelService,
		Maker:   maker,
		Storage: db,
		TmpDir:  cfg.TmpDir,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
