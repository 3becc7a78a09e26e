// Package userhub предоставляет маршруты для основного приложения.
package userhub

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/videotube/userhub/internal/http/handlers/auth/changepassword"
	"github.com/videotube/userhub/internal/http/handlers/auth/login"
	"github.com/videotube/userhub/internal/http/handlers/auth/logout"
	"github.com/videotube/userhub/internal/http/handlers/auth/refresh"
	"github.com/videotube/userhub/internal/http/handlers/auth/register"
	"github.com/videotube/userhub/internal/http/handlers/channel/profile"
	"github.com/videotube/userhub/internal/http/handlers/channel/watchhistory"
	"github.com/videotube/userhub/internal/http/handlers/health"
	"github.com/videotube/userhub/internal/http/handlers/user/current"
	"github.com/videotube/userhub/internal/http/handlers/user/update"
	"github.com/videotube/userhub/internal/http/handlers/user/updateimage"
	"github.com/videotube/userhub/internal/http/middlewarectx"
	authservice "github.com/videotube/userhub/internal/services/auth"
	channelservice "github.com/videotube/userhub/internal/services/channel"
	"github.com/videotube/userhub/internal/storage/repository"
)

// Deps зависимости, которые нужны обработчикам маршрутов.
type Deps struct {
	Auth    *authservice.AuthService
	Channel *channelservice.ChannelService
	Maker   middlewarectx.TokenParser
	Storage *repository.Storage
	TmpDir  string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Общий лимит для открытых конечных точек аутентификации
	authLimiter := rate.NewLimiter(5, 10)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(authLimiter, logger))
			r.Post("/users/register", register.New(logger, deps.Auth, deps.TmpDir).ServeHTTP)
			r.Post("/users/login", login.New(logger, deps.Auth).ServeHTTP)
			r.Post("/users/refresh-token", refresh.New(logger, deps.Auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.Maker, logger))
			r.Post("/users/logout", logout.New(logger, deps.Auth).ServeHTTP)
			r.Post("/users/change-password", changepassword.New(logger, deps.Auth).ServeHTTP)
			r.Get("/users/current", current.New(logger, deps.Auth).ServeHTTP)
			r.Patch("/users/update-account", update.New(logger, deps.Auth).ServeHTTP)
			r.Patch("/users/avatar", updateimage.NewAvatar(logger, deps.Auth, deps.TmpDir).ServeHTTP)
			r.Patch("/users/cover-image", updateimage.NewCoverImage(logger, deps.Auth, deps.TmpDir).ServeHTTP)
			r.Get("/users/c/{username}", profile.New(logger, deps.Channel).ServeHTTP)
			r.Get("/users/watch-history", watchhistory.New(logger, deps.Channel).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, deps.Storage).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
