package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockpix/stockpix-backend/api/controllers"
	"github.com/stockpix/stockpix-backend/api/handlers"
	"github.com/stockpix/stockpix-backend/api/middleware"
	authsvc "github.com/stockpix/stockpix-backend/internal/auth"
	imagesvc "github.com/stockpix/stockpix-backend/internal/images"
	usersvc "github.com/stockpix/stockpix-backend/internal/users"
	"github.com/stockpix/stockpix-backend/pkg/config"
	"github.com/stockpix/stockpix-backend/pkg/logger"
	"github.com/stockpix/stockpix-backend/pkg/metrics"
	"github.com/stockpix/stockpix-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Optional members may be
// nil; the routes that need them degrade to service-unavailable responses.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           handlers.Pinger
	Redis        *redis.Client
	Registry     *prometheus.Registry
	HTTPMetrics  *metrics.HTTPMetrics
	AuthService  authsvc.Service
	ImageService imagesvc.Service
	UserService  usersvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Get("/health", handlers.Healthz(cfg, logg, map[string]handlers.Pinger{
		"db":    deps.DB,
		"redis": pingerOrNil(deps.Redis),
	}))

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	if cfg.Storage.PublicDir != "" {
		fileServer := http.StripPrefix("/storage/", http.FileServer(http.Dir(cfg.Storage.PublicDir)))
		r.Get("/storage/*", fileServer.ServeHTTP)
	}

	maxUpload := int64(cfg.Storage.MaxUploadMB) << 20

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.Register(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.Login(deps.AuthService, logg))
		r.Post("/forgot-password", controllers.ForgotPassword(deps.AuthService, logg))
		r.Post("/reset-password", controllers.ResetPassword(deps.AuthService, logg))

		r.Get("/images", controllers.ListImages(deps.ImageService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Post("/images", controllers.CreateImage(deps.ImageService, maxUpload, logg))
			r.Post("/images/update", controllers.UpdateImage(deps.ImageService, maxUpload, logg))
			r.Delete("/images", controllers.DeleteImage(deps.ImageService, logg))

			r.Post("/update-profile", controllers.UpdateProfile(deps.UserService, logg))
			r.Post("/change-password", controllers.ChangePassword(deps.UserService, logg))

			r.Get("/users", controllers.ListUsers(deps.UserService, logg))
			r.Get("/user-stats", controllers.UserStats(deps.UserService, logg))
			r.Patch("/user/status", controllers.UpdateUserStatus(deps.UserService, logg))
			r.Delete("/user/delete", controllers.DeleteUser(deps.UserService, logg))
			r.Post("/user/restore", controllers.RestoreUser(deps.UserService, logg))
			r.Delete("/user/force-delete", controllers.ForceDeleteUser(deps.UserService, logg))
		})
	})

	return r
}

// pingerOrNil keeps a typed-nil redis client from masquerading as a live
// Pinger inside the health map.
func pingerOrNil(client *redis.Client) handlers.Pinger {
	if client == nil {
		return nil
	}
	return client
}
