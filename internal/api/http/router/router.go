package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dtroode/taskboard-server/internal/api/http/handler"
	"github.com/dtroode/taskboard-server/internal/api/http/middleware"
	"github.com/dtroode/taskboard-server/internal/api/http/response"
	"github.com/dtroode/taskboard-server/internal/apperrors"
	"github.com/dtroode/taskboard-server/internal/logger"
	"github.com/dtroode/taskboard-server/internal/metrics"
	"github.com/dtroode/taskboard-server/internal/model"
)

// Services groups what the HTTP routes delegate to.
type Services struct {
	Auth    handler.AuthService
	Session handler.SessionService
	Tokens  middleware.TokenService
	Tasks   handler.TaskService
}

// Options tunes cross-cutting behavior of the router.
type Options struct {
	RequestTimeout time.Duration
	CORSOrigin     string
}

// Router represents the HTTP router of the JSON API.
// It wires handlers, the auth guard and the middleware chain.
type Router struct {
	services       Services
	contextManager model.ContextManager
	metrics        *metrics.Metrics
	options        Options
	logger         *logger.Logger
}

// New creates new Router instance.
func New(
	services Services,
	contextManager model.ContextManager,
	metrics *metrics.Metrics,
	options Options,
	logger *logger.Logger,
) *Router {
	return &Router{
		services:       services,
		contextManager: contextManager,
		metrics:        metrics,
		options:        options,
		logger:         logger,
	}
}

// Register builds the route tree.
//
// Public: GET /health, GET /metrics, POST /api/auth/{register,login,refresh,logout}.
// Guarded: everything under /api/tasks.
func (rt *Router) Register() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.NewLogging(rt.logger).Handle)
	r.Use(middleware.Metrics(rt.metrics))
	r.Use(middleware.Recover(rt.logger))
	if rt.options.RequestTimeout > 0 {
		r.Use(chimw.Timeout(rt.options.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{rt.options.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, rt.logger, apperrors.NewErrRouteNotFound())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusMethodNotAllowed, response.Envelope{Message: "Method not allowed"})
	})

	r.Get("/health", handler.Health)
	r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	rt.registerAuthRoutes(r)
	rt.registerTaskRoutes(r)

	return r
}

func (rt *Router) registerAuthRoutes(r chi.Router) {
	auth := handler.NewAuth(rt.services.Auth, rt.services.Session, rt.metrics, rt.logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", auth.Register)
		r.Post("/login", auth.Login)
		r.Post("/refresh", auth.Refresh)
		r.Post("/logout", auth.Logout)
	})
}

func (rt *Router) registerTaskRoutes(r chi.Router) {
	tasks := handler.NewTask(rt.services.Tasks, rt.contextManager, rt.logger)
	authenticate := middleware.NewAuthenticate(rt.services.Tokens, rt.contextManager, rt.logger)

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(authenticate.Handle)

		r.Get("/", tasks.List)
		r.Post("/", tasks.Create)
		r.Get("/{id}", tasks.Get)
		r.Patch("/{id}", tasks.Update)
		r.Delete("/{id}", tasks.Delete)
		r.Patch("/{id}/toggle", tasks.Toggle)
	})
}
