package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/infrastructure/http/handlers"
	"github.com/jsmuster/isstrack/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler     *handlers.AuthHandler
	ProjectsHandler *handlers.ProjectsHandler
	IssuesHandler   *handlers.IssuesHandler
	CommentsHandler *handlers.CommentsHandler
	HealthHandler   *handlers.HealthHandler
	RequireJWT      func(http.Handler) http.Handler
	Log             zerolog.Logger
	Secure          func(http.Handler) http.Handler
	CORS            func(http.Handler) http.Handler
	IPRateLimit     func(http.Handler) http.Handler
	Metrics         bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimid.AllowContentType("application/json"))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/forgot-password", cfg.AuthHandler.ForgotPassword)
			r.Post("/reset-password", cfg.AuthHandler.ResetPassword)
			r.Group(func(r chi.Router) {
				r.Use(cfg.RequireJWT)
				r.Get("/me", cfg.AuthHandler.Me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireJWT)

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", cfg.ProjectsHandler.Create)
				r.Get("/", cfg.ProjectsHandler.ListMine)
				r.Post("/invites/accept", cfg.ProjectsHandler.AcceptInvite)
				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", cfg.ProjectsHandler.Get)
					r.Get("/members", cfg.ProjectsHandler.ListMembers)
					r.Post("/invites", cfg.ProjectsHandler.Invite)
					r.Post("/issues", cfg.IssuesHandler.Create)
					r.Get("/issues", cfg.IssuesHandler.List)
				})
			})

			r.Route("/issues/{issueID}", func(r chi.Router) {
				r.Get("/", cfg.IssuesHandler.Detail)
				r.Patch("/", cfg.IssuesHandler.Patch)
				r.Get("/activity", cfg.IssuesHandler.Activity)
				r.Post("/comments", cfg.CommentsHandler.Add)
				r.Get("/comments", cfg.CommentsHandler.List)
				r.Patch("/comments/{commentID}", cfg.CommentsHandler.Update)
				r.Delete("/comments/{commentID}", cfg.CommentsHandler.Delete)
			})
		})
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
