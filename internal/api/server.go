// Package api is the dashboard's HTTP surface.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/chat"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/insights"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/resilience"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/shell"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/snapshot"
)

// Server holds the long-lived dependencies shared by all requests.
// Anything holding a random source is built per request.
type Server struct {
	Shell     *shell.Shell
	Loader    *snapshot.Loader
	Assistant *chat.Assistant
	// Breakers is optional; when set its states appear in /health.
	Breakers *resilience.Breakers

	AllowedOrigins []string
	// HeatmapSeed fixes heat point clouds when non-zero.
	HeatmapSeed uint64
	// NewFeed builds the insight feed for one stream connection.
	NewFeed func() *insights.Feed
	Now     func() time.Time
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	if s.NewFeed == nil {
		s.NewFeed = insights.NewFeed
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	origins := s.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signin", s.handleSignIn)
		r.Post("/auth/signup", s.handleSignUp)
		r.Get("/chat/welcome", s.handleChatWelcome)

		r.With(s.optionalSession).Get("/session", s.handleSession)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Post("/auth/signout", s.handleSignOut)
			r.Get("/regions", s.handleRegions)
			r.Get("/snapshot/latest", s.handleLatestSnapshot)
			r.Post("/chat", s.handleChat)

			r.Route("/user", func(r chi.Router) {
				r.Get("/dashboard", s.handleUserDashboard)
				r.Get("/consumption", s.handleUserConsumption)
				r.Post("/simulate", s.handleUserSimulate)
			})

			r.Route("/operator", func(r chi.Router) {
				r.Use(s.requireOperator)
				r.Get("/dashboard", s.handleOperatorDashboard)
				r.Get("/heatmap", s.handleHeatmap)
				r.Get("/insights", s.handleInsights)
				r.Get("/insights/stream", s.handleInsightStream)
				r.Get("/report.xlsx", s.handleReport)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.Breakers != nil {
		body["breakers"] = s.Breakers.States()
	}
	if s.Shell != nil && s.Shell.Roles != nil {
		body["role_cache"] = s.Shell.Roles.Stats()
	}
	writeJSON(w, http.StatusOK, body)
}
