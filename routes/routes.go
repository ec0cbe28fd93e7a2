package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/racket-club/docs"
	"github.com/Dosada05/racket-club/handlers"
	"github.com/Dosada05/racket-club/middleware"
	"github.com/Dosada05/racket-club/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Competitions *handlers.CompetitionHandler
	Matches      *handlers.MatchHandler
	Leagues      *handlers.LeagueHandler
	WebSocket    *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	loginLimiter := middleware.NewRateLimiter(6*time.Second, 10, 15*time.Minute)

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.SwaggerJSON)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// websocket живёт вне таймаута, остальное API ограничено по времени
	router.Get("/ws/competitions/{competitionID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.With(loginLimiter.Handler).Post("/auth/token", h.Auth.Login)

		r.Route("/competitions/{competitionID}", func(r chi.Router) {
			r.Get("/", h.Competitions.GetCompetition)
			r.Get("/matches", h.Competitions.ListMatches)
			r.Get("/groups", h.Competitions.ListGroups)
			r.Get("/standings", h.Competitions.GetStandings)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(opts.JWTSecret))
				r.Use(middleware.Authorize(services.RoleOrganizer))

				r.Post("/bracket", h.Competitions.GenerateBracket)
				r.Post("/groups", h.Competitions.GenerateGroups)
				r.Post("/knockout", h.Competitions.GenerateKnockout)
			})
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/", h.Matches.GetMatch)
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(opts.JWTSecret))
				r.Use(middleware.Authorize(services.RoleOrganizer))

				r.Post("/result", h.Matches.SubmitResult)
				r.Post("/bye", h.Matches.ResolveBye)
			})
		})

		r.Route("/leagues/{leagueID}", func(r chi.Router) {
			r.Get("/matches", h.Leagues.ListMatches)
			r.With(
				middleware.Authenticate(opts.JWTSecret),
				middleware.Authorize(services.RoleOrganizer),
			).Post("/schedule", h.Leagues.GenerateSchedule)
		})

		r.With(
			middleware.Authenticate(opts.JWTSecret),
			middleware.Authorize(services.RoleOrganizer),
		).Post("/league-matches/{matchID}/result", h.Leagues.SubmitResult)
	})
}
