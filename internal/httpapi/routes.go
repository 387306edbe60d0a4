package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/DoyleJ11/draft-arena/internal/archive"
	"github.com/DoyleJ11/draft-arena/internal/lobby"
	"github.com/DoyleJ11/draft-arena/internal/registry"
	"github.com/DoyleJ11/draft-arena/internal/timer"
	"github.com/DoyleJ11/draft-arena/internal/ws"
)

type Deps struct {
	Lobby    *lobby.Lobby
	Registry *registry.Registry
	Timers   *timer.Coordinator
	Games    archive.Reader
	Origins  []string
	Log      *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	if d.Games == nil {
		d.Games = archive.Nop{}
	}
	log := d.Log.Named("http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: d.Origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler)

	// Public routes
	r.Get("/healthz", Healthz(d))
	r.Get("/ws", ws.Handler(d.Lobby, d.Origins, d.Log))

	r.Route("/api", func(r chi.Router) {
		r.Post("/drafts", CreateDraft(d, log))
		r.Get("/sessions", ListSessions(d))
		r.Get("/sessions/{id}", GetSession(d))
		r.Get("/sessions/{id}/games", ListGames(d, log))
	})
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}
