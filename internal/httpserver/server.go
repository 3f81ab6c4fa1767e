// internal/httpserver/server.go
//
// HTTP server wiring for the Bunny Rescue backend.
// Responsibilities:
//   - Router + middleware (request IDs, access logs, panic recovery,
//     timeouts, JSON content type, CORS).
//   - Public endpoints: "/", "/health", difficulty table, word list counts,
//     daily leaderboard.
//   - Auth endpoints: /auth/* (auth.go).
//   - Profile, session and daily endpoints behind requireAuth
//     (routes_profiles.go, routes_sessions.go, routes_daily.go).
//   - JSON responses and error mapping shared by all handlers.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Game rules live in internal/game; handlers only load, act, persist.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bunny-rescue/internal/config"
	"github.com/robalobadob/bunny-rescue/internal/daily"
	"github.com/robalobadob/bunny-rescue/internal/difficulty"
	"github.com/robalobadob/bunny-rescue/internal/game"
	"github.com/robalobadob/bunny-rescue/internal/profile"
	"github.com/robalobadob/bunny-rescue/internal/store"
	"github.com/robalobadob/bunny-rescue/internal/words"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Config  config.Config
	Store   store.Store
	Results daily.Results
	Logger  zerolog.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Server bundles the router, persistence and the live game controllers.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	store   store.Store
	results daily.Results
	now     func() time.Time
	live    *liveSessions
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     d.Config,
		store:   d.Store,
		results: d.Results,
		now:     d.Clock,
		live:    newLiveSessions(),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(d.Logger))
	s.r.Use(accessLog)
	s.r.Use(chimw.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		s.r.Use(chimw.Timeout(s.cfg.RequestTimeout))
	}
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "bunny-rescue",
			"endpoints": []string{"/health", "/difficulty", "/auth/*", "/profiles", "/sessions", "/daily/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, words.Stats())
	})

	// --- reference data ---
	s.r.Get("/difficulty", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, difficulty.All())
	})
	s.r.Get("/difficulty/grade/{grade}", s.handleGradeTier)

	s.mountAuthRoutes()
	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		s.mountProfiles(r)
		s.mountSessions(r)
	})
	s.mountDaily(s.r)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Router exposes the router (used by main and tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one line per request through the request's logger.
var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("req_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
})

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ responses ----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errForbidden marks a resource owned by another account.
var errForbidden = errors.New("forbidden")

// fail maps domain errors to status codes. Unknown errors are logged and
// reported as 500.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, errForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, store.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username taken")
	case errors.Is(err, game.ErrCompleted):
		writeError(w, http.StatusConflict, "session_completed")
	case errors.Is(err, game.ErrNoTile),
		errors.Is(err, game.ErrNoWords),
		errors.Is(err, game.ErrNoProfile),
		errors.Is(err, game.ErrUnknownTier),
		errors.Is(err, profile.ErrNickname),
		errors.Is(err, profile.ErrGrade),
		errors.Is(err, profile.ErrTier):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ------------------------------ reference ----------------------------------

func (s *Server) handleGradeTier(w http.ResponseWriter, r *http.Request) {
	g := difficulty.Grade(chi.URLParam(r, "grade"))
	if !g.Valid() {
		writeError(w, http.StatusBadRequest, profile.ErrGrade.Error())
		return
	}
	tier := difficulty.ForGrade(g)
	writeJSON(w, http.StatusOK, map[string]any{
		"grade":  g,
		"tier":   tier,
		"config": difficulty.MustFor(tier),
	})
}
