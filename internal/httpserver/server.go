// internal/httpserver/server.go
//
// HTTP server wiring for the Spordle backend.
// Responsibilities:
//   - Router + middleware (request ids, access log, metrics, CORS, timeouts,
//     panic recovery, gzip on JSON routes).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Game endpoints under /api/game, catalog lookups under /api/songs,
//     archive summary under /api/daily, catalog editing under /api/admin.
//
// Notes:
//   - Media routes are left uncompressed and untimed so range requests and
//     long audio downloads behave.
//   - No endpoint ever returns the target's catalog id before the round ends.

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/spordle/internal/catalog"
	"github.com/robalobadob/spordle/internal/daily"
	"github.com/robalobadob/spordle/internal/media"
	"github.com/robalobadob/spordle/internal/metrics"
	"github.com/robalobadob/spordle/internal/round"
)

// Summarizer reports archived results for a date.
type Summarizer interface {
	Summary(ctx context.Context, date string) (daily.Summary, error)
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Rounds       *round.Service
	Catalog      catalog.Catalog
	Archive      Summarizer
	Media        *media.Server
	Metrics      metrics.Recorder
	ClientOrigin string
	Timeout      time.Duration
}

// Server bundles the router and its dependencies.
type Server struct {
	r *chi.Mux
	Deps
	now func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.Metrics == nil {
		d.Metrics = metrics.Noop{}
	}
	if d.Timeout <= 0 {
		d.Timeout = 10 * time.Second
	}
	s := &Server{r: chi.NewRouter(), Deps: d, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(metrics.Middleware(d.Metrics))
	s.r.Use(cors(d.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "spordle",
			"endpoints": []string{"/health", "POST /api/game/start", "POST /api/game/{sid}/guess", "/api/songs"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	s.r.Route("/api", func(api chi.Router) {
		// JSON endpoints: compressed and time bounded.
		api.Group(func(j chi.Router) {
			j.Use(chimw.Timeout(d.Timeout))
			j.Use(gzipJSON)
			s.mountGame(j)
			s.mountSongs(j)
			s.mountDaily(j)
			s.mountAdmin(j)
		})
		// Media endpoints stream files with range support.
		api.Group(s.mountMedia)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: r.URL.Path})
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method_not_allowed"})
	})

	return s
}

// Router exposes the internal router (useful for tests and http.Server).
func (s *Server) Router() chi.Router { return s.r }

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// ----------------------------- middleware ----------------------------------

func accessLog(r *http.Request, status, size int, d time.Duration) {
	lvl := zerolog.InfoLevel
	if status >= http.StatusInternalServerError {
		lvl = zerolog.WarnLevel
	}
	hlog.FromRequest(r).WithLevel(lvl).
		Str("req_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

func gzipJSON(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) }

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Range")
			w.Header().Set("Access-Control-Expose-Headers", media.LimitHeader+", Content-Range, Retry-After")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
