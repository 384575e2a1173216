package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/swayam-agent/server/internal/agent/graph"
	logx "github.com/swayam-agent/server/pkg/logger"
)

// Config is the HTTP boundary configuration.
type Config struct {
	Addr           string   `envconfig:"HTTP_ADDR" default:":8080"`
	AllowedOrigins []string `envconfig:"HTTP_ALLOWED_ORIGINS" default:"*"`
	RequestTimeout int      `envconfig:"HTTP_REQUEST_TIMEOUT_SECONDS" default:"120"`
	MaxAudioBytes  int64    `envconfig:"HTTP_MAX_AUDIO_BYTES" default:"10485760"`
}

// Server is a thin wrapper over chi + the stdlib http.Server.
type Server struct {
	cfg Config
	srv *http.Server
}

// New builds the router: CORS, recoverer, request logging and the voice
// endpoint backed by the turn runner.
func New(cfg Config, runner graph.Runner) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.RequestTimeout) * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{sessionIDHeader},
	}))

	h := &voiceHandler{runner: runner, maxAudioBytes: cfg.MaxAudioBytes}
	r.Get("/healthz", handleHealth)
	r.Post("/process_voice", h.handleProcessVoice)

	return &Server{
		cfg: cfg,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run starts the server and blocks until it is shut down.
func (s *Server) Run() error {
	logx.Info().Str("addr", s.cfg.Addr).Msg("http listening")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logx.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
