package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Timeouts задаёт таймауты http.Server и обработки запроса.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Idle     time.Duration
	Request  time.Duration
	Shutdown time.Duration
}

// Server оборачивает chi.Router с базовыми middlewares.
type Server struct {
	Router   chi.Router
	log      zerolog.Logger
	timeouts Timeouts
	srv      *http.Server
}

// NewServer создаёт HTTP сервер.
func NewServer(logger zerolog.Logger, timeouts Timeouts) *Server {
	if timeouts.Request <= 0 {
		timeouts.Request = 60 * time.Second
	}
	if timeouts.Shutdown <= 0 {
		timeouts.Shutdown = 10 * time.Second
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeouts.Request))
	return &Server{Router: r, log: logger, timeouts: timeouts}
}

// Start запускает http.Server и блокируется до его остановки.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Router,
		ReadTimeout:  s.timeouts.Read,
		WriteTimeout: s.timeouts.Write,
		IdleTimeout:  s.timeouts.Idle,
	}
	s.log.Info().Str("addr", addr).Msg("http: сервер запущен")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown корректно завершает работу.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Shutdown)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// RequestID возвращает request ID из контекста chi.
func RequestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
