package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
	httpinfra "creatora-api/internal/infra/http"
	authusecase "creatora-api/internal/usecase/auth"
	contentusecase "creatora-api/internal/usecase/content"
	onboardingusecase "creatora-api/internal/usecase/onboarding"
	postsusecase "creatora-api/internal/usecase/posts"
	profileusecase "creatora-api/internal/usecase/profile"
)

const maxJSONBody = 1 << 20

// Services собирает сервисы, которые обслуживает API.
type Services struct {
	Auth       *authusecase.Service
	Profile    *profileusecase.Service
	Onboarding *onboardingusecase.Service
	Content    *contentusecase.Service
	Posts      *postsusecase.Service
}

// ImageStore хранит изображения с лимитом размера.
type ImageStore interface {
	domain.ImageStore
	MaxBytes() int64
}

type Server struct {
	svc          Services
	authenticate func(http.Handler) http.Handler
	images       ImageStore
	log          zerolog.Logger
	cookieSecure bool
	now          func() time.Time
}

type Option func(*Server)

func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

func WithImageStore(store ImageStore) Option {
	return func(s *Server) {
		s.images = store
	}
}

// WithInsecureCookie убирает флаг Secure у cookie (локальная разработка по http).
func WithInsecureCookie() Option {
	return func(s *Server) {
		s.cookieSecure = false
	}
}

// NewServer принимает middleware аутентификации, которая кладёт httpinfra.Session в контекст.
func NewServer(svc Services, authenticate func(http.Handler) http.Handler, opts ...Option) *Server {
	srv := &Server{
		svc:          svc,
		authenticate: authenticate,
		log:          zerolog.Nop(),
		cookieSecure: true,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleStatus)
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users/auth/signup", s.handleSignup)
		r.Post("/users/auth/login", s.handleLogin)
		r.Post("/users/auth/forgot-password", s.handleForgotPassword)
		r.Post("/users/auth/reset-password", s.handleResetPassword)
		if s.images != nil {
			r.Post("/image/upload", s.handleImageUpload)
		}

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/users/auth/me", s.handleMe)
			r.Post("/users/auth/refresh-token", s.handleRefresh)
			r.Post("/users/auth/logout", s.handleLogout)
			r.Put("/users/auth/update-password", s.handleUpdatePassword)
			r.Delete("/users/auth", s.handleDeleteAccount)

			r.Put("/users/profile/update-profile", s.handleUpdateProfile)

			r.Post("/onboarding/brand", s.handleBrand)
			r.Post("/onboarding/add-post", s.handleAddPost)
			r.Post("/onboarding/analyze-profile", s.handleAnalyzeProfile)

			r.Post("/content-generation/generate", s.handleGenerate)
			r.Get("/content-generation/{postId}/video-script", s.handleVideoScript)
			r.Get("/content-generation/{postId}/posting-schedule", s.handlePostingSchedule)

			r.Get("/users/generated-posts", s.handleListGenerated)
			r.Get("/users/generated-posts/{id}", s.handleGetGenerated)

			if s.images != nil {
				r.Delete("/image/{publicId}", s.handleImageDelete)
			}
		})
	})

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Creatora API is running")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httpinfra.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func session(r *http.Request) httpinfra.Session {
	sess, _ := httpinfra.SessionFrom(r.Context())
	return sess
}

// writeErr переводит ошибки сервисов в HTTP-ответы.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *domain.ValidationError
		perr *domain.AnalysisParseError
		xerr *domain.ExtractionError
		uerr *domain.UpstreamError
	)
	switch {
	case errors.As(err, &verr):
		httpinfra.WriteError(w, http.StatusBadRequest, verr.Message)
	case errors.As(err, &perr):
		s.log.Warn().Err(err).Str("request_id", httpinfra.RequestID(r)).Msg("api: ответ LLM не разобран")
		httpinfra.WriteError(w, http.StatusBadRequest, "Failed to analyze writing style")
	case errors.Is(err, domain.ErrInsufficientCredits):
		httpinfra.WriteError(w, http.StatusBadRequest, "Credit limit reached")
	case errors.As(err, &xerr):
		s.log.Warn().Err(err).Str("request_id", httpinfra.RequestID(r)).Msg("api: извлечение не удалось")
		httpinfra.WriteError(w, http.StatusBadGateway, "Failed to extract content from the provided URL")
	case errors.As(err, &uerr):
		s.log.Warn().Err(err).Str("request_id", httpinfra.RequestID(r)).Msg("api: внешний сервис")
		httpinfra.WriteError(w, http.StatusBadGateway, "Failed to generate content from AI service")
	case errors.Is(err, domain.ErrUnauthorized):
		httpinfra.WriteError(w, http.StatusUnauthorized, publicMessage(err, "Unauthorized"))
	case errors.Is(err, domain.ErrNotFound):
		httpinfra.WriteError(w, http.StatusNotFound, publicMessage(err, "Not found"))
	case errors.Is(err, domain.ErrConflict):
		httpinfra.WriteError(w, http.StatusConflict, publicMessage(err, "Conflict"))
	default:
		s.log.Error().Err(err).Str("request_id", httpinfra.RequestID(r)).Str("path", r.URL.Path).Msg("api: внутренняя ошибка")
		httpinfra.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// publicMessage возвращает сообщение из domain.PublicError. Остальные ошибки
// клиенту не раскрываются.
func publicMessage(err error, fallback string) string {
	var pub *domain.PublicError
	if errors.As(err, &pub) && pub.Message != "" {
		return pub.Message
	}
	return fallback
}
