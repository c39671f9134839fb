package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"creatora-api/internal/adapters/analyzer"
	"creatora-api/internal/adapters/apify"
	"creatora-api/internal/adapters/extractor"
	"creatora-api/internal/adapters/httpapi"
	"creatora-api/internal/adapters/mailer"
	"creatora-api/internal/adapters/postgen"
	"creatora-api/internal/adapters/repo"
	"creatora-api/internal/adapters/storage"
	"creatora-api/internal/domain"
	"creatora-api/internal/infra/auth"
	"creatora-api/internal/infra/cache"
	"creatora-api/internal/infra/config"
	"creatora-api/internal/infra/db"
	"creatora-api/internal/infra/events"
	httpinfra "creatora-api/internal/infra/http"
	"creatora-api/internal/infra/llm"
	logpkg "creatora-api/internal/infra/log"
	"creatora-api/internal/infra/metrics"
	authusecase "creatora-api/internal/usecase/auth"
	contentusecase "creatora-api/internal/usecase/content"
	onboardingusecase "creatora-api/internal/usecase/onboarding"
	postsusecase "creatora-api/internal/usecase/posts"
	profileusecase "creatora-api/internal/usecase/profile"
	"creatora-api/migrations"
)

func main() {
	cfg := config.Load()
	logger := logpkg.NewLogger(cfg.AppEnv)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal().Msg("api: JWT_SECRET_KEY не задан")
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool, migrations.FS, logger.With().Str("component", "migrate").Logger()); err != nil {
		logger.Fatal().Err(err).Msg("api: миграции не применены")
	}
	pg := repo.NewPostgres(pool)

	redisClient, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к Redis")
	}
	defer redisClient.Close()
	tokenStore := cache.NewRedis(redisClient)

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	apifyClient := apify.NewClient(apify.Config{
		BaseURL: cfg.Apify.BaseURL,
		Token:   cfg.Apify.Token,
		Timeout: cfg.Apify.RunTimeout,
	})
	pipeline := extractor.NewPipeline(
		extractor.NewPlatformExtractors(apifyClient),
		extractor.NewFallback(apifyClient),
		cfg.Extraction.Timeout,
		logger.With().Str("component", "extractor").Logger(),
	)

	llmClient := llm.NewClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})
	analyzerLog := logger.With().Str("component", "analyzer").Logger()

	generator, err := postgen.New(cfg.PostGen.URL, postgen.WithTimeout(cfg.PostGen.Timeout))
	if err != nil {
		logger.Fatal().Err(err).Msg("api: клиент генерации постов")
	}

	svc := httpapi.Services{
		Auth: authusecase.NewService(authusecase.Deps{
			Users:     pg,
			Brands:    pg,
			PastPosts: pg,
			Generated: pg,
			Tokens:    issuer,
			Store:     tokenStore,
			Mailer:    mailer.New(newMailTransport(cfg), cfg.Auth.OTPTTL),
		}, authusecase.Config{
			OTPTTL:         cfg.Auth.OTPTTL,
			OTPCooldown:    cfg.Auth.OTPCooldown,
			OTPMaxAttempts: cfg.Auth.OTPMaxAttempts,
			DefaultCredits: cfg.Auth.DefaultCredits,
		}, logger.With().Str("component", "auth").Logger()),
		Profile: profileusecase.NewService(pg),
		Onboarding: onboardingusecase.NewService(
			pg, pg, pipeline,
			analyzer.NewPostAnalyzer(llmClient, analyzerLog),
			analyzer.NewStyleAnalyzer(llmClient),
			publisher,
			logger.With().Str("component", "onboarding").Logger(),
		),
		Content: contentusecase.NewService(contentusecase.Deps{
			Users:     pg,
			Brands:    pg,
			PastPosts: pg,
			Generated: pg,
			Generator: generator,
			Planner:   analyzer.NewSchedulePlanner(llmClient, analyzerLog),
			Events:    publisher,
		}, logger.With().Str("component", "content").Logger()),
		Posts: postsusecase.NewService(pg),
	}

	apiLog := logger.With().Str("component", "api").Logger()
	opts := []httpapi.Option{httpapi.WithLogger(apiLog)}
	if !cfg.Auth.CookieSecure {
		opts = append(opts, httpapi.WithInsecureCookie())
	}
	if cfg.Storage.Bucket != "" {
		images, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:        cfg.Storage.Bucket,
			Region:        cfg.Storage.Region,
			Endpoint:      cfg.Storage.Endpoint,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
			MaxBytes:      cfg.Storage.MaxImageBytes,
		}, logger.With().Str("component", "storage").Logger())
		if err != nil {
			logger.Fatal().Err(err).Msg("api: хранилище изображений")
		}
		opts = append(opts, httpapi.WithImageStore(images))
	} else {
		logger.Warn().Msg("api: S3_BUCKET не задан, загрузка изображений отключена")
	}

	api := httpapi.NewServer(svc, httpinfra.AuthMiddleware(issuer, tokenStore, pg, apiLog), opts...)

	srv := httpinfra.NewServer(logger.With().Str("component", "http").Logger(), httpinfra.Timeouts{
		Read:     cfg.Server.ReadTimeout,
		Write:    cfg.Server.WriteTimeout,
		Request:  cfg.Server.RequestTimeout,
		Shutdown: cfg.Server.ShutdownTimeout,
	})
	srv.Router.Mount("/", api.Router())

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf(":%d", cfg.Port))
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("api: остановка")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("api: сервер остановлен")
		}
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error().Err(err).Msg("api: graceful shutdown")
	}
}

func newPublisher(cfg config.AppConfig, logger zerolog.Logger) (domain.EventPublisher, func()) {
	if cfg.Events.AMQPURL == "" {
		return events.NewLogPublisher(logger.With().Str("component", "events").Logger()), func() {}
	}
	rabbit, err := events.NewRabbitPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к RabbitMQ")
	}
	return rabbit, func() { _ = rabbit.Close() }
}

func newMailTransport(cfg config.AppConfig) mailer.Transport {
	if cfg.Mail.Provider == "smtp" {
		return mailer.NewSMTP(mailer.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			User:     cfg.Mail.SMTPUser,
			Password: cfg.Mail.SMTPPassword,
			From:     cfg.Mail.FromEmail,
			FromName: cfg.Mail.FromName,
		})
	}
	return mailer.NewBrevo(mailer.BrevoConfig{
		APIKey:    cfg.Mail.BrevoAPIKey,
		BaseURL:   cfg.Mail.BrevoBaseURL,
		FromEmail: cfg.Mail.FromEmail,
		FromName:  cfg.Mail.FromName,
	})
}
