package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию API.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Port        int    `envconfig:"PORT" default:"8001"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Server struct {
		ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"180s"`
		RequestTimeout  time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"170s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	} `envconfig:""`

	PGDSN     string `envconfig:"PG_DSN"`
	RedisAddr string `envconfig:"REDIS_ADDR"`

	Auth struct {
		JWTSecret      string        `envconfig:"JWT_SECRET_KEY"`
		TokenTTL       time.Duration `envconfig:"JWT_TTL" default:"1h"`
		OTPTTL         time.Duration `envconfig:"OTP_TTL" default:"15m"`
		OTPCooldown    time.Duration `envconfig:"OTP_COOLDOWN" default:"60s"`
		OTPMaxAttempts int           `envconfig:"OTP_MAX_ATTEMPTS" default:"5"`
		CookieSecure   bool          `envconfig:"AUTH_COOKIE_SECURE" default:"true"`
		DefaultCredits int           `envconfig:"DEFAULT_CREDITS_LIMIT" default:"10"`
	} `envconfig:""`

	Apify struct {
		Token      string        `envconfig:"APIFY_API_TOKEN"`
		BaseURL    string        `envconfig:"APIFY_BASE_URL" default:"https://api.apify.com"`
		RunTimeout time.Duration `envconfig:"APIFY_RUN_TIMEOUT" default:"60s"`
	} `envconfig:""`

	Extraction struct {
		Timeout time.Duration `envconfig:"EXTRACTION_TIMEOUT" default:"90s"`
	} `envconfig:""`

	LLM struct {
		APIKey  string        `envconfig:"GEMINI_API_KEY"`
		BaseURL string        `envconfig:"LLM_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
		Model   string        `envconfig:"LLM_MODEL" default:"gemini-2.5-flash"`
		Timeout time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	} `envconfig:""`

	PostGen struct {
		URL     string        `envconfig:"POSTGEN_URL" default:"https://creatora-fast-api-post-generation-e.vercel.app"`
		Timeout time.Duration `envconfig:"POSTGEN_TIMEOUT" default:"30s"`
	} `envconfig:""`

	Mail struct {
		Provider     string `envconfig:"MAIL_PROVIDER" default:"brevo"`
		BrevoAPIKey  string `envconfig:"BREVO_API_KEY"`
		BrevoBaseURL string `envconfig:"BREVO_BASE_URL" default:"https://api.brevo.com"`
		FromEmail    string `envconfig:"MAIL_FROM" default:"no-reply@creatora.app"`
		FromName     string `envconfig:"MAIL_FROM_NAME" default:"Creatora"`
		SMTPHost     string `envconfig:"SMTP_HOST"`
		SMTPPort     string `envconfig:"SMTP_PORT" default:"587"`
		SMTPUser     string `envconfig:"SMTP_USER"`
		SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	} `envconfig:""`

	Storage struct {
		Bucket        string `envconfig:"S3_BUCKET"`
		Region        string `envconfig:"S3_REGION" default:"auto"`
		Endpoint      string `envconfig:"S3_ENDPOINT"`
		AccessKey     string `envconfig:"S3_ACCESS_KEY"`
		SecretKey     string `envconfig:"S3_SECRET_KEY"`
		PublicBaseURL string `envconfig:"S3_PUBLIC_BASE_URL"`
		MaxImageBytes int64  `envconfig:"IMAGE_MAX_BYTES" default:"2097152"`
	} `envconfig:""`

	Events struct {
		AMQPURL  string `envconfig:"AMQP_URL"`
		Exchange string `envconfig:"EVENTS_EXCHANGE" default:"creatora.events"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
