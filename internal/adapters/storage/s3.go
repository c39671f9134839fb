package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/metrics"
)

const uploadFolder = "uploads"

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

var publicIDRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.(jpg|png|webp|gif)$`)

// S3Config задаёт параметры S3-совместимого хранилища.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	MaxBytes      int64
}

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store хранит загруженные изображения в бакете.
type S3Store struct {
	client objectAPI
	cfg    S3Config
	log    zerolog.Logger
}

func NewS3Store(ctx context.Context, cfg S3Config, logger zerolog.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	logger.Info().Str("bucket", cfg.Bucket).Str("endpoint", cfg.Endpoint).Msg("storage: s3 клиент инициализирован")
	return newS3Store(s3.NewFromConfig(awsCfg, s3Opts...), cfg, logger), nil
}

func newS3Store(client objectAPI, cfg S3Config, logger zerolog.Logger) *S3Store {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 2 << 20
	}
	return &S3Store{client: client, cfg: cfg, log: logger}
}

// MaxBytes возвращает предельный размер изображения.
func (s *S3Store) MaxBytes() int64 { return s.cfg.MaxBytes }

// Upload проверяет размер и реальный тип содержимого и кладёт объект под ключом uploads/<uuid>.<ext>.
func (s *S3Store) Upload(ctx context.Context, body io.Reader, size int64, _ string, folder string) (domain.UploadedImage, error) {
	if size > s.cfg.MaxBytes {
		return domain.UploadedImage{}, domain.NewValidationError("image must not exceed %d bytes", s.cfg.MaxBytes)
	}
	br := bufio.NewReaderSize(body, 512)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return domain.UploadedImage{}, domain.NewValidationError("only jpg, jpeg, png, webp and gif images are allowed")
	}
	if folder == "" {
		folder = uploadFolder
	}
	publicID := uuid.NewString() + "." + ext
	key := folder + "/" + publicID

	start := time.Now()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          br,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	metrics.ObserveNetworkRequest("storage", "put_object", s.cfg.Bucket, start, err)
	if err != nil {
		return domain.UploadedImage{}, fmt.Errorf("put object: %w", err)
	}
	return domain.UploadedImage{URL: s.publicURL(key), PublicID: publicID}, nil
}

// Delete удаляет ранее загруженное изображение.
func (s *S3Store) Delete(ctx context.Context, publicID string) error {
	if !publicIDRe.MatchString(publicID) {
		return domain.NewValidationError("invalid image id")
	}
	start := time.Now()
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(uploadFolder + "/" + publicID),
	})
	metrics.ObserveNetworkRequest("storage", "delete_object", s.cfg.Bucket, start, err)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *S3Store) publicURL(key string) string {
	switch {
	case s.cfg.PublicBaseURL != "":
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	case s.cfg.Endpoint != "":
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
}

var _ domain.ImageStore = (*S3Store)(nil)
