package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
)

type objectStub struct {
	putKey    string
	putType   string
	putBody   []byte
	deleteKey string
}

func (o *objectStub) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	o.putKey = *in.Key
	o.putType = *in.ContentType
	o.putBody, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (o *objectStub) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	o.deleteKey = *in.Key
	return &s3.DeleteObjectOutput{}, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadPNG(t *testing.T) {
	stub := &objectStub{}
	store := newS3Store(stub, S3Config{Bucket: "b", PublicBaseURL: "https://cdn.example.com/"}, zerolog.Nop())
	img, err := store.Upload(context.Background(), bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png", "")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !strings.HasPrefix(stub.putKey, "uploads/") || !strings.HasSuffix(stub.putKey, ".png") {
		t.Fatalf("неверный ключ: %s", stub.putKey)
	}
	if stub.putType != "image/png" || !bytes.Equal(stub.putBody, pngHeader) {
		t.Fatalf("тело или тип объекта искажены")
	}
	if img.URL != "https://cdn.example.com/"+stub.putKey || "uploads/"+img.PublicID != stub.putKey {
		t.Fatalf("неверный результат: %+v", img)
	}

	if err := store.Delete(context.Background(), img.PublicID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if stub.deleteKey != stub.putKey {
		t.Fatalf("удалён не тот объект: %s", stub.deleteKey)
	}
}

func TestUploadRejects(t *testing.T) {
	store := newS3Store(&objectStub{}, S3Config{Bucket: "b", MaxBytes: 10}, zerolog.Nop())
	var validation *domain.ValidationError

	_, err := store.Upload(context.Background(), bytes.NewReader(pngHeader), 100, "image/png", "")
	if !errors.As(err, &validation) {
		t.Fatalf("большой файл должен отклоняться, получили %v", err)
	}
	_, err = store.Upload(context.Background(), strings.NewReader("plain"), 5, "image/png", "")
	if !errors.As(err, &validation) {
		t.Fatalf("не-изображение должно отклоняться, получили %v", err)
	}
	if err := store.Delete(context.Background(), "../secrets"); !errors.As(err, &validation) {
		t.Fatalf("произвольный ключ не должен удаляться, получили %v", err)
	}
}
