package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInsufficientCredits = errors.New("credit limit reached")
)

// ValidationError означает некорректный ввод пользователя.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError создаёт ValidationError с форматированным сообщением.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ExtractionError означает, что удалённый скрейпинг не вернул данных или упал.
type ExtractionError struct {
	Platform Platform
	Source   string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("extraction %s (%s): %v", e.Platform, e.Source, e.Err)
	}
	return fmt.Sprintf("extraction %s: %v", e.Platform, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// AnalysisParseError означает, что ответ LLM не соответствует ожидаемой схеме.
type AnalysisParseError struct {
	Raw string
	Err error
}

func (e *AnalysisParseError) Error() string {
	return fmt.Sprintf("llm response parse: %v", e.Err)
}

func (e *AnalysisParseError) Unwrap() error { return e.Err }

// UpstreamError означает, что внешний сервис генерации вернул ошибку.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PublicError связывает класс ошибки (ErrNotFound, ErrConflict, ErrUnauthorized)
// с сообщением, которое разрешено показать клиенту.
type PublicError struct {
	Message string
	Kind    error
}

// NewPublicError создаёт PublicError заданного класса.
func NewPublicError(kind error, message string) *PublicError {
	return &PublicError{Message: message, Kind: kind}
}

func (e *PublicError) Error() string { return e.Message + ": " + e.Kind.Error() }

func (e *PublicError) Unwrap() error { return e.Kind }
