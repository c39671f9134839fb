package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"creatora-api/internal/domain"
)

// Completer выполняет один вызов LLM.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, jsonMode bool) (string, error)
}

type validatable interface {
	validate() error
}

var fenceRe = regexp.MustCompile("```(?:json)?\\s*")

var errNoObject = errors.New("no JSON object in response")

// DecodeJSON снимает markdown-ограждения, вырезает внешний JSON-объект и проверяет обязательные поля.
func DecodeJSON[T validatable](text string) (T, error) {
	var out T
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return out, &domain.AnalysisParseError{Raw: text, Err: errNoObject}
	}
	dec := json.NewDecoder(strings.NewReader(cleaned[start : end+1]))
	if err := dec.Decode(&out); err != nil {
		return out, &domain.AnalysisParseError{Raw: text, Err: err}
	}
	if err := out.validate(); err != nil {
		return out, &domain.AnalysisParseError{Raw: text, Err: err}
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
