package posts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"creatora-api/internal/domain"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

var orderColumns = map[string]bool{"createdAt": true, "platform": true}

// Service отдаёт сгенерированные посты пользователя.
type Service struct {
	repo domain.GeneratedPostRepo
}

func NewService(repo domain.GeneratedPostRepo) *Service {
	return &Service{repo: repo}
}

// ListParams хранит сырые параметры запроса.
type ListParams struct {
	Page    string
	Limit   string
	Search  string
	Sort    string
	OrderBy string
}

// Page содержит страницу постов и пагинацию.
type Page struct {
	Data []domain.GeneratedPost `json:"data"`
	Meta domain.PageMeta        `json:"meta"`
}

// Normalize приводит параметры к допустимым значениям.
func (lp ListParams) Normalize(userID string) (domain.GeneratedPostQuery, error) {
	q := domain.GeneratedPostQuery{
		UserID:  userID,
		Page:    1,
		Limit:   defaultLimit,
		Search:  strings.TrimSpace(lp.Search),
		Sort:    domain.SortDesc,
		OrderBy: "createdAt",
	}
	if lp.Page != "" {
		n, err := strconv.Atoi(lp.Page)
		if err != nil || n < 1 {
			return q, domain.NewValidationError("page must not be less than 1")
		}
		q.Page = n
	}
	if lp.Limit != "" {
		n, err := strconv.Atoi(lp.Limit)
		if err != nil || n < 1 || n > maxLimit {
			return q, domain.NewValidationError("limit must be between 1 and %d", maxLimit)
		}
		q.Limit = n
	}
	switch strings.ToLower(lp.Sort) {
	case "":
	case string(domain.SortAsc):
		q.Sort = domain.SortAsc
	case string(domain.SortDesc):
	default:
		return q, domain.NewValidationError("sort must be one of the following values: asc, desc")
	}
	if lp.OrderBy != "" {
		if !orderColumns[lp.OrderBy] {
			return q, domain.NewValidationError("orderBy must be one of the following values: createdAt, platform")
		}
		q.OrderBy = lp.OrderBy
	}
	return q, nil
}

// List возвращает страницу постов пользователя.
func (s *Service) List(ctx context.Context, p domain.Principal, lp ListParams) (Page, error) {
	q, err := lp.Normalize(p.UserID)
	if err != nil {
		return Page{}, err
	}
	items, total, err := s.repo.ListGeneratedPosts(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("список постов: %w", err)
	}
	if items == nil {
		items = []domain.GeneratedPost{}
	}
	pages := (total + q.Limit - 1) / q.Limit
	if pages < 1 {
		pages = 1
	}
	return Page{
		Data: items,
		Meta: domain.PageMeta{
			Total:     total,
			NoOfPages: pages,
			Page:      q.Page,
			Limit:     q.Limit,
		},
	}, nil
}

// Get возвращает пост, только если он принадлежит пользователю.
func (s *Service) Get(ctx context.Context, p domain.Principal, id string) (domain.GeneratedPost, error) {
	post, err := s.repo.GetGeneratedPost(ctx, p.UserID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.GeneratedPost{}, domain.NewPublicError(domain.ErrNotFound, "Post not found")
		}
		return domain.GeneratedPost{}, fmt.Errorf("получение поста: %w", err)
	}
	return post, nil
}
