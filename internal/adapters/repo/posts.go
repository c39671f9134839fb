package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/metrics"
)

const pastPostColumns = `id, user_id, content, platform, url, author, media_url, type, metadata, analysis, created_at`

func scanPastPost(row pgx.Row) (domain.PastPost, error) {
	var (
		post     domain.PastPost
		meta     []byte
		analysis []byte
	)
	if err := row.Scan(&post.ID, &post.UserID, &post.Content, &post.Platform, &post.URL, &post.Author,
		&post.MediaURL, &post.Type, &meta, &analysis, &post.CreatedAt); err != nil {
		return domain.PastPost{}, err
	}
	post.Metadata = map[string]any{}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &post.Metadata); err != nil {
			return domain.PastPost{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	if len(analysis) > 0 && string(analysis) != "null" {
		var a domain.AnalysisResult
		if err := json.Unmarshal(analysis, &a); err != nil {
			return domain.PastPost{}, fmt.Errorf("decode analysis: %w", err)
		}
		post.Analysis = &a
	}
	return post, nil
}

func (p *Postgres) CreatePastPost(ctx context.Context, post domain.PastPost) (domain.PastPost, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	if post.Metadata == nil {
		post.Metadata = map[string]any{}
	}
	meta, err := json.Marshal(post.Metadata)
	if err != nil {
		return domain.PastPost{}, fmt.Errorf("encode metadata: %w", err)
	}
	var analysis []byte
	if post.Analysis != nil {
		if analysis, err = json.Marshal(post.Analysis); err != nil {
			return domain.PastPost{}, fmt.Errorf("encode analysis: %w", err)
		}
	}
	start := time.Now()
	saved, err := scanPastPost(p.pool.QueryRow(ctx, `
INSERT INTO past_posts (user_id, content, platform, url, author, media_url, type, metadata, analysis)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING `+pastPostColumns,
		post.UserID, post.Content, string(post.Platform), post.URL, post.Author, post.MediaURL, string(post.Type), meta, analysis))
	metrics.ObserveNetworkRequest("postgres", "past_posts_insert", "past_posts", start, err)
	return saved, mapErr(err)
}

// ListPastPosts возвращает посты пользователя, новые первыми.
func (p *Postgres) ListPastPosts(ctx context.Context, userID string) ([]domain.PastPost, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT `+pastPostColumns+` FROM past_posts WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	metrics.ObserveNetworkRequest("postgres", "past_posts_list", "past_posts", start, err)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	posts := make([]domain.PastPost, 0)
	for rows.Next() {
		post, err := scanPastPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, mapErr(rows.Err())
}

const generatedColumns = `id, user_id, platform, content, created_at`

func scanGenerated(row pgx.Row) (domain.GeneratedPost, error) {
	var post domain.GeneratedPost
	var content []byte
	if err := row.Scan(&post.ID, &post.UserID, &post.Platform, &content, &post.CreatedAt); err != nil {
		return domain.GeneratedPost{}, err
	}
	post.Content = json.RawMessage(content)
	return post, nil
}

func (p *Postgres) CreateGeneratedPost(ctx context.Context, post domain.GeneratedPost) (domain.GeneratedPost, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	saved, err := scanGenerated(p.pool.QueryRow(ctx, `
INSERT INTO generated_posts (user_id, platform, content)
VALUES ($1, $2, $3)
RETURNING `+generatedColumns,
		post.UserID, post.Platform, []byte(post.Content)))
	metrics.ObserveNetworkRequest("postgres", "generated_posts_insert", "generated_posts", start, err)
	return saved, mapErr(err)
}

// GetGeneratedPost возвращает пост, только если он принадлежит пользователю.
func (p *Postgres) GetGeneratedPost(ctx context.Context, userID, postID string) (domain.GeneratedPost, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	post, err := scanGenerated(p.pool.QueryRow(ctx,
		`SELECT `+generatedColumns+` FROM generated_posts WHERE id=$1 AND user_id=$2`, postID, userID))
	metrics.ObserveNetworkRequest("postgres", "generated_posts_get", "generated_posts", start, err)
	return post, mapErr(err)
}

var generatedOrderColumns = map[string]string{
	"createdAt": "created_at",
	"platform":  "platform",
}

// generatedPostsQuery собирает запросы выборки и подсчёта; колонка сортировки берётся только из белого списка.
func generatedPostsQuery(q domain.GeneratedPostQuery) (list string, count string, args []any) {
	column, ok := generatedOrderColumns[q.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if q.Sort == domain.SortAsc {
		direction = "ASC"
	}
	where := `WHERE user_id=$1 AND ($2 = '' OR content::text ILIKE '%' || $2 || '%' ESCAPE '\' OR platform ILIKE '%' || $2 || '%' ESCAPE '\')`
	count = `SELECT count(*) FROM generated_posts ` + where
	list = fmt.Sprintf(`SELECT %s FROM generated_posts %s ORDER BY %s %s, id %s LIMIT $3 OFFSET $4`,
		generatedColumns, where, column, direction, direction)
	args = []any{q.UserID, escapeLike(q.Search), q.Limit, (q.Page - 1) * q.Limit}
	return list, count, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike экранирует спецсимволы шаблона ILIKE, поиск идёт по подстроке буквально.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ListGeneratedPosts возвращает страницу постов и общее число совпадений.
func (p *Postgres) ListGeneratedPosts(ctx context.Context, q domain.GeneratedPostQuery) ([]domain.GeneratedPost, int, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	list, count, args := generatedPostsQuery(q)

	var total int
	start := time.Now()
	err := p.pool.QueryRow(ctx, count, args[:2]...).Scan(&total)
	metrics.ObserveNetworkRequest("postgres", "generated_posts_count", "generated_posts", start, err)
	if err != nil {
		return nil, 0, mapErr(err)
	}

	start = time.Now()
	rows, err := p.pool.Query(ctx, list, args...)
	metrics.ObserveNetworkRequest("postgres", "generated_posts_list", "generated_posts", start, err)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	posts := make([]domain.GeneratedPost, 0, q.Limit)
	for rows.Next() {
		post, err := scanGenerated(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	return posts, total, mapErr(rows.Err())
}
