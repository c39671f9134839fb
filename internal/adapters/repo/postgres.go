package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"creatora-api/internal/domain"
	"creatora-api/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.UserRepo          = (*Postgres)(nil)
	_ domain.PastPostRepo      = (*Postgres)(nil)
	_ domain.BrandProfileRepo  = (*Postgres)(nil)
	_ domain.GeneratedPostRepo = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// mapErr переводит ошибки pgx в доменные.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
		case "22P02", "23503":
			// битый uuid или несуществующий владелец
			return domain.ErrNotFound
		}
	}
	return err
}

const userColumns = `id, email, password_hash, name, bio, profile_image_url, plan, credits_used, credits_limit, is_active, reset_otp, reset_otp_expires_at, created_at, updated_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user     domain.User
		otp      sql.NullString
		otpUntil sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Bio, &user.ProfileImageURL,
		&user.Plan, &user.CreditsUsed, &user.CreditsLimit, &user.IsActive, &otp, &otpUntil, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	if otp.Valid {
		user.ResetOTP = otp.String
	}
	if otpUntil.Valid {
		ts := otpUntil.Time
		user.ResetOTPExpiresAt = &ts
	}
	return user, nil
}

// CreateUser создаёт пользователя. Занятый email даёт ErrConflict.
func (p *Postgres) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	if user.Plan == "" {
		user.Plan = domain.PlanFree
	}
	start := time.Now()
	created, err := scanUser(p.pool.QueryRow(ctx, `
INSERT INTO users (email, password_hash, name, plan, credits_limit)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+userColumns,
		user.Email, user.PasswordHash, user.Name, user.Plan, user.CreditsLimit))
	metrics.ObserveNetworkRequest("postgres", "users_insert", "users", start, err)
	return created, mapErr(err)
}

func (p *Postgres) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	user, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	metrics.ObserveNetworkRequest("postgres", "users_get_by_id", "users", start, err)
	return user, mapErr(err)
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	user, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1)`, email))
	metrics.ObserveNetworkRequest("postgres", "users_get_by_email", "users", start, err)
	return user, mapErr(err)
}

func (p *Postgres) exec(ctx context.Context, op, table, query string, args ...any) (pgconn.CommandTag, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, query, args...)
	metrics.ObserveNetworkRequest("postgres", op, table, start, err)
	return tag, mapErr(err)
}

func (p *Postgres) UpdatePassword(ctx context.Context, userID, hash string) error {
	tag, err := p.exec(ctx, "users_update_password", "users",
		`UPDATE users SET password_hash=$2, updated_at=now() WHERE id=$1`, userID, hash)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}

func (p *Postgres) SetResetOTP(ctx context.Context, userID, otp string, expiresAt time.Time) error {
	tag, err := p.exec(ctx, "users_set_otp", "users",
		`UPDATE users SET reset_otp=$2, reset_otp_expires_at=$3, updated_at=now() WHERE id=$1`, userID, otp, expiresAt)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}

// ResetPasswordWithOTP меняет пароль и гасит OTP одним запросом.
func (p *Postgres) ResetPasswordWithOTP(ctx context.Context, userID, hash string) error {
	tag, err := p.exec(ctx, "users_reset_password", "users",
		`UPDATE users SET password_hash=$2, reset_otp=NULL, reset_otp_expires_at=NULL, updated_at=now() WHERE id=$1`, userID, hash)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}

// UpdateProfile обновляет только переданные поля.
func (p *Postgres) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (domain.User, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	user, err := scanUser(p.pool.QueryRow(ctx, `
UPDATE users SET
	name = COALESCE($2, name),
	email = COALESCE($3, email),
	bio = COALESCE($4, bio),
	profile_image_url = COALESCE($5, profile_image_url),
	updated_at = now()
WHERE id=$1
RETURNING `+userColumns,
		userID, upd.Name, upd.Email, upd.Bio, upd.ProfileImageURL))
	metrics.ObserveNetworkRequest("postgres", "users_update_profile", "users", start, err)
	return user, mapErr(err)
}

// DeleteUser удаляет пользователя; посты и профиль бренда удаляются каскадом.
func (p *Postgres) DeleteUser(ctx context.Context, userID string) error {
	tag, err := p.exec(ctx, "users_delete", "users", `DELETE FROM users WHERE id=$1`, userID)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return err
}

// IncrementCredits атомарно списывает кредит, если лимит не исчерпан.
func (p *Postgres) IncrementCredits(ctx context.Context, userID string) error {
	tag, err := p.exec(ctx, "users_increment_credits", "users",
		`UPDATE users SET credits_used = credits_used + 1, updated_at=now() WHERE id=$1 AND credits_used < credits_limit`, userID)
	if err == nil && tag.RowsAffected() == 0 {
		return domain.ErrInsufficientCredits
	}
	return err
}
