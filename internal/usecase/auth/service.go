package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
	authinfra "creatora-api/internal/infra/auth"
)

const (
	minSignupPassword = 6
	minNewPassword    = 8
)

func otpAttemptsKey(email string) string { return "otp-reset:" + email }

// TokenIssuer выпускает access-токены.
type TokenIssuer interface {
	Issue(user domain.User) (string, *authinfra.Claims, error)
}

// Config задаёт параметры аутентификации.
type Config struct {
	OTPTTL         time.Duration
	OTPCooldown    time.Duration
	OTPMaxAttempts int
	DefaultCredits int
}

// Deps собирает зависимости сервиса.
type Deps struct {
	Users     domain.UserRepo
	Brands    domain.BrandProfileRepo
	PastPosts domain.PastPostRepo
	Generated domain.GeneratedPostRepo
	Tokens    TokenIssuer
	Store     domain.TokenStore
	Mailer    domain.Mailer
}

// Service реализует регистрацию, вход и управление паролем.
type Service struct {
	deps Deps
	cfg  Config
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(deps Deps, cfg Config, logger zerolog.Logger) *Service {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 15 * time.Minute
	}
	if cfg.OTPCooldown <= 0 {
		cfg.OTPCooldown = time.Minute
	}
	if cfg.OTPMaxAttempts <= 0 {
		cfg.OTPMaxAttempts = 5
	}
	if cfg.DefaultCredits <= 0 {
		cfg.DefaultCredits = 10
	}
	return &Service{deps: deps, cfg: cfg, log: logger, now: time.Now}
}

// PublicUser описывает пользователя в ответе на вход.
type PublicUser struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Plan  domain.Plan `json:"plan"`
	Name  string      `json:"name"`
}

// Result содержит выданный токен и пользователя.
type Result struct {
	AccessToken string     `json:"accessToken"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	User        PublicUser `json:"user"`
}

func (s *Service) issue(user domain.User) (Result, error) {
	token, claims, err := s.deps.Tokens.Issue(user)
	if err != nil {
		return Result{}, fmt.Errorf("выпуск токена: %w", err)
	}
	return Result{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        PublicUser{ID: user.ID, Email: user.Email, Plan: user.Plan, Name: user.Name},
	}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.NewValidationError("email must be a valid email address")
	}
	return email, nil
}

func validatePassword(field, password string, min int) error {
	if len(password) < min {
		return domain.NewValidationError("%s must be longer than or equal to %d characters", field, min)
	}
	if len(password) > authinfra.MaxPasswordBytes {
		return domain.NewValidationError("%s must be shorter than or equal to %d bytes", field, authinfra.MaxPasswordBytes)
	}
	return nil
}

// Signup регистрирует пользователя и сразу выдаёт токен.
func (s *Service) Signup(ctx context.Context, email, password, name string) (Result, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return Result{}, err
	}
	if err := validatePassword("password", password, minSignupPassword); err != nil {
		return Result{}, err
	}
	if _, err := s.deps.Users.GetUserByEmail(ctx, email); err == nil {
		return Result{}, domain.NewPublicError(domain.ErrConflict, "Email already in use")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return Result{}, fmt.Errorf("поиск пользователя: %w", err)
	}
	hash, err := authinfra.HashPassword(password)
	if err != nil {
		return Result{}, fmt.Errorf("хэширование пароля: %w", err)
	}
	user, err := s.deps.Users.CreateUser(ctx, domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Plan:         domain.PlanFree,
		CreditsLimit: s.cfg.DefaultCredits,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return Result{}, domain.NewPublicError(domain.ErrConflict, "Email already in use")
		}
		return Result{}, fmt.Errorf("создание пользователя: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("auth: пользователь зарегистрирован")
	return s.issue(user)
}

// Login проверяет пароль. Старые scrypt-хэши перехэшируются в bcrypt.
func (s *Service) Login(ctx context.Context, email, password string) (Result, error) {
	invalid := domain.NewPublicError(domain.ErrUnauthorized, "Invalid credentials")
	user, err := s.deps.Users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Result{}, invalid
		}
		return Result{}, fmt.Errorf("поиск пользователя: %w", err)
	}
	if !authinfra.CheckPassword(password, user.PasswordHash) || !user.IsActive {
		return Result{}, invalid
	}
	if authinfra.NeedsRehash(user.PasswordHash) {
		if hash, err := authinfra.HashPassword(password); err == nil {
			if err := s.deps.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
				s.log.Warn().Err(err).Str("user_id", user.ID).Msg("auth: не удалось перехэшировать пароль")
			}
		}
	}
	return s.issue(user)
}

// Me возвращает пользователя со связанными данными.
func (s *Service) Me(ctx context.Context, p domain.Principal) (domain.UserProfile, error) {
	user, err := s.deps.Users.GetUserByID(ctx, p.UserID)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("получение пользователя: %w", err)
	}
	profile := domain.UserProfile{User: user, PastPosts: []domain.PastPost{}, GeneratedPosts: []domain.GeneratedPost{}}
	brand, err := s.deps.Brands.GetBrandProfile(ctx, user.ID)
	switch {
	case err == nil:
		profile.BrandProfile = &brand
	case !errors.Is(err, domain.ErrNotFound):
		return domain.UserProfile{}, fmt.Errorf("профиль бренда: %w", err)
	}
	if profile.PastPosts, err = s.deps.PastPosts.ListPastPosts(ctx, user.ID); err != nil {
		return domain.UserProfile{}, fmt.Errorf("прошлые посты: %w", err)
	}
	generated, _, err := s.deps.Generated.ListGeneratedPosts(ctx, domain.GeneratedPostQuery{
		UserID: user.ID, Page: 1, Limit: 100, Sort: domain.SortDesc, OrderBy: "createdAt",
	})
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("сгенерированные посты: %w", err)
	}
	profile.GeneratedPosts = generated
	return profile, nil
}

// Refresh перевыпускает токен активному пользователю.
func (s *Service) Refresh(ctx context.Context, p domain.Principal) (Result, error) {
	user, err := s.deps.Users.GetUserByID(ctx, p.UserID)
	if err != nil || !user.IsActive {
		return Result{}, domain.NewPublicError(domain.ErrUnauthorized, "User not found or inactive")
	}
	return s.issue(user)
}

// UpdatePasswordInput описывает запрос смены пароля.
type UpdatePasswordInput struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func (s *Service) UpdatePassword(ctx context.Context, p domain.Principal, in UpdatePasswordInput) error {
	if err := validatePassword("newPassword", in.NewPassword, minNewPassword); err != nil {
		return err
	}
	if err := validatePassword("confirmNewPassword", in.ConfirmNewPassword, minNewPassword); err != nil {
		return err
	}
	user, err := s.deps.Users.GetUserByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("получение пользователя: %w", err)
	}
	if !authinfra.CheckPassword(in.CurrentPassword, user.PasswordHash) {
		return domain.NewPublicError(domain.ErrUnauthorized, "Current password is incorrect")
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return domain.NewValidationError("New passwords do not match")
	}
	if authinfra.CheckPassword(in.NewPassword, user.PasswordHash) {
		return domain.NewValidationError("New password must be different from current password")
	}
	hash, err := authinfra.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("хэширование пароля: %w", err)
	}
	return s.deps.Users.UpdatePassword(ctx, user.ID, hash)
}

// ForgotPassword создаёт 6-значный OTP и отправляет его письмом. Повтор для того же email не чаще раза в OTPCooldown.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.deps.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewPublicError(domain.ErrNotFound, "User not found")
		}
		return fmt.Errorf("поиск пользователя: %w", err)
	}
	allowed, err := s.deps.Store.Cooldown(ctx, "otp:"+email, s.cfg.OTPCooldown)
	if err != nil {
		return fmt.Errorf("кулдаун OTP: %w", err)
	}
	if !allowed {
		return domain.NewValidationError("Please wait before requesting another code")
	}
	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("генерация OTP: %w", err)
	}
	if err := s.deps.Users.SetResetOTP(ctx, user.ID, otp, s.now().Add(s.cfg.OTPTTL)); err != nil {
		return fmt.Errorf("сохранение OTP: %w", err)
	}
	if err := s.deps.Store.ClearAttempts(ctx, otpAttemptsKey(email)); err != nil {
		return fmt.Errorf("сброс попыток OTP: %w", err)
	}
	if err := s.deps.Mailer.SendOTP(ctx, user.Email, otp); err != nil {
		return fmt.Errorf("отправка OTP: %w", err)
	}
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// ResetPasswordInput описывает сброс пароля по OTP.
type ResetPasswordInput struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword меняет пароль по OTP. После OTPMaxAttempts неверных кодов OTP гасится,
// и нужен новый код.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := s.deps.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewPublicError(domain.ErrNotFound, "User not found")
		}
		return fmt.Errorf("поиск пользователя: %w", err)
	}
	otp := strings.TrimSpace(in.OTP)
	if user.ResetOTP == "" {
		return domain.NewValidationError("Invalid OTP")
	}
	if subtle.ConstantTimeCompare([]byte(user.ResetOTP), []byte(otp)) != 1 {
		return s.failedOTPAttempt(ctx, user.ID, email)
	}
	if user.ResetOTPExpiresAt == nil || user.ResetOTPExpiresAt.Before(s.now()) {
		return domain.NewValidationError("OTP has expired")
	}
	if err := validatePassword("newPassword", in.NewPassword, minSignupPassword); err != nil {
		return err
	}
	hash, err := authinfra.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("хэширование пароля: %w", err)
	}
	if err := s.deps.Users.ResetPasswordWithOTP(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.deps.Store.ClearAttempts(ctx, otpAttemptsKey(email)); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("auth: счётчик попыток OTP не сброшен")
	}
	return nil
}

func (s *Service) failedOTPAttempt(ctx context.Context, userID, email string) error {
	n, err := s.deps.Store.CountAttempt(ctx, otpAttemptsKey(email), s.cfg.OTPTTL)
	if err != nil {
		return fmt.Errorf("счётчик попыток OTP: %w", err)
	}
	if n < int64(s.cfg.OTPMaxAttempts) {
		return domain.NewValidationError("Invalid OTP")
	}
	if err := s.deps.Users.SetResetOTP(ctx, userID, "", s.now()); err != nil {
		return fmt.Errorf("сброс OTP: %w", err)
	}
	s.log.Warn().Str("user_id", userID).Int64("attempts", n).Msg("auth: OTP погашен после неверных попыток")
	return domain.NewValidationError("Too many invalid attempts. Please request a new code")
}

// DeleteAccount удаляет аккаунт после проверки пароля.
func (s *Service) DeleteAccount(ctx context.Context, p domain.Principal, password string) error {
	user, err := s.deps.Users.GetUserByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("получение пользователя: %w", err)
	}
	if !authinfra.CheckPassword(password, user.PasswordHash) {
		return domain.NewValidationError("Invalid password")
	}
	if err := s.deps.Mailer.SendAccountDeletion(ctx, user.Email, user.Name); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("auth: письмо об удалении не отправлено")
	}
	if err := s.deps.Users.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("удаление пользователя: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("auth: аккаунт удалён")
	return nil
}

// Logout отзывает токен до истечения его срока.
func (s *Service) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return s.deps.Store.Revoke(ctx, tokenID, ttl)
}
