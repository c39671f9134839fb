package profile

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"creatora-api/internal/domain"
)

const (
	maxNameLength = 100
	maxBioLength  = 500
)

// Service обновляет профиль пользователя.
type Service struct {
	users domain.UserRepo
}

func NewService(users domain.UserRepo) *Service {
	return &Service{users: users}
}

// UpdateInput содержит поля из запроса. nil означает «не менять».
type UpdateInput struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Bio             *string `json:"bio"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

// Validate нормализует и проверяет ввод.
func (in UpdateInput) Validate() (domain.ProfileUpdate, error) {
	var upd domain.ProfileUpdate
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if utf8.RuneCountInString(name) > maxNameLength {
			return upd, domain.NewValidationError("name must be shorter than or equal to %d characters", maxNameLength)
		}
		upd.Name = &name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			return upd, domain.NewValidationError("email must be an email")
		}
		upd.Email = &email
	}
	if in.Bio != nil {
		if utf8.RuneCountInString(*in.Bio) > maxBioLength {
			return upd, domain.NewValidationError("bio must be shorter than or equal to %d characters", maxBioLength)
		}
		bio := *in.Bio
		upd.Bio = &bio
	}
	if in.ProfileImageURL != nil {
		raw := strings.TrimSpace(*in.ProfileImageURL)
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return upd, domain.NewValidationError("profileImageUrl must be a URL address")
		}
		upd.ProfileImageURL = &raw
	}
	return upd, nil
}

// Update применяет частичное обновление профиля.
func (s *Service) Update(ctx context.Context, p domain.Principal, in UpdateInput) (domain.User, error) {
	upd, err := in.Validate()
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.UpdateProfile(ctx, p.UserID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.User{}, domain.NewPublicError(domain.ErrConflict, "Email already in use")
		}
		return domain.User{}, fmt.Errorf("обновление профиля: %w", err)
	}
	return user, nil
}
