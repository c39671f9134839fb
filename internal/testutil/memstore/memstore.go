// Package memstore содержит тестовый двойник хранилищ: репозитории, TokenStore и
// EventPublisher поверх map. Используется только в тестах сервисов и HTTP-слоя.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"creatora-api/internal/domain"
)

// Store реализует репозитории домена поверх map.
type Store struct {
	mu        sync.Mutex
	users     map[string]domain.User
	past      []domain.PastPost
	brands    map[string]domain.BrandProfile
	generated []domain.GeneratedPost
	revoked   map[string]time.Duration
	cooldowns map[string]bool
	attempts  map[string]int64
	Events    []domain.Event
}

var (
	_ domain.UserRepo          = (*Store)(nil)
	_ domain.PastPostRepo      = (*Store)(nil)
	_ domain.BrandProfileRepo  = (*Store)(nil)
	_ domain.GeneratedPostRepo = (*Store)(nil)
	_ domain.TokenStore        = (*Store)(nil)
	_ domain.EventPublisher    = (*Store)(nil)
)

func New() *Store {
	return &Store{
		users:     map[string]domain.User{},
		brands:    map[string]domain.BrandProfile{},
		revoked:   map[string]time.Duration{},
		cooldowns: map[string]bool{},
		attempts:  map[string]int64{},
	}
}

func (s *Store) CreateUser(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.User{}, domain.ErrConflict
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Plan == "" {
		user.Plan = domain.PlanFree
	}
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (s *Store) update(id string, fn func(*domain.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return err
	}
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return nil
}

func (s *Store) UpdatePassword(_ context.Context, userID, hash string) error {
	return s.update(userID, func(u *domain.User) error {
		u.PasswordHash = hash
		return nil
	})
}

func (s *Store) SetResetOTP(_ context.Context, userID, otp string, expiresAt time.Time) error {
	return s.update(userID, func(u *domain.User) error {
		u.ResetOTP = otp
		u.ResetOTPExpiresAt = &expiresAt
		return nil
	})
}

func (s *Store) ResetPasswordWithOTP(_ context.Context, userID, hash string) error {
	return s.update(userID, func(u *domain.User) error {
		u.PasswordHash = hash
		u.ResetOTP = ""
		u.ResetOTPExpiresAt = nil
		return nil
	})
}

func (s *Store) UpdateProfile(_ context.Context, userID string, upd domain.ProfileUpdate) (domain.User, error) {
	s.mu.Lock()
	if upd.Email != nil {
		for id, u := range s.users {
			if id != userID && strings.EqualFold(u.Email, *upd.Email) {
				s.mu.Unlock()
				return domain.User{}, domain.ErrConflict
			}
		}
	}
	s.mu.Unlock()
	err := s.update(userID, func(u *domain.User) error {
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Email != nil {
			u.Email = *upd.Email
		}
		if upd.Bio != nil {
			u.Bio = *upd.Bio
		}
		if upd.ProfileImageURL != nil {
			u.ProfileImageURL = *upd.ProfileImageURL
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return s.GetUserByID(context.Background(), userID)
}

func (s *Store) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, userID)
	delete(s.brands, userID)
	return nil
}

func (s *Store) IncrementCredits(_ context.Context, userID string) error {
	return s.update(userID, func(u *domain.User) error {
		if u.CreditsUsed >= u.CreditsLimit {
			return domain.ErrInsufficientCredits
		}
		u.CreditsUsed++
		return nil
	})
}

func (s *Store) CreatePastPost(_ context.Context, post domain.PastPost) (domain.PastPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = uuid.NewString()
	post.CreatedAt = time.Now().Add(time.Duration(len(s.past)) * time.Millisecond)
	s.past = append(s.past, post)
	return post, nil
}

func (s *Store) ListPastPosts(_ context.Context, userID string) ([]domain.PastPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.PastPost{}
	for i := len(s.past) - 1; i >= 0; i-- {
		if s.past[i].UserID == userID {
			out = append(out, s.past[i])
		}
	}
	return out, nil
}

func (s *Store) brand(userID string) domain.BrandProfile {
	b, ok := s.brands[userID]
	if !ok {
		b = domain.BrandProfile{ID: uuid.NewString(), UserID: userID, CreatedAt: time.Now()}
	}
	b.UpdatedAt = time.Now()
	return b
}

func (s *Store) UpsertBrandBasics(_ context.Context, userID string, basics domain.BrandBasics) (domain.BrandProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.brand(userID)
	if basics.Tone != nil {
		b.Tone = *basics.Tone
	}
	if basics.Niche != nil {
		b.Niche = *basics.Niche
	}
	if basics.Audience != nil {
		b.Audience = *basics.Audience
	}
	s.brands[userID] = b
	return b, nil
}

func (s *Store) UpsertStyleProfile(_ context.Context, userID string, style domain.StyleProfile) (domain.BrandProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.brand(userID)
	b.StyleProfile = style
	s.brands[userID] = b
	return b, nil
}

func (s *Store) GetBrandProfile(_ context.Context, userID string) (domain.BrandProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.brands[userID]
	if !ok {
		return domain.BrandProfile{}, domain.ErrNotFound
	}
	return b, nil
}

// BrandCount возвращает число профилей бренда.
func (s *Store) BrandCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.brands)
}

func (s *Store) CreateGeneratedPost(_ context.Context, post domain.GeneratedPost) (domain.GeneratedPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	post.CreatedAt = time.Now().Add(time.Duration(len(s.generated)) * time.Millisecond)
	s.generated = append(s.generated, post)
	return post, nil
}

func (s *Store) GetGeneratedPost(_ context.Context, userID, postID string) (domain.GeneratedPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.generated {
		if p.ID == postID && p.UserID == userID {
			return p, nil
		}
	}
	return domain.GeneratedPost{}, domain.ErrNotFound
}

func (s *Store) ListGeneratedPosts(_ context.Context, q domain.GeneratedPostQuery) ([]domain.GeneratedPost, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []domain.GeneratedPost
	for _, p := range s.generated {
		if p.UserID != q.UserID {
			continue
		}
		if q.Search != "" {
			needle := strings.ToLower(q.Search)
			if !strings.Contains(strings.ToLower(string(p.Content)), needle) && !strings.Contains(strings.ToLower(p.Platform), needle) {
				continue
			}
		}
		matched = append(matched, p)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if q.Sort == domain.SortAsc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	start := (q.Page - 1) * q.Limit
	if start < 0 || start >= total {
		return []domain.GeneratedPost{}, total, nil
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *Store) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = ttl
	return nil
}

func (s *Store) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[tokenID]
	return ok, nil
}

func (s *Store) Cooldown(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cooldowns[key] {
		return false, nil
	}
	s.cooldowns[key] = true
	return true, nil
}

func (s *Store) CountAttempt(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[key]++
	return s.attempts[key], nil
}

func (s *Store) ClearAttempts(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, key)
	return nil
}

func (s *Store) Publish(_ context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
	return nil
}
