package profile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"creatora-api/internal/domain"
	"creatora-api/internal/testutil/memstore"
)

func ptr(s string) *string { return &s }

func TestUpdateValidation(t *testing.T) {
	cases := []struct {
		name string
		in   UpdateInput
	}{
		{"длинное имя", UpdateInput{Name: ptr(strings.Repeat("a", 101))}},
		{"плохой email", UpdateInput{Email: ptr("nope")}},
		{"длинное био", UpdateInput{Bio: ptr(strings.Repeat("б", 501))}},
		{"относительный url", UpdateInput{ProfileImageURL: ptr("/img.png")}},
	}
	for _, tc := range cases {
		var verr *domain.ValidationError
		if _, err := tc.in.Validate(); !errors.As(err, &verr) {
			t.Fatalf("%s: ожидали ошибку валидации, получили %v", tc.name, err)
		}
	}
	if _, err := (UpdateInput{Bio: ptr(strings.Repeat("б", 500))}).Validate(); err != nil {
		t.Fatalf("500 символов допустимы: %v", err)
	}
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	user, _ := store.CreateUser(ctx, domain.User{Email: "a@example.com", Name: "Ann", Bio: "old"})
	svc := NewService(store)

	updated, err := svc.Update(ctx, domain.Principal{UserID: user.ID}, UpdateInput{Bio: ptr("new bio"), ProfileImageURL: ptr("https://cdn.example.com/a.png")})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if updated.Name != "Ann" || updated.Bio != "new bio" || updated.ProfileImageURL != "https://cdn.example.com/a.png" {
		t.Fatalf("неожиданный профиль: %+v", updated)
	}
}

func TestUpdateEmailConflict(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	_, _ = store.CreateUser(ctx, domain.User{Email: "taken@example.com"})
	user, _ := store.CreateUser(ctx, domain.User{Email: "me@example.com"})
	svc := NewService(store)

	_, err := svc.Update(ctx, domain.Principal{UserID: user.ID}, UpdateInput{Email: ptr("Taken@example.com")})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("ожидали конфликт, получили %v", err)
	}
}
