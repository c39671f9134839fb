package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"creatora-api/internal/domain"
	authinfra "creatora-api/internal/infra/auth"
	httpinfra "creatora-api/internal/infra/http"
	"creatora-api/internal/testutil/memstore"
	authusecase "creatora-api/internal/usecase/auth"
	contentusecase "creatora-api/internal/usecase/content"
	onboardingusecase "creatora-api/internal/usecase/onboarding"
	postsusecase "creatora-api/internal/usecase/posts"
	profileusecase "creatora-api/internal/usecase/profile"
)

type mailerStub struct{}

func (mailerStub) SendOTP(context.Context, string, string) error             { return nil }
func (mailerStub) SendAccountDeletion(context.Context, string, string) error { return nil }

type imageStoreStub struct {
	uploaded int64
	deleted  string
}

func (s *imageStoreStub) Upload(_ context.Context, body io.Reader, size int64, _, _ string) (domain.UploadedImage, error) {
	n, _ := io.Copy(io.Discard, body)
	s.uploaded = n
	if size > s.MaxBytes() {
		return domain.UploadedImage{}, domain.NewValidationError("too large")
	}
	return domain.UploadedImage{URL: "https://cdn.example.com/uploads/x.png", PublicID: "x.png"}, nil
}

func (s *imageStoreStub) Delete(_ context.Context, publicID string) error {
	s.deleted = publicID
	return nil
}

func (s *imageStoreStub) MaxBytes() int64 { return 1024 }

type testEnv struct {
	handler http.Handler
	store   *memstore.Store
	images  *imageStoreStub
}

func newEnv(t *testing.T) testEnv {
	t.Helper()
	store := memstore.New()
	issuer := authinfra.NewIssuer("test-secret", time.Hour)
	log := zerolog.Nop()
	svc := Services{
		Auth: authusecase.NewService(authusecase.Deps{
			Users: store, Brands: store, PastPosts: store, Generated: store,
			Tokens: issuer, Store: store, Mailer: mailerStub{},
		}, authusecase.Config{}, log),
		Profile:    profileusecase.NewService(store),
		Onboarding: onboardingusecase.NewService(store, store, nil, nil, nil, store, log),
		Content:    contentusecase.NewService(contentusecase.Deps{Users: store, Brands: store, PastPosts: store, Generated: store}, log),
		Posts:      postsusecase.NewService(store),
	}
	images := &imageStoreStub{}
	srv := NewServer(svc, httpinfra.AuthMiddleware(issuer, store, store, log), WithImageStore(images))
	return testEnv{handler: srv.Router(), store: store, images: images}
}

func (e testEnv) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func authCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == httpinfra.CookieName {
			return c
		}
	}
	t.Fatalf("cookie %s не установлена", httpinfra.CookieName)
	return nil
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("неожиданный ответ: %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodGet, "/", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d", rec.Code)
	}
}

func TestSignupMeLogout(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/users/auth/signup", `{"email":"a@example.com","password":"secret1","name":"Ann"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("ожидали 201, получили %d %s", rec.Code, rec.Body.String())
	}
	cookie := authCookie(t, rec)
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteNoneMode {
		t.Fatalf("неожиданные атрибуты cookie: %+v", cookie)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/users/auth/me", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d %s", rec.Code, rec.Body.String())
	}
	var me map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &me)
	if me["email"] != "a@example.com" || me["pastPosts"] == nil {
		t.Fatalf("неожиданный профиль: %v", me)
	}
	if _, ok := me["passwordHash"]; ok {
		t.Fatalf("хэш пароля не должен попадать в ответ")
	}

	rec = env.do(t, http.MethodPost, "/api/v1/users/auth/logout", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: ожидали 200, получили %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/v1/users/auth/me", "", cookie)
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Token has been revoked") {
		t.Fatalf("ожидали 401 после logout, получили %d %s", rec.Code, rec.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	env := newEnv(t)
	env.do(t, http.MethodPost, "/api/v1/users/auth/signup", `{"email":"a@example.com","password":"secret1"}`, nil)

	cases := []struct {
		name, path, body string
		code             int
		msg              string
	}{
		{"дубликат", "/api/v1/users/auth/signup", `{"email":"a@example.com","password":"secret1"}`, http.StatusConflict, "Email already in use"},
		{"неверный пароль", "/api/v1/users/auth/login", `{"email":"a@example.com","password":"nope"}`, http.StatusUnauthorized, "Invalid credentials"},
		{"нет пользователя", "/api/v1/users/auth/forgot-password", `{"email":"x@example.com"}`, http.StatusNotFound, "User not found"},
		{"битый json", "/api/v1/users/auth/login", `{`, http.StatusBadRequest, "invalid request body"},
		{"короткий пароль", "/api/v1/users/auth/signup", `{"email":"b@example.com","password":"1"}`, http.StatusBadRequest, "password must be longer"},
		{"длинный пароль", "/api/v1/users/auth/signup", `{"email":"c@example.com","password":"` + strings.Repeat("p", 80) + `"}`, http.StatusBadRequest, "72 bytes"},
	}
	for _, tc := range cases {
		rec := env.do(t, http.MethodPost, tc.path, tc.body, nil)
		if rec.Code != tc.code || !strings.Contains(rec.Body.String(), tc.msg) {
			t.Fatalf("%s: ожидали %d %q, получили %d %s", tc.name, tc.code, tc.msg, rec.Code, rec.Body.String())
		}
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	env := newEnv(t)
	for _, path := range []string{"/api/v1/users/auth/me", "/api/v1/users/generated-posts", "/api/v1/content-generation/x/video-script"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: ожидали 401, получили %d", path, rec.Code)
		}
	}
}

func TestGeneratedPostsListing(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/users/auth/signup", `{"email":"p@example.com","password":"secret1"}`, nil)
	cookie := authCookie(t, rec)
	user, _ := env.store.GetUserByEmail(context.Background(), "p@example.com")
	for i := 0; i < 3; i++ {
		_, _ = env.store.CreateGeneratedPost(context.Background(), domain.GeneratedPost{UserID: user.ID, Platform: "INSTAGRAM", Content: []byte(fmt.Sprintf(`{"n":%d}`, i))})
	}

	rec = env.do(t, http.MethodGet, "/api/v1/users/generated-posts?page=2&limit=2", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("ожидали 200, получили %d %s", rec.Code, rec.Body.String())
	}
	var page postsusecase.Page
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("ответ не разобран: %v", err)
	}
	if len(page.Data) != 1 || page.Meta.Total != 3 || page.Meta.NoOfPages != 2 || page.Meta.Page != 2 {
		t.Fatalf("неожиданная страница: %+v", page)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/users/generated-posts?limit=500", "", cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ожидали 400 для limit=500, получили %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/v1/users/generated-posts/missing", "", cookie)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Post not found") {
		t.Fatalf("ожидали 404 Post not found, получили %d %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateWithoutBrandProfile(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/users/auth/signup", `{"email":"g@example.com","password":"secret1"}`, nil)
	cookie := authCookie(t, rec)
	rec = env.do(t, http.MethodPost, "/api/v1/content-generation/generate", "", cookie)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Brand profile not set up") {
		t.Fatalf("ожидали 400, получили %d %s", rec.Code, rec.Body.String())
	}
}

func TestImageUpload(t *testing.T) {
	env := newEnv(t)

	upload := func(size int) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, _ := mw.CreateFormFile("image", "a.png")
		_, _ = fw.Write(bytes.Repeat([]byte{0x89}, size))
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/image/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := upload(512); rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), `"publicId":"x.png"`) {
		t.Fatalf("ожидали 201, получили %d %s", rec.Code, rec.Body.String())
	}
	if rec := upload(2048); rec.Code != http.StatusBadRequest {
		t.Fatalf("ожидали 400 для большого файла, получили %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/image/upload", strings.NewReader("x"))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ожидали 400 без файла, получили %d", rec.Code)
	}
}

func TestPublicMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{domain.NewPublicError(domain.ErrNotFound, "Post not found"), "Post not found"},
		{fmt.Errorf("получение поста: %w", domain.NewPublicError(domain.ErrNotFound, "Post not found")), "Post not found"},
		{fmt.Errorf("получение пользователя: %w", domain.ErrNotFound), "Not found"},
		{fmt.Errorf("Row missing in table users: %w", domain.ErrNotFound), "Not found"},
		{domain.ErrNotFound, "Not found"},
	}
	for _, tc := range cases {
		if got := publicMessage(tc.err, "Not found"); got != tc.want {
			t.Fatalf("publicMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
