package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inamate/artboard/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewService(st, "test-secret")
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, " Ada@Example.com", "correct horse", "Ada")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.Email != "ada@example.com" || !strings.HasPrefix(reg.User.ID, "user_") {
		t.Errorf("unexpected user %+v", reg.User)
	}

	userID, err := svc.ValidateToken(reg.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != reg.User.ID {
		t.Errorf("token subject = %q, want %q", userID, reg.User.ID)
	}

	if _, err := svc.Register(ctx, "ada@example.com", "another one", "Ada 2"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	login, err := svc.Login(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Errorf("login returned %q", login.User.ID)
	}

	if _, err := svc.Login(ctx, "ada@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", err)
	}
}

func TestValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	svc := newTestService(t)
	token, err := svc.issueToken("user_1")
	if err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return time.Now().Add(TokenTTL + time.Hour) }
	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v", err)
	}

	other := NewService(nil, "other-secret")
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign secret: got %v", err)
	}
}

func TestHandlers(t *testing.T) {
	svc := newTestService(t)
	h := NewHandler(svc)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		body    string
		status  int
	}{
		{"register", h.Register, `{"email":"bob@example.com","password":"hunter2hunter2","displayName":"Bob"}`, http.StatusCreated},
		{"register duplicate", h.Register, `{"email":"bob@example.com","password":"hunter2hunter2","displayName":"Bob"}`, http.StatusConflict},
		{"register short password", h.Register, `{"email":"c@example.com","password":"short","displayName":"C"}`, http.StatusBadRequest},
		{"register missing fields", h.Register, `{"email":"c@example.com"}`, http.StatusBadRequest},
		{"register bad json", h.Register, `{`, http.StatusBadRequest},
		{"register bad email", h.Register, `{"email":"not an email","password":"hunter2hunter2","displayName":"X"}`, http.StatusBadRequest},
		{"login", h.Login, `{"email":"bob@example.com","password":"hunter2hunter2"}`, http.StatusOK},
		{"login wrong password", h.Login, `{"email":"bob@example.com","password":"nope-nope"}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestMiddlewareAndMe(t *testing.T) {
	svc := newTestService(t)
	reg, err := svc.Register(context.Background(), "eve@example.com", "long enough", "Eve")
	if err != nil {
		t.Fatal(err)
	}
	protected := svc.AuthMiddleware(http.HandlerFunc(NewHandler(svc).Me))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + reg.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var u User
			if err := json.NewDecoder(rec.Body).Decode(&u); err != nil {
				t.Fatal(err)
			}
			if u.DisplayName != "Eve" {
				t.Errorf("unexpected user %+v", u)
			}
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		url        string
		allowQuery bool
		want       string
		wantErr    error
	}{
		{"bearer", "Bearer abc", "/", false, "abc", nil},
		{"lowercase scheme", "bearer abc", "/", false, "abc", nil},
		{"missing", "", "/", false, "", ErrMissingToken},
		{"query ignored", "", "/ws?token=abc", false, "", ErrMissingToken},
		{"query allowed", "", "/ws?token=abc", true, "abc", nil},
		{"header wins", "Bearer hdr", "/ws?token=abc", true, "hdr", nil},
		{"basic", "Basic abc", "/", false, "", ErrBadScheme},
		{"empty token", "Bearer ", "/", false, "", ErrBadScheme},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, err := TokenFromRequest(req, tt.allowQuery)
			if !errors.Is(err, tt.wantErr) || got != tt.want {
				t.Errorf("TokenFromRequest = %q, %v; want %q, %v", got, err, tt.want, tt.wantErr)
			}
		})
	}
}
