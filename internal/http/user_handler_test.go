package http

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"healthmate/internal/service"
)

func TestUserHandlerRegister_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/register", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "pw123",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Message string `json:"message"`
	}
	decode(t, rec, &body)
	if body.Message != "User registered successfully" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if env.users.Count() != 1 {
		t.Fatalf("expected one stored user, got %d", env.users.Count())
	}
}

func TestUserHandlerRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	payload := map[string]string{"name": "Ana", "email": "ana@x.com", "password": "pw123"}

	if rec := env.do(http.MethodPost, "/api/register", payload, ""); rec.Code != http.StatusOK {
		t.Fatalf("first register: expected 200, got %d", rec.Code)
	}
	payload["email"] = "ANA@x.com"
	rec := env.do(http.MethodPost, "/api/register", payload, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "User already exists" {
		t.Fatalf("unexpected error %q", msg)
	}
	if env.users.Count() != 1 {
		t.Fatalf("expected a single stored user, got %d", env.users.Count())
	}
}

func TestUserHandlerRegister_MissingField(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/register", map[string]string{
		"email": "ana@x.com", "password": "pw123",
	}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "name is required" {
		t.Fatalf("expected field-specific message, got %q", msg)
	}
}

func TestUserHandlerLogin_UniformFailure(t *testing.T) {
	env := newTestEnv(t)
	env.registerAndLogin(t, "Ana", "ana@x.com", "pw123")

	wrongPassword := env.do(http.MethodPost, "/api/login", map[string]string{
		"email": "ana@x.com", "password": "nope",
	}, "")
	unknownEmail := env.do(http.MethodPost, "/api/login", map[string]string{
		"email": "ghost@x.com", "password": "pw123",
	}, "")

	if wrongPassword.Code != http.StatusBadRequest || unknownEmail.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for both, got %d and %d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("expected identical bodies, got %q and %q", wrongPassword.Body.String(), unknownEmail.Body.String())
	}
	if msg := errorMessage(t, wrongPassword); msg != "Invalid credentials" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestUserHandlerLogin_ReturnsTokenAndPublicUser(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(http.MethodPost, "/api/register", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "pw123",
	}, ""); rec.Code != http.StatusOK {
		t.Fatalf("register: %d", rec.Code)
	}

	rec := env.do(http.MethodPost, "/api/login", map[string]string{
		"email": "ana@x.com", "password": "pw123",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("login response leaks password data: %s", rec.Body.String())
	}
	var body struct {
		Token string            `json:"token"`
		User  map[string]string `json:"user"`
	}
	decode(t, rec, &body)
	if body.User["name"] != "Ana" || body.User["email"] != "ana@x.com" || body.User["id"] == "" {
		t.Fatalf("unexpected user %v", body.User)
	}

	claims, err := env.jwt.Parse(body.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != body.User["id"] || claims.Email != "ana@x.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 24*time.Hour {
		t.Fatalf("expected 24h expiry, got %v", got)
	}
}

func TestUserHandlerLogin_RateLimited(t *testing.T) {
	env := newTestEnv(t, withLimiter(service.NewMemoryLoginRateLimiter(time.Minute, 2)))
	payload := map[string]string{"email": "ana@x.com", "password": "nope"}

	for i := 0; i < 2; i++ {
		if rec := env.do(http.MethodPost, "/api/login", payload, ""); rec.Code != http.StatusBadRequest {
			t.Fatalf("attempt %d: expected 400, got %d", i+1, rec.Code)
		}
	}
	if rec := env.do(http.MethodPost, "/api/login", payload, ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestUserHandlerMe_ExcludesPassword(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.registerAndLogin(t, "Ana", "ana@x.com", "pw123")

	rec := env.do(http.MethodGet, "/api/me", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(strings.ToLower(rec.Body.String()), "password") {
		t.Fatalf("me response leaks password data: %s", rec.Body.String())
	}
	var body struct {
		User map[string]any `json:"user"`
	}
	decode(t, rec, &body)
	if body.User["name"] != "Ana" || body.User["email"] != "ana@x.com" {
		t.Fatalf("unexpected user %v", body.User)
	}
}

func TestUserHandlerMe_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	token, err := env.jwt.Issue(domainUser("ghost", "ghost@x.com"))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec := env.do(http.MethodGet, "/api/me", nil, token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
