package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"healthmate/internal/domain"
	"healthmate/internal/service"
)

func domainUser(id, email string) domain.User {
	return domain.User{ID: id, Name: "Test", Email: email, CreatedAt: time.Now().UTC()}
}

func protectedRouter(jwtSvc *service.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(jwtSvc), func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok || claims.UserID != "u1" {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func requestWithAuth(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware_AllowsValidToken(t *testing.T) {
	jwtSvc := service.NewJWTService("secret", 24*time.Hour)
	token, err := jwtSvc.Issue(domainUser("u1", "user@example.com"))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec := requestWithAuth(protectedRouter(jwtSvc), "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestJWTAuthMiddleware_RejectsMissingToken(t *testing.T) {
	rec := requestWithAuth(protectedRouter(service.NewJWTService("secret", time.Hour)), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Unauthorized" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestJWTAuthMiddleware_RejectsGarbageToken(t *testing.T) {
	rec := requestWithAuth(protectedRouter(service.NewJWTService("secret", time.Hour)), "Bearer not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Invalid token" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestJWTAuthMiddleware_RejectsExpiredToken(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := service.NewJWTService("secret", 24*time.Hour).WithClock(func() time.Time { return issuedAt })
	token, err := issuer.Issue(domainUser("u1", "user@example.com"))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	verifier := service.NewJWTService("secret", 24*time.Hour).WithClock(func() time.Time {
		return issuedAt.Add(25 * time.Hour)
	})
	rec := requestWithAuth(protectedRouter(verifier), "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Invalid token" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestJWTAuthMiddleware_RejectsOtherSecret(t *testing.T) {
	token, err := service.NewJWTService("other", time.Hour).Issue(domainUser("u1", "user@example.com"))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec := requestWithAuth(protectedRouter(service.NewJWTService("secret", time.Hour)), "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
