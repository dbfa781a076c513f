package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthmate/internal/llm"
	"healthmate/internal/repository"
	"healthmate/internal/service"
)

type testEnv struct {
	router *gin.Engine
	users  *repository.MemoryUserRepository
	chats  *repository.MemoryChatRepository
	llm    *llm.MockClient
	jwt    *service.JWTService
}

type envOption func(*envConfig)

type envConfig struct {
	opts    RouterOptions
	limiter service.LoginRateLimiter
	checks  map[string]ReadinessCheck
}

func withRouterOptions(mutate func(*RouterOptions)) envOption {
	return func(c *envConfig) { mutate(&c.opts) }
}

func withLimiter(l service.LoginRateLimiter) envOption {
	return func(c *envConfig) { c.limiter = l }
}

func withReadiness(checks map[string]ReadinessCheck) envOption {
	return func(c *envConfig) { c.checks = checks }
}

// steppingClock avanza un segundo por llamada para ordenar entradas.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newTestEnv(t *testing.T, options ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := envConfig{opts: RouterOptions{ChatRequireAuth: true}}
	for _, opt := range options {
		opt(&cfg)
	}

	logger := zap.NewNop()
	users := repository.NewMemoryUserRepository()
	chats := repository.NewMemoryChatRepository()
	mock := &llm.MockClient{Response: "All values are within normal range."}
	jwtSvc := service.NewJWTService("test-secret", 24*time.Hour)

	userSvc := service.NewUserService(logger, users, cfg.limiter)
	chatSvc := service.NewChatService(chats).WithClock(steppingClock(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)))
	analysisSvc := service.NewAnalysisService(mock, logger)

	router := NewRouter(
		logger,
		jwtSvc,
		NewUserHandler(logger, userSvc, jwtSvc),
		NewChatHandler(logger, chatSvc),
		NewAnalysisHandler(logger, analysisSvc),
		NewHealthHandler(logger, cfg.checks),
		cfg.opts,
	)

	return &testEnv{
		router: router,
		users:  users,
		chats:  chats,
		llm:    mock,
		jwt:    jwtSvc,
	}
}

func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin crea la cuenta y devuelve token e id del usuario.
func (e *testEnv) registerAndLogin(t *testing.T, name, email, password string) (string, string) {
	t.Helper()
	rec := e.do(http.MethodPost, "/api/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = e.do(http.MethodPost, "/api/login", map[string]string{
		"email": email, "password": password,
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(t, rec, &out)
	return out.Token, out.User.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	return body.Error
}
