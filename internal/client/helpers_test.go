package client

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "healthmate/internal/http"
	"healthmate/internal/llm"
	"healthmate/internal/repository"
	"healthmate/internal/service"
)

type testServer struct {
	url  string
	llm  *llm.MockClient
	jwt  *service.JWTService
	mu   sync.Mutex
	hits []string
}

func (s *testServer) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.hits...)
}

// newTestServer levanta el API real sobre repositorios en memoria.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	mock := &llm.MockClient{Response: "Your results look normal."}
	jwtSvc := service.NewJWTService("client-test-secret", 24*time.Hour)
	userSvc := service.NewUserService(logger, repository.NewMemoryUserRepository(), nil)
	chatSvc := service.NewChatService(repository.NewMemoryChatRepository())

	router := apihttp.NewRouter(
		logger,
		jwtSvc,
		apihttp.NewUserHandler(logger, userSvc, jwtSvc),
		apihttp.NewChatHandler(logger, chatSvc),
		apihttp.NewAnalysisHandler(logger, service.NewAnalysisService(mock, logger)),
		apihttp.NewHealthHandler(logger, nil),
		apihttp.RouterOptions{ChatRequireAuth: true},
	)

	ts := &testServer{llm: mock, jwt: jwtSvc}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.hits = append(ts.hits, r.Method+" "+r.URL.Path)
		ts.mu.Unlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	ts.url = srv.URL
	return ts
}

type recordingNavigator struct {
	views []string
}

func (n *recordingNavigator) Navigate(view string) {
	n.views = append(n.views, view)
}

// loggedInSession registra y autentica a Ana contra el servidor de prueba.
func loggedInSession(t *testing.T, ts *testServer) (*APIClient, *Session) {
	t.Helper()
	api := NewAPIClient(ts.url, 0, zap.NewNop())
	session := NewSession(api, NewMemoryTokenStore(), &recordingNavigator{}, zap.NewNop())
	auth := NewAuthView(api, session)

	if _, err := auth.Register(t.Context(), "Ana", "ana@x.com", "pw123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := auth.Login(t.Context(), "ana@x.com", "pw123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return api, session
}
