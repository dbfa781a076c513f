package client

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"healthmate/internal/domain"
)

const (
	ViewDashboard = "dashboard"
	ViewAuth      = "auth"
)

// Navigator cambia la pantalla activa del cliente.
type Navigator interface {
	Navigate(view string)
}

// NavigatorFunc adapta una funcion a Navigator.
type NavigatorFunc func(view string)

func (f NavigatorFunc) Navigate(view string) { f(view) }

// Session mantiene el usuario autenticado del cliente.
// Se crea una vez y se inyecta en las vistas; solo Login y Logout la mutan.
type Session struct {
	api    *APIClient
	store  TokenStore
	nav    Navigator
	logger *zap.Logger

	mu    sync.RWMutex
	token string
	user  *domain.PublicUser
}

func NewSession(api *APIClient, store TokenStore, nav Navigator, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}
	return &Session{api: api, store: store, nav: nav, logger: logger}
}

// Init restaura la sesion desde el token guardado. Si el servidor lo rechaza,
// el token se descarta y la sesion queda anonima.
func (s *Session) Init(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	user, err := s.api.Me(ctx, token)
	if err != nil {
		s.logger.Info("stored token rejected", zap.Error(err))
		s.mu.Lock()
		s.token = ""
		s.user = nil
		s.mu.Unlock()
		return s.store.Clear()
	}

	pub := user.Public()
	s.mu.Lock()
	s.token = token
	s.user = &pub
	s.mu.Unlock()
	return nil
}

// Login persiste el token, fija el usuario y navega al dashboard.
func (s *Session) Login(token string, user domain.PublicUser) error {
	if err := s.store.Save(token); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	s.nav.Navigate(ViewDashboard)
	return nil
}

// Logout borra token y usuario y navega a la pantalla de acceso.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	err := s.store.Clear()
	s.nav.Navigate(ViewAuth)
	return err
}

func (s *Session) CurrentUser() (domain.PublicUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.PublicUser{}, false
	}
	return *s.user, true
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
