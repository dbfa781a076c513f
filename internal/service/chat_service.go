package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"healthmate/internal/domain"
	"healthmate/internal/repository"
)

// ChatService encapsula el log de chat por usuario y reporte.
type ChatService struct {
	repo repository.ChatRepository
	now  func() time.Time
}

var (
	ErrChatServiceNotConfigured = errors.New("chat service not configured")
	ErrMissingUserID            = errors.New("userId is required")
)

func NewChatService(repo repository.ChatRepository) *ChatService {
	return &ChatService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj usado para created_at.
func (s *ChatService) WithClock(now func() time.Time) *ChatService {
	if now != nil {
		s.now = now
	}
	return s
}

type AppendInput struct {
	UserID     string
	ReportName string
	Message    string
	Response   string
}

// Append registra un turno. Solo userId es obligatorio.
func (s *ChatService) Append(ctx context.Context, input AppendInput) (domain.ChatEntry, error) {
	if s == nil || s.repo == nil {
		return domain.ChatEntry{}, ErrChatServiceNotConfigured
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return domain.ChatEntry{}, ErrMissingUserID
	}

	entry := domain.ChatEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		ReportName: input.ReportName,
		Message:    input.Message,
		Response:   input.Response,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return domain.ChatEntry{}, err
	}
	return entry, nil
}

// List devuelve todas las entradas del usuario para armar el indice de reportes.
func (s *ChatService) List(ctx context.Context, userID string) ([]domain.ChatEntry, error) {
	if s == nil || s.repo == nil {
		return nil, ErrChatServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []domain.ChatEntry{}, nil
	}
	return s.repo.ListByUserID(ctx, userID)
}

// History devuelve el historial ordenado por created_at ascendente.
// reportName vacio devuelve todos los reportes del usuario.
func (s *ChatService) History(ctx context.Context, userID, reportName string) ([]domain.ChatEntry, error) {
	if s == nil || s.repo == nil {
		return nil, ErrChatServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []domain.ChatEntry{}, nil
	}
	return s.repo.History(ctx, userID, reportName)
}
