package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"healthmate/internal/domain"
)

var (
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrEmptyTurn          = errors.New("nothing to send: type a message or attach a file")
	ErrReportNameRequired = errors.New("report name is required")
	ErrNoReportOpen       = errors.New("no report open")
)

// AuthView cubre registro e inicio de sesion.
type AuthView struct {
	api     *APIClient
	session *Session
}

func NewAuthView(api *APIClient, session *Session) *AuthView {
	return &AuthView{api: api, session: session}
}

func (v *AuthView) Register(ctx context.Context, name, email, password string) (string, error) {
	return v.api.Register(ctx, name, email, password)
}

func (v *AuthView) Login(ctx context.Context, email, password string) error {
	res, err := v.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return v.session.Login(res.Token, res.User)
}

// Turn es un intercambio mostrado en el chat.
type Turn struct {
	Message  string
	Response string
	Entry    domain.ChatEntry
}

// ChatView conversa sobre un reporte. Cada turno se guarda solo despues de
// que el analisis termina.
type ChatView struct {
	api        *APIClient
	session    *Session
	reportName string
}

func NewChatView(api *APIClient, session *Session) *ChatView {
	return &ChatView{api: api, session: session}
}

func (v *ChatView) ReportName() string {
	return v.reportName
}

// Open fija el reporte activo y devuelve su historial.
func (v *ChatView) Open(ctx context.Context, reportName string) ([]domain.ChatEntry, error) {
	reportName = strings.TrimSpace(reportName)
	if reportName == "" {
		return nil, ErrReportNameRequired
	}
	user, ok := v.session.CurrentUser()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	history, err := v.api.History(ctx, v.session.Token(), user.ID, reportName)
	if err != nil {
		return nil, err
	}
	v.reportName = reportName
	return history, nil
}

// Send analiza el prompt y/o archivo y luego guarda el turno.
// Si el guardado falla, el Turn conserva la respuesta del modelo.
func (v *ChatView) Send(ctx context.Context, prompt string, file *Upload) (Turn, error) {
	if prompt == "" && file == nil {
		return Turn{}, ErrEmptyTurn
	}
	if v.reportName == "" {
		return Turn{}, ErrNoReportOpen
	}
	user, ok := v.session.CurrentUser()
	if !ok {
		return Turn{}, ErrNotLoggedIn
	}
	token := v.session.Token()

	message := prompt
	if message == "" {
		message = "Uploaded file: " + file.Name
	}

	response, err := v.api.Analyze(ctx, token, prompt, file)
	if err != nil {
		return Turn{Message: message}, fmt.Errorf("analyze: %w", err)
	}

	turn := Turn{Message: message, Response: response}
	entry, err := v.api.SaveChat(ctx, token, SaveChatInput{
		UserID:     user.ID,
		ReportName: v.reportName,
		Message:    message,
		Response:   response,
	})
	if err != nil {
		return turn, fmt.Errorf("save chat: %w", err)
	}
	turn.Entry = entry
	return turn, nil
}

// ChatListView lista los reportes del usuario como tarjetas.
type ChatListView struct {
	api     *APIClient
	session *Session
}

func NewChatListView(api *APIClient, session *Session) *ChatListView {
	return &ChatListView{api: api, session: session}
}

// Reports agrupa las entradas por reporte, la mas reciente primero.
func (v *ChatListView) Reports(ctx context.Context) ([]domain.ReportSummary, error) {
	user, ok := v.session.CurrentUser()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	entries, err := v.api.List(ctx, v.session.Token(), user.ID)
	if err != nil {
		return nil, err
	}
	return domain.BuildReportIndex(entries), nil
}

// Open devuelve el historial completo de un reporte.
func (v *ChatListView) Open(ctx context.Context, reportName string) ([]domain.ChatEntry, error) {
	user, ok := v.session.CurrentUser()
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return v.api.History(ctx, v.session.Token(), user.ID, reportName)
}
