package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"healthmate/internal/domain"
)

// APIError es una respuesta de error del servidor.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsUnauthorized indica si err es un 401 del servidor.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Upload es un archivo adjunto a un analisis.
type Upload struct {
	Name     string
	MIMEType string
	Data     []byte
}

type LoginResult struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`
}

type SaveChatInput struct {
	UserID     string `json:"userId"`
	ReportName string `json:"reportName"`
	Message    string `json:"message"`
	Response   string `json:"response"`
}

// APIClient habla con el servidor HealthMate por HTTP.
type APIClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewAPIClient construye el cliente. timeout 0 no corta las llamadas de analisis.
func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *APIClient) Register(ctx context.Context, name, email, password string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/register", "", body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *APIClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", "", body, &out); err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

func (c *APIClient) Me(ctx context.Context, token string) (domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/me", token, nil, &out); err != nil {
		return domain.User{}, err
	}
	return out.User, nil
}

// Analyze envia prompt y/o archivo como multipart a /api/gemini-analyze.
func (c *APIClient) Analyze(ctx context.Context, token, prompt string, file *Upload) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if prompt != "" {
		if err := w.WriteField("prompt", prompt); err != nil {
			return "", fmt.Errorf("write prompt: %w", err)
		}
	}
	if file != nil {
		part, err := w.CreatePart(filePartHeader(file))
		if err != nil {
			return "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return "", fmt.Errorf("write file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/gemini-analyze", token, w.FormDataContentType(), &buf, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

func (c *APIClient) SaveChat(ctx context.Context, token string, input SaveChatInput) (domain.ChatEntry, error) {
	var out domain.ChatEntry
	if err := c.doJSON(ctx, http.MethodPost, "/chat/save", token, input, &out); err != nil {
		return domain.ChatEntry{}, err
	}
	return out, nil
}

func (c *APIClient) History(ctx context.Context, token, userID, reportName string) ([]domain.ChatEntry, error) {
	path := "/api/chat/history/" + url.PathEscape(userID)
	if reportName != "" {
		path += "?report=" + url.QueryEscape(reportName)
	}
	var out []domain.ChatEntry
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) List(ctx context.Context, token, userID string) ([]domain.ChatEntry, error) {
	var out []domain.ChatEntry
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/list/"+url.PathEscape(userID), token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, token, contentType, body, out)
}

func (c *APIClient) do(ctx context.Context, method, path, token, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = apiErr.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug("api error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func filePartHeader(file *Upload) textproto.MIMEHeader {
	name := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(file.Name)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	if file.MIMEType != "" {
		h.Set("Content-Type", file.MIMEType)
	}
	return h
}
