package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthmate/internal/service"
)

// ChatHandler expone el historial de chats por usuario y reporte.
type ChatHandler struct {
	logger   *zap.Logger
	chatServ *service.ChatService
}

func NewChatHandler(logger *zap.Logger, chatServ *service.ChatService) *ChatHandler {
	return &ChatHandler{logger: logger, chatServ: chatServ}
}

type saveChatRequest struct {
	UserID     string `json:"userId" form:"userId"`
	ReportName string `json:"reportName" form:"reportName"`
	Message    string `json:"message" form:"message"`
	Prompt     string `json:"prompt" form:"prompt"`
	Response   string `json:"response" form:"response"`
}

// Save maneja POST /chat/save con body JSON o multipart.
// Si llegan message y prompt, gana message.
func (h *ChatHandler) Save(c *gin.Context) {
	var req saveChatRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err, &req)
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		respondError(c, http.StatusBadRequest, service.ErrMissingUserID.Error())
		return
	}
	if !authorizeOwner(c, req.UserID) {
		return
	}

	message := req.Message
	if message == "" {
		message = req.Prompt
	}

	entry, err := h.chatServ.Append(c.Request.Context(), service.AppendInput{
		UserID:     req.UserID,
		ReportName: req.ReportName,
		Message:    message,
		Response:   req.Response,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingUserID) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("save chat failed", zap.Error(err), zap.String("user_id", req.UserID))
		respondError(c, http.StatusInternalServerError, "Failed to save chat")
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// History maneja GET /api/chat/history/:userId?report=.
func (h *ChatHandler) History(c *gin.Context) {
	userID := c.Param("userId")
	if !authorizeOwner(c, userID) {
		return
	}

	entries, err := h.chatServ.History(c.Request.Context(), userID, c.Query("report"))
	if err != nil {
		h.logger.Error("load chat history failed", zap.Error(err), zap.String("user_id", userID))
		respondError(c, http.StatusInternalServerError, "Failed to load chat history")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// List maneja GET /api/chat/list/:userId.
func (h *ChatHandler) List(c *gin.Context) {
	userID := c.Param("userId")
	if !authorizeOwner(c, userID) {
		return
	}

	entries, err := h.chatServ.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list chats failed", zap.Error(err), zap.String("user_id", userID))
		respondError(c, http.StatusInternalServerError, "Failed to load chats")
		return
	}
	c.JSON(http.StatusOK, entries)
}
