package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthmate/internal/domain"
	"healthmate/internal/service"
)

const maxMultipartMemory = 32 << 20

// AnalysisHandler reenvia prompts y reportes al modelo generativo.
type AnalysisHandler struct {
	logger       *zap.Logger
	analysisServ *service.AnalysisService
}

func NewAnalysisHandler(logger *zap.Logger, analysisServ *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{logger: logger, analysisServ: analysisServ}
}

// Analyze maneja POST /api/gemini-analyze con multipart {prompt?, file?}.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		h.logger.Warn("invalid analyze form", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid multipart form")
		return
	}
	prompt := c.PostForm("prompt")

	var (
		data     []byte
		mimeType string
		fileName string
	)
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		data, mimeType, err = readUpload(fh)
		if err != nil {
			h.logger.Warn("read upload failed", zap.Error(err))
			respondError(c, http.StatusBadRequest, "could not read file")
			return
		}
		fileName = fh.Filename
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.logger.Warn("invalid analyze form", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := domain.NewAnalysisInput(prompt, data, mimeType, fileName)
	text, err := h.analysisServ.Analyze(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("gemini analyze failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Gemini analyze failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": text})
}

// readUpload lee el archivo completo. Si el cliente no declara un tipo util,
// se detecta por contenido.
func readUpload(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if data == nil {
		data = []byte{}
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(data).String()
	}
	mimeType, _, _ = strings.Cut(mimeType, ";")
	mimeType = strings.TrimSpace(mimeType)
	return data, mimeType, nil
}
