package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"healthmate/internal/domain"
	"healthmate/internal/llm"
)

// ReportGuidance acompaña a todo archivo enviado al modelo.
const ReportGuidance = "Explain this report in simple words."

var ErrUpstream = errors.New("upstream analysis failed")

// AnalysisService reenvia texto y/o archivos al modelo generativo.
// Una llamada por invocacion, sin reintentos ni cache.
type AnalysisService struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
	metrics   AnalysisMetrics
}

// AnalysisMetrics recibe la duracion y el resultado de cada llamada al modelo.
type AnalysisMetrics interface {
	ObserveAnalysis(d time.Duration, err error)
}

func NewAnalysisService(llmClient llm.LLMClient, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{llmClient: llmClient, logger: logger}
}

// WithMetrics registra un colector de metricas para las llamadas al modelo.
func (s *AnalysisService) WithMetrics(m AnalysisMetrics) *AnalysisService {
	s.metrics = m
	return s
}

func (s *AnalysisService) Analyze(ctx context.Context, input domain.AnalysisInput) (string, error) {
	if s == nil || s.llmClient == nil {
		return "", fmt.Errorf("%w: analysis service not configured", ErrUpstream)
	}

	parts := BuildParts(input)
	start := time.Now()
	text, err := s.llmClient.GenerateContent(ctx, parts)
	if s.metrics != nil {
		s.metrics.ObserveAnalysis(time.Since(start), err)
	}
	if err != nil {
		s.logger.Warn("llm generate failed", zap.Error(err), zap.Int("parts", len(parts)))
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return text, nil
}

// BuildParts traduce la variante de entrada a partes de contenido.
// El archivo va primero, seguido de la guia fija; el prompt va al final.
func BuildParts(input domain.AnalysisInput) []llm.Part {
	parts := make([]llm.Part, 0, 3)
	switch in := input.(type) {
	case domain.TextOnly:
		parts = appendPrompt(parts, in.Prompt)
	case domain.FileOnly:
		parts = appendFile(parts, in.Data, in.MIMEType)
	case domain.TextAndFile:
		parts = appendFile(parts, in.Data, in.MIMEType)
		parts = appendPrompt(parts, in.Prompt)
	}
	return parts
}

func appendFile(parts []llm.Part, data []byte, mimeType string) []llm.Part {
	return append(parts,
		llm.Part{InlineData: &llm.InlineData{
			MIMEType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		}},
		llm.Part{Text: ReportGuidance},
	)
}

func appendPrompt(parts []llm.Part, prompt string) []llm.Part {
	if prompt == "" {
		return parts
	}
	return append(parts, llm.Part{Text: prompt})
}
