package domain

import (
	"sort"
	"time"
)

// ChatEntry es un turno de chat: mensaje del usuario y respuesta del modelo.
type ChatEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ReportName string    `json:"reportName"`
	Message    string    `json:"message"`
	Response   string    `json:"response"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReportSummary resume un reporte para la vista de tarjetas.
type ReportSummary struct {
	ReportName     string    `json:"reportName"`
	LatestMessage  string    `json:"latestMessage"`
	LatestResponse string    `json:"latestResponse"`
	Turns          int       `json:"turns"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Preview devuelve la respuesta mas reciente, o el mensaje si no hay respuesta.
func (r ReportSummary) Preview() string {
	if r.LatestResponse != "" {
		return r.LatestResponse
	}
	if r.LatestMessage != "" {
		return r.LatestMessage
	}
	return "No preview"
}

// BuildReportIndex agrupa entradas por reporte conservando el turno mas reciente.
// El resultado queda ordenado del reporte mas reciente al mas antiguo.
func BuildReportIndex(entries []ChatEntry) []ReportSummary {
	byName := make(map[string]*ReportSummary)
	order := make([]string, 0)
	for _, e := range entries {
		s, ok := byName[e.ReportName]
		if !ok {
			s = &ReportSummary{ReportName: e.ReportName}
			byName[e.ReportName] = s
			order = append(order, e.ReportName)
		}
		s.Turns++
		if s.Turns == 1 || !e.CreatedAt.Before(s.CreatedAt) {
			s.LatestMessage = e.Message
			s.LatestResponse = e.Response
			s.CreatedAt = e.CreatedAt
		}
	}

	out := make([]ReportSummary, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
